package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/yosoyelfede/maiapress"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	app := maiapress.New(maiapress.ConfigFromEnv())
	defer app.Close()

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
