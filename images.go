package maiapress

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"
)

const (
	maxImageWidth = 1200
	jpegQuality   = 80
	maxUploadSize = 10 << 20 // 10MB
)

// processImage decodes an image from src, resizes it down to maxImageWidth
// if wider, and encodes it as JPEG. Returns metadata and the encoded bytes.
func processImage(src io.Reader, originalName string) (Image, []byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return Image{}, nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if w > maxImageWidth {
		newH := h * maxImageWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxImageWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
		w = maxImageWidth
		h = newH
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return Image{}, nil, fmt.Errorf("encode jpeg: %w", err)
	}

	return Image{
		OriginalName: originalName,
		Width:        w,
		Height:       h,
		Size:         buf.Len(),
		UploadedAt:   time.Now().UTC().Format(time.RFC3339),
	}, buf.Bytes(), nil
}

// handleUpload accepts a cover image for a post. Naming is deterministic
// (<slug>.jpg), so re-uploading for the same slug overwrites the prior
// image locally, in the index, and in the mirror.
func (a *App) handleUpload(c echo.Context) error {
	if VerifySession(c) == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	file, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "image file is required"})
	}
	slug := Slugify(strings.TrimSpace(c.FormValue("slug")))
	if slug == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "slug is required"})
	}
	if file.Size > maxUploadSize {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "file too large (max 10MB)"})
	}
	if ct := file.Header.Get("Content-Type"); !strings.HasPrefix(ct, "image/") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "only image uploads are accepted"})
	}
	if a.mirrorMisconfigured() {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "remote storage is not configured"})
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	img, data, err := processImage(src, file.Filename)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid image: " + err.Error()})
	}
	img.Filename = slug + ".jpg"

	if err := os.MkdirAll(a.Config.UploadsDir, 0o755); err != nil {
		return fmt.Errorf("create uploads dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(a.Config.UploadsDir, img.Filename), data, 0o644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	if err := a.Images.SaveImage(img); err != nil {
		return fmt.Errorf("index image: %w", err)
	}

	result := a.Mirror.syncFile(c.Request().Context(),
		path.Join(a.Config.GithubImagesDir, img.Filename), data,
		"Upload blog image "+img.Filename)
	if result.Enabled && !result.Success {
		c.Logger().Errorf("image mirror failed: %s", result.Error)
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error":  "remote image write failed",
			"github": result,
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":  true,
		"imageUrl": a.Config.ImageURLBase + "/" + img.Filename,
		"filename": img.Filename,
		"size":     img.Size,
		"github":   result,
	})
}
