package portfolio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"

	"github.com/eringen/portfolio/content"
	"github.com/eringen/portfolio/logger"
)

const (
	maxImageWidth = 1600
	jpegQuality   = 82
	maxUploadSize = 10 << 20 // 10MB
)

// processImage decodes an image from src, resizes it down to maxImageWidth,
// and encodes it as JPEG. GIFs are kept as uploaded so animations survive.
func processImage(src io.Reader, originalName string) (Image, []byte, string, error) {
	raw, err := io.ReadAll(io.LimitReader(src, maxUploadSize+1))
	if err != nil {
		return Image{}, nil, "", fmt.Errorf("read image: %w", err)
	}
	if len(raw) > maxUploadSize {
		return Image{}, nil, "", errors.New("file too large (max 10MB)")
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return Image{}, nil, "", fmt.Errorf("decode image: %w", err)
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	base := slugifyFilename(originalName)
	if base == "" {
		base = "image"
	}

	if format == "gif" {
		return Image{
			Filename:     base + ".gif",
			OriginalName: originalName,
			Width:        w,
			Height:       h,
			Size:         len(raw),
			UploadedAt:   time.Now().UTC(),
		}, raw, "image/gif", nil
	}

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
		return Image{}, nil, "", fmt.Errorf("encode jpeg: %w", err)
	}
	return Image{
		Filename:     base + ".jpg",
		OriginalName: originalName,
		Width:        w,
		Height:       h,
		Size:         buf.Len(),
		UploadedAt:   time.Now().UTC(),
	}, buf.Bytes(), "image/jpeg", nil
}

// slugifyFilename converts a filename (without extension) to a URL-safe slug.
func slugifyFilename(name string) string {
	ext := filepath.Ext(name)
	return strings.Trim(content.Slugify(strings.TrimSuffix(filepath.Base(name), ext)), "-")
}

// ensureUniqueFilename appends a counter until the name is free in both the
// upload backend and the images table.
func (a *App) ensureUniqueFilename(ctx context.Context, img *Image) error {
	ext := filepath.Ext(img.Filename)
	base := strings.TrimSuffix(img.Filename, ext)
	candidate := img.Filename
	for counter := 2; ; counter++ {
		inStore, err := a.Store.ImageExists(ctx, candidate)
		if err != nil {
			return err
		}
		inUploads, err := a.Uploads.Exists(ctx, candidate)
		if err != nil {
			return err
		}
		if !inStore && !inUploads {
			break
		}
		candidate = fmt.Sprintf("%s-%d%s", base, counter, ext)
	}
	img.Filename = candidate
	return nil
}

func (a *App) handleImageUpload(c echo.Context) error {
	ctx := c.Request().Context()
	file, err := c.FormFile("image")
	if err != nil {
		return a.renderImageList(c, "No image file provided", http.StatusBadRequest)
	}
	if file.Size > maxUploadSize {
		return a.renderImageList(c, "File too large (max 10MB)", http.StatusBadRequest)
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	img, data, contentType, err := processImage(src, file.Filename)
	if err != nil {
		return a.renderImageList(c, "Invalid image: "+err.Error(), http.StatusBadRequest)
	}
	if err := a.ensureUniqueFilename(ctx, &img); err != nil {
		a.Log.Error("check image name failed", logger.Error(err))
		return a.renderImageList(c, "Failed to upload image", http.StatusInternalServerError)
	}

	url, err := a.Uploads.Put(ctx, img.Filename, data, contentType)
	if err != nil {
		a.Log.Error("store image failed", logger.String("filename", img.Filename), logger.Error(err))
		return a.renderImageList(c, "Failed to upload image", http.StatusInternalServerError)
	}
	img.URL = url
	if err := a.Store.SaveImage(ctx, img); err != nil {
		a.Log.Error("save image metadata failed", logger.String("filename", img.Filename), logger.Error(err))
		_ = a.Uploads.Delete(ctx, img.Filename)
		return a.renderImageList(c, "Failed to upload image", http.StatusInternalServerError)
	}
	a.Log.Info("image uploaded",
		logger.String("filename", img.Filename),
		logger.Int("width", img.Width),
		logger.Int("height", img.Height))
	return a.renderImageList(c, "Uploaded "+img.Filename, http.StatusOK)
}

func (a *App) handleImageDelete(c echo.Context) error {
	ctx := c.Request().Context()
	filename := c.Param("filename")
	if _, err := cleanName(filename); err != nil {
		return a.renderImageList(c, "Invalid file name", http.StatusBadRequest)
	}
	if err := a.Uploads.Delete(ctx, filename); err != nil {
		a.Log.Error("delete image file failed", logger.String("filename", filename), logger.Error(err))
		return a.renderImageList(c, "Failed to delete image", http.StatusInternalServerError)
	}
	if err := a.Store.DeleteImage(ctx, filename); err != nil && !errors.Is(err, ErrNotFound) {
		a.Log.Error("delete image metadata failed", logger.String("filename", filename), logger.Error(err))
		return a.renderImageList(c, "Failed to delete image", http.StatusInternalServerError)
	}
	return a.renderImageList(c, "Deleted "+filename, http.StatusOK)
}

func (a *App) handleImageList(c echo.Context) error {
	return a.renderImageList(c, c.QueryParam("msg"), http.StatusOK)
}

func (a *App) renderImageList(c echo.Context, msg string, code int) error {
	images, err := a.Store.ListImages(c.Request().Context())
	if err != nil {
		a.Log.Error("list images failed", logger.Error(err))
		images = nil
		msg = "Failed to load images"
		code = http.StatusInternalServerError
	}
	return RenderStatus(c, code, a.Views.AdminImages(a.page(c, "Images"), images, msg))
}
