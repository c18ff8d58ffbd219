package portfolio

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestProcessImageResizesWideImages(t *testing.T) {
	img, data, contentType, err := processImage(bytes.NewReader(pngBytes(t, 3200, 800)), "My Photo.PNG")
	if err != nil {
		t.Fatalf("processImage failed: %v", err)
	}
	if img.Filename != "my-photo.jpg" || contentType != "image/jpeg" {
		t.Errorf("filename/content type = %q/%q", img.Filename, contentType)
	}
	if img.Width != maxImageWidth || img.Height != 400 {
		t.Errorf("size = %dx%d, want %dx400", img.Width, img.Height, maxImageWidth)
	}
	if img.Size != len(data) || img.OriginalName != "My Photo.PNG" {
		t.Errorf("unexpected metadata: %+v", img)
	}
}

func TestProcessImageKeepsSmallImages(t *testing.T) {
	img, _, _, err := processImage(bytes.NewReader(pngBytes(t, 300, 200)), "small.png")
	if err != nil {
		t.Fatalf("processImage failed: %v", err)
	}
	if img.Width != 300 || img.Height != 200 {
		t.Errorf("size = %dx%d", img.Width, img.Height)
	}
}

func TestProcessImageKeepsGIF(t *testing.T) {
	pal := image.NewPaletted(image.Rect(0, 0, 2000, 10), color.Palette{color.Black, color.White})
	var buf bytes.Buffer
	if err := gif.Encode(&buf, pal, nil); err != nil {
		t.Fatal(err)
	}
	raw := buf.Bytes()

	img, data, contentType, err := processImage(bytes.NewReader(raw), "dance.gif")
	if err != nil {
		t.Fatalf("processImage failed: %v", err)
	}
	if contentType != "image/gif" || img.Filename != "dance.gif" {
		t.Errorf("content type/filename = %q/%q", contentType, img.Filename)
	}
	if !bytes.Equal(data, raw) || img.Width != 2000 {
		t.Error("GIF should be stored as uploaded")
	}
}

func TestProcessImageRejectsGarbage(t *testing.T) {
	if _, _, _, err := processImage(strings.NewReader("not an image"), "x.png"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestSlugifyFilename(t *testing.T) {
	tests := map[string]string{
		"Holiday Pic.JPG":   "holiday-pic",
		"../../etc/passwd":  "passwd",
		"screen_shot-1.png": "screen_shot-1",
		"???.png":           "",
		"- draft -.png":     "draft",
	}
	for in, want := range tests {
		if got := slugifyFilename(in); got != want {
			t.Errorf("slugifyFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCleanName(t *testing.T) {
	for _, bad := range []string{"", "../x.jpg", "a/b.jpg", ".hidden"} {
		if _, err := cleanName(bad); err == nil {
			t.Errorf("cleanName(%q) should fail", bad)
		}
	}
	if _, err := cleanName("ok.jpg"); err != nil {
		t.Errorf("cleanName(ok.jpg): %v", err)
	}
}

func TestLocalUploads(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "uploads")
	u := LocalUploads{Dir: dir, BaseURL: "/public/uploads"}

	url, err := u.Put(ctx, "a.jpg", []byte("data"), "image/jpeg")
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if url != "/public/uploads/a.jpg" {
		t.Errorf("url = %q", url)
	}
	if ok, err := u.Exists(ctx, "a.jpg"); err != nil || !ok {
		t.Fatalf("Exists = %v, %v", ok, err)
	}
	if _, err := os.Stat(filepath.Join(dir, "a.jpg")); err != nil {
		t.Fatalf("file not written: %v", err)
	}
	if err := u.Delete(ctx, "a.jpg"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if ok, _ := u.Exists(ctx, "a.jpg"); ok {
		t.Error("file still exists after delete")
	}
	if err := u.Delete(ctx, "a.jpg"); err != nil {
		t.Errorf("deleting a missing file should succeed, got %v", err)
	}
	if _, err := u.Put(ctx, "../escape.jpg", nil, ""); err == nil {
		t.Error("Put should reject path traversal")
	}
}

func TestEnsureUniqueFilename(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	uploads := LocalUploads{Dir: t.TempDir(), BaseURL: "/public/uploads"}
	a := &App{Store: s, Uploads: uploads}

	if err := s.SaveImage(ctx, Image{Filename: "cat.jpg"}); err != nil {
		t.Fatal(err)
	}
	if _, err := uploads.Put(ctx, "cat-2.jpg", []byte("x"), ""); err != nil {
		t.Fatal(err)
	}

	img := Image{Filename: "cat.jpg"}
	if err := a.ensureUniqueFilename(ctx, &img); err != nil {
		t.Fatal(err)
	}
	if img.Filename != "cat-3.jpg" {
		t.Errorf("Filename = %q, want cat-3.jpg", img.Filename)
	}
}
