package service

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// testPNG returns an encoded PNG of the given size.
func testPNG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestMediaService_Store(t *testing.T) {
	svc := NewMediaService(t.TempDir())

	ref, err := svc.Store(MediaKindAvatar, testPNG(t, 400, 400))
	if err != nil {
		t.Fatalf("Store: %v", err)
	}

	if !strings.HasPrefix(ref, "avatars/") || !strings.HasSuffix(ref, ".png") {
		t.Errorf("ref = %q; want avatars/<uuid>.png", ref)
	}

	path, err := svc.Path(ref, "")
	if err != nil {
		t.Fatalf("Path: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("original not written: %v", err)
	}

	// 400x400 exceeds the thumbnail target, so a thumbnail must exist.
	thumbPath, err := svc.Path(ref, "thumbnail")
	if err != nil {
		t.Fatalf("Path thumbnail: %v", err)
	}
	if _, err := os.Stat(thumbPath); err != nil {
		t.Errorf("thumbnail not written: %v", err)
	}
}

func TestMediaService_StoreSmallImageSkipsVariants(t *testing.T) {
	dir := t.TempDir()
	svc := NewMediaService(dir)

	ref, err := svc.Store(MediaKindPhoto, testPNG(t, 64, 64))
	if err != nil {
		t.Fatalf("Store: %v", err)
	}

	// The card variant fits within bounds already and is skipped. The
	// thumbnail crops, so it is still produced.
	name := filepath.Base(ref)
	if _, err := os.Stat(filepath.Join(dir, "photos", "card", name)); !os.IsNotExist(err) {
		t.Error("card variant should be skipped for small images")
	}
	if _, err := os.Stat(filepath.Join(dir, "photos", "thumbnail", name)); err != nil {
		t.Errorf("thumbnail should still be produced: %v", err)
	}
}

func TestMediaService_StoreRejectsBadInput(t *testing.T) {
	svc := NewMediaService(t.TempDir())

	if _, err := svc.Store(MediaKindAvatar, []byte("not an image at all")); err == nil {
		t.Error("non-image data should be rejected")
	}
	if _, err := svc.Store(MediaKindAvatar, nil); err == nil {
		t.Error("empty upload should be rejected")
	}
	if _, err := svc.Store("documents", testPNG(t, 10, 10)); err == nil {
		t.Error("unknown kind should be rejected")
	}
}

func TestMediaService_PathRejectsTraversal(t *testing.T) {
	svc := NewMediaService(t.TempDir())

	for _, ref := range []string{
		"avatars/../secret.png",
		"../avatars/x.png",
		"etc/passwd",
		"avatars/",
		"",
	} {
		if _, err := svc.Path(ref, ""); err == nil {
			t.Errorf("Path(%q) should fail", ref)
		}
	}

	if _, err := svc.Path("avatars/x.png", "original"); err == nil {
		t.Error("unknown variant should be rejected")
	}
}

func TestMediaService_Delete(t *testing.T) {
	svc := NewMediaService(t.TempDir())

	ref, err := svc.Store(MediaKindAvatar, testPNG(t, 400, 400))
	if err != nil {
		t.Fatalf("Store: %v", err)
	}

	if err := svc.Delete(ref); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	path, _ := svc.Path(ref, "")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("original should be gone after Delete")
	}

	// Deleting again is a no-op.
	if err := svc.Delete(ref); err != nil {
		t.Errorf("second Delete should succeed: %v", err)
	}
}
