package imginfo

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestStatRGBA(t *testing.T) {
	path := writePNG(t, image.NewNRGBA(image.Rect(0, 0, 192, 192)))

	info, err := Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Width != 192 || info.Height != 192 {
		t.Errorf("size = %dx%d, want 192x192", info.Width, info.Height)
	}
	if !info.HasAlpha {
		t.Error("HasAlpha = false, want true for NRGBA")
	}
}

func TestStatGrayNoAlpha(t *testing.T) {
	path := writePNG(t, image.NewGray(image.Rect(0, 0, 10, 20)))

	info, err := Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Width != 10 || info.Height != 20 {
		t.Errorf("size = %dx%d, want 10x20", info.Width, info.Height)
	}
	if info.HasAlpha {
		t.Error("HasAlpha = true, want false for grayscale")
	}
}

func TestStatPalettedWithTransparency(t *testing.T) {
	pal := color.Palette{color.NRGBA{0, 0, 0, 0}, color.NRGBA{255, 0, 0, 255}}
	img := image.NewPaletted(image.Rect(0, 0, 8, 8), pal)
	path := writePNG(t, img)

	info, err := Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if !info.HasAlpha {
		t.Error("HasAlpha = false, want true for palette with transparent entry")
	}
}

func TestStatMissingFile(t *testing.T) {
	if _, err := Stat(filepath.Join(t.TempDir(), "nope.png")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestStatNotAPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.png")
	if err := os.WriteFile(path, []byte("not a png"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Stat(path); err == nil {
		t.Error("expected error for junk file")
	}
}
