package imaging

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// noisyImage produces an incompressible image so the encoded file
// comfortably exceeds the optimizer's size threshold.
func noisyImage(w, h int) *image.RGBA {
	rng := rand.New(rand.NewSource(42))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(rng.Intn(256)),
				G: uint8(rng.Intn(256)),
				B: uint8(rng.Intn(256)),
				A: 255,
			})
		}
	}
	return img
}

func writePNG(t *testing.T, path string, img image.Image) int64 {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	info, err := f.Stat()
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	return info.Size()
}

func TestOptimizeSmallFileUntouched(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "small.png")
	writePNG(t, path, image.NewRGBA(image.Rect(0, 0, 10, 10)))

	got, err := NewOptimizer().Optimize(path)
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}
	if got != path {
		t.Errorf("small file should pass through, got %q", got)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected no new files, found %d entries", len(entries))
	}
}

func TestOptimizeShrinksLargeWideImage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.png")
	inputSize := writePNG(t, path, noisyImage(2000, 800))
	if inputSize <= 200*1024 {
		t.Fatalf("fixture too small to exercise compression: %d bytes", inputSize)
	}

	got, err := NewOptimizer().Optimize(path)
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}
	if got == path {
		t.Fatal("large file should have been rewritten")
	}
	if !strings.HasPrefix(filepath.Base(got), "compressed_") {
		t.Errorf("output name %q missing compressed_ prefix", filepath.Base(got))
	}

	out, err := os.Open(got)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer out.Close()

	info, err := out.Stat()
	if err != nil {
		t.Fatalf("stat output: %v", err)
	}
	if info.Size() > inputSize {
		t.Errorf("output (%d bytes) larger than input (%d bytes)", info.Size(), inputSize)
	}

	cfg, err := jpeg.DecodeConfig(out)
	if err != nil {
		t.Fatalf("decode output config: %v", err)
	}
	if cfg.Width != 1024 {
		t.Errorf("output width = %d, want 1024", cfg.Width)
	}
	wantHeight := 800 * 1024 / 2000
	if cfg.Height != wantHeight {
		t.Errorf("output height = %d, want %d", cfg.Height, wantHeight)
	}
}

func TestOptimizeNarrowImageKeepsWidth(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tall.png")
	writePNG(t, path, noisyImage(600, 1400))

	got, err := NewOptimizer().Optimize(path)
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}

	out, err := os.Open(got)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer out.Close()

	cfg, err := jpeg.DecodeConfig(out)
	if err != nil {
		t.Fatalf("decode output config: %v", err)
	}
	if cfg.Width != 600 || cfg.Height != 1400 {
		t.Errorf("dimensions changed to %dx%d, want 600x1400", cfg.Width, cfg.Height)
	}
}
