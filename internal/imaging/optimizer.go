package imaging

import (
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"log"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/png"

	xdraw "golang.org/x/image/draw"
)

const (
	defaultMaxBytes = 200 * 1024
	defaultMaxWidth = 1024
	defaultQuality  = 40
)

// Optimizer shrinks oversized uploads before they are sent to the OCR
// provider: wide images are scaled down and everything is recompressed
// as low-quality JPEG.
type Optimizer struct {
	maxBytes int64
	maxWidth int
	quality  int
}

func NewOptimizer() *Optimizer {
	return &Optimizer{
		maxBytes: defaultMaxBytes,
		maxWidth: defaultMaxWidth,
		quality:  defaultQuality,
	}
}

// Optimize returns path unchanged when the file is already small
// enough. Otherwise it writes a recompressed copy next to the input,
// prefixed with "compressed_", and returns the new path.
func (o *Optimizer) Optimize(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat image: %w", err)
	}
	if info.Size() <= o.maxBytes {
		return path, nil
	}
	log.Printf("compressing %.2fKB image %s", float64(info.Size())/1024, filepath.Base(path))

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	img := flatten(src)
	if img.Bounds().Dx() > o.maxWidth {
		img = o.scaleToWidth(img, o.maxWidth)
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	outPath := filepath.Join(filepath.Dir(path), "compressed_"+base+".jpg")
	out, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("create compressed image: %w", err)
	}
	defer out.Close()

	if err := jpeg.Encode(out, img, &jpeg.Options{Quality: o.quality}); err != nil {
		return "", fmt.Errorf("encode compressed image: %w", err)
	}
	return outPath, nil
}

// flatten discards alpha and palette information by redrawing the
// image onto a plain RGBA canvas, which the JPEG encoder handles well.
func flatten(src image.Image) *image.RGBA {
	bounds := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Over)
	return dst
}

func (o *Optimizer) scaleToWidth(src *image.RGBA, width int) *image.RGBA {
	ratio := float64(width) / float64(src.Bounds().Dx())
	height := int(float64(src.Bounds().Dy()) * ratio)
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)
	return dst
}
