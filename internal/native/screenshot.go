package native

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"strconv"
	"time"

	"golang.org/x/image/draw"
)

// DefaultScreenshotPath is the file name used when no path is given.
func DefaultScreenshotPath(now time.Time) string {
	return strconv.FormatInt(now.Unix(), 10) + "_screenshot.png"
}

// Scale resizes img by factor with Catmull-Rom interpolation. Factors
// outside (0, 1) return img unchanged.
func Scale(img image.Image, factor float64) image.Image {
	if factor <= 0 || factor >= 1 {
		return img
	}
	b := img.Bounds()
	w := max(1, int(float64(b.Dx())*factor))
	h := max(1, int(float64(b.Dy())*factor))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// SaveScreenshot writes img to path as PNG, scaled by factor.
func SaveScreenshot(path string, img image.Image, factor float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating screenshot file: %w", err)
	}
	if err := png.Encode(f, Scale(img, factor)); err != nil {
		f.Close()
		return fmt.Errorf("encoding screenshot: %w", err)
	}
	return f.Close()
}
