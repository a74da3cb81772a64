//go:build darwin && cgo

package darwin

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework CoreGraphics -framework CoreFoundation
#include <CoreGraphics/CoreGraphics.h>
#include <stdlib.h>

// cg_capture_main draws the main display into a freshly allocated RGBA
// buffer. The caller frees *out.
static int cg_capture_main(unsigned char **out, int *width, int *height) {
    CGImageRef img = CGDisplayCreateImage(CGMainDisplayID());
    if (!img) return -1;

    size_t w = CGImageGetWidth(img);
    size_t h = CGImageGetHeight(img);
    unsigned char *buf = calloc(w * h, 4);
    if (!buf) {
        CGImageRelease(img);
        return -1;
    }

    CGColorSpaceRef cs = CGColorSpaceCreateDeviceRGB();
    CGContextRef ctx = CGBitmapContextCreate(buf, w, h, 8, w * 4, cs,
        kCGImageAlphaPremultipliedLast | kCGBitmapByteOrder32Big);
    CGColorSpaceRelease(cs);
    if (!ctx) {
        free(buf);
        CGImageRelease(img);
        return -1;
    }
    CGContextDrawImage(ctx, CGRectMake(0, 0, w, h), img);
    CGContextRelease(ctx);
    CGImageRelease(img);

    *out = buf;
    *width = (int)w;
    *height = (int)h;
    return 0;
}
*/
import "C"
import (
	"errors"
	"image"
	"unsafe"
)

// Screen captures the main display.
type Screen struct{}

// NewScreen creates a screen capturer.
func NewScreen() *Screen {
	return &Screen{}
}

// Capture returns the main display as an RGBA image.
func (s *Screen) Capture() (image.Image, error) {
	if err := checkScreenRecording(); err != nil {
		return nil, err
	}
	var buf *C.uchar
	var w, h C.int
	if C.cg_capture_main(&buf, &w, &h) != 0 {
		return nil, errors.New("screen capture failed (check Screen Recording permission in System Settings > Privacy & Security > Screen Recording)")
	}
	defer C.free(unsafe.Pointer(buf))

	img := image.NewRGBA(image.Rect(0, 0, int(w), int(h)))
	copy(img.Pix, C.GoBytes(unsafe.Pointer(buf), w*h*4))
	return img, nil
}
