//go:build darwin && cgo

package darwin

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework ApplicationServices -framework CoreGraphics
#include <ApplicationServices/ApplicationServices.h>

static int is_trusted() {
    return AXIsProcessTrusted();
}

static int screen_capture_allowed() {
    if (__builtin_available(macOS 10.15, *)) {
        return CGPreflightScreenCaptureAccess();
    }
    return 1;
}
*/
import "C"
import "errors"

var errAccessibility = errors.New("accessibility permission required\n\n" +
	"Grant permission at: System Settings > Privacy & Security > Accessibility\n" +
	"Add the app running keyword-server (e.g. Terminal.app or iTerm2), then restart it.")

var errScreenRecording = errors.New("screen recording permission required\n\n" +
	"Grant permission at: System Settings > Privacy & Security > Screen Recording\n" +
	"Add the app running keyword-server (e.g. Terminal.app or iTerm2), then restart it.")

func checkAccessibility() error {
	if C.is_trusted() == 0 {
		return errAccessibility
	}
	return nil
}

func checkScreenRecording() error {
	if C.screen_capture_allowed() == 0 {
		return errScreenRecording
	}
	return nil
}
