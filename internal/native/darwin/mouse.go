//go:build darwin && cgo

package darwin

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework CoreGraphics -framework ApplicationServices
#include <CoreGraphics/CoreGraphics.h>

// button: 0=left, 1=right, 2=middle
static void event_types(int button, CGEventType *down, CGEventType *up, CGEventType *drag, CGMouseButton *cg) {
    switch (button) {
        case 1:
            *cg = kCGMouseButtonRight;
            *down = kCGEventRightMouseDown;
            *up = kCGEventRightMouseUp;
            *drag = kCGEventRightMouseDragged;
            break;
        case 2:
            *cg = kCGMouseButtonCenter;
            *down = kCGEventOtherMouseDown;
            *up = kCGEventOtherMouseUp;
            *drag = kCGEventOtherMouseDragged;
            break;
        default:
            *cg = kCGMouseButtonLeft;
            *down = kCGEventLeftMouseDown;
            *up = kCGEventLeftMouseUp;
            *drag = kCGEventLeftMouseDragged;
            break;
    }
}

static CGPoint cursor() {
    CGEventRef ev = CGEventCreate(NULL);
    CGPoint p = CGPointZero;
    if (ev) {
        p = CGEventGetLocation(ev);
        CFRelease(ev);
    }
    return p;
}

static int post(CGEventType type, CGPoint p, CGMouseButton cg) {
    CGEventRef ev = CGEventCreateMouseEvent(NULL, type, p, cg);
    if (!ev) return -1;
    CGEventPost(kCGHIDEventTap, ev);
    CFRelease(ev);
    return 0;
}

// held is the button being held (-1 for none); moves while a button is held
// are posted as drags so the target sees a drag gesture.
static int cg_move(float x, float y, int held) {
    CGPoint p = CGPointMake(x, y);
    if (held < 0) {
        return post(kCGEventMouseMoved, p, kCGMouseButtonLeft);
    }
    CGEventType down, up, drag;
    CGMouseButton cg;
    event_types(held, &down, &up, &drag, &cg);
    return post(drag, p, cg);
}

static int cg_button(int button, int press) {
    CGEventType down, up, drag;
    CGMouseButton cg;
    event_types(button, &down, &up, &drag, &cg);
    return post(press ? down : up, cursor(), cg);
}
*/
import "C"
import (
	"fmt"
	"sync"

	"github.com/mj1618/keyword-server/internal/native"
)

// Mouse posts CoreGraphics mouse events at the current cursor position.
type Mouse struct {
	mu   sync.Mutex
	held int
}

// NewMouse creates a mouse with no button held.
func NewMouse() *Mouse {
	return &Mouse{held: -1}
}

// Move moves the pointer to screen coordinates.
func (m *Mouse) Move(x, y int) error {
	if err := checkAccessibility(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if C.cg_move(C.float(x), C.float(y), C.int(m.held)) != 0 {
		return fmt.Errorf("failed to move mouse to (%d, %d)", x, y)
	}
	return nil
}

// Press presses b at the current position.
func (m *Mouse) Press(b native.MouseButton) error {
	if err := checkAccessibility(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if C.cg_button(cButton(b), 1) != 0 {
		return fmt.Errorf("failed to press %s mouse button", b)
	}
	m.held = int(cButton(b))
	return nil
}

// Release releases b at the current position.
func (m *Mouse) Release(b native.MouseButton) error {
	if err := checkAccessibility(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if C.cg_button(cButton(b), 0) != 0 {
		return fmt.Errorf("failed to release %s mouse button", b)
	}
	m.held = -1
	return nil
}

func cButton(b native.MouseButton) C.int {
	switch b {
	case native.MouseRight:
		return 1
	case native.MouseMiddle:
		return 2
	default:
		return 0
	}
}
