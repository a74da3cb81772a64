// Package native defines the operating-system level input and screen capture
// capability used by the native keywords. Platform packages install a
// Provider through NewProviderFunc.
package native

import (
	"fmt"
	"image"
	"runtime"
	"strings"
)

// MouseButton represents a mouse button.
type MouseButton int

const (
	MouseLeft MouseButton = iota
	MouseRight
	MouseMiddle
)

func (b MouseButton) String() string {
	switch b {
	case MouseLeft:
		return "left"
	case MouseRight:
		return "right"
	case MouseMiddle:
		return "middle"
	default:
		return fmt.Sprintf("button(%d)", int(b))
	}
}

// ParseMouseButton converts a button name to MouseButton.
func ParseMouseButton(s string) (MouseButton, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left":
		return MouseLeft, nil
	case "right":
		return MouseRight, nil
	case "middle":
		return MouseMiddle, nil
	default:
		return MouseLeft, fmt.Errorf("unknown mouse button: %q (expected left, right, or middle)", s)
	}
}

// Mouse moves the pointer and presses buttons.
type Mouse interface {
	Move(x, y int) error
	Press(b MouseButton) error
	Release(b MouseButton) error
}

// Screen captures the whole screen.
type Screen interface {
	Capture() (image.Image, error)
}

// Provider bundles the native backends for the current OS.
type Provider struct {
	Mouse  Mouse
	Screen Screen
}

// ErrUnsupported is returned when no platform package installed a provider.
var ErrUnsupported = fmt.Errorf("native input and screen capture are not supported on %s/%s", runtime.GOOS, runtime.GOARCH)

// NewProviderFunc is set by platform-specific packages via init().
var NewProviderFunc func() (*Provider, error)

// NewProvider returns a Provider for the current OS.
func NewProvider() (*Provider, error) {
	if NewProviderFunc == nil {
		return nil, ErrUnsupported
	}
	return NewProviderFunc()
}

// Click presses and releases b.
func Click(m Mouse, b MouseButton) error {
	if err := m.Press(b); err != nil {
		return err
	}
	return m.Release(b)
}

// DragAndDrop presses the left button at (fromX, fromY), moves to (toX, toY)
// and releases it there.
func DragAndDrop(m Mouse, fromX, fromY, toX, toY int) error {
	if err := m.Move(fromX, fromY); err != nil {
		return err
	}
	if err := m.Press(MouseLeft); err != nil {
		return err
	}
	if err := m.Move(toX, toY); err != nil {
		return err
	}
	return m.Release(MouseLeft)
}
