package library

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/mj1618/keyword-server/internal/docs"
	"github.com/mj1618/keyword-server/internal/failure"
	"github.com/mj1618/keyword-server/internal/keyword"
	"github.com/mj1618/keyword-server/internal/native"
)

func (l *Library) nativeKeywords() []keyword.Keyword {
	const owner = "native"
	coord := func(name, desc string) docs.Param {
		return docs.Param{Name: name, Description: desc}
	}
	button := func(name, doc string, act func(m native.Mouse) error) keyword.Keyword {
		return keyword.Keyword{
			Name: name, Owner: owner, Doc: doc,
			Handler: l.withMouse(func(c *keyword.Call, m native.Mouse) error { return act(m) }),
		}
	}

	return []keyword.Keyword{
		{
			Name: "move_mouse_to_position", Owner: owner,
			Params: params(coord("x", "x-axis screen coordinate"), coord("y", "y-axis screen coordinate")),
			Doc:    "Move the mouse pointer to screen coordinates.",
			Handler: l.withMouse(func(c *keyword.Call, m native.Mouse) error {
				x, y, err := point(c.Arg(0), c.Arg(1), "x", "y")
				if err != nil {
					return err
				}
				return m.Move(x, y)
			}),
		},
		button("press_left_mouse_button", "Press the left mouse button.",
			func(m native.Mouse) error { return m.Press(native.MouseLeft) }),
		button("press_right_mouse_button", "Press the right mouse button.",
			func(m native.Mouse) error { return m.Press(native.MouseRight) }),
		button("release_left_mouse_button", "Release the left mouse button.",
			func(m native.Mouse) error { return m.Release(native.MouseLeft) }),
		button("release_right_mouse_button", "Release the right mouse button.",
			func(m native.Mouse) error { return m.Release(native.MouseRight) }),
		button("click_left_mouse_button", "Press and release the left mouse button.",
			func(m native.Mouse) error { return native.Click(m, native.MouseLeft) }),
		button("click_right_mouse_button", "Press and release the right mouse button.",
			func(m native.Mouse) error { return native.Click(m, native.MouseRight) }),
		{
			Name: "drag_and_drop", Owner: owner,
			Params: params(
				coord("start_x", "x-axis coordinate of the initial mouse press"),
				coord("start_y", "y-axis coordinate of the initial mouse press"),
				coord("finish_x", "x-axis coordinate of the final mouse release"),
				coord("finish_y", "y-axis coordinate of the final mouse release"),
			),
			Doc: "Drag with the left mouse button at the operating system level.",
			Handler: l.withMouse(func(c *keyword.Call, m native.Mouse) error {
				fx, fy, err := point(c.Arg(0), c.Arg(1), "start_x", "start_y")
				if err != nil {
					return err
				}
				tx, ty, err := point(c.Arg(2), c.Arg(3), "finish_x", "finish_y")
				if err != nil {
					return err
				}
				return native.DragAndDrop(m, fx, fy, tx, ty)
			}),
		},
		{
			Name: "capture_screenshot", Owner: owner,
			Params: params(
				docs.Param{Name: "path", HasDefault: true, Description: "file to write the PNG to; <unix time>_screenshot.png by default"},
				docs.Param{Name: "scale", Default: "1.0", HasDefault: true, Description: "scale factor between 0 and 1"},
			),
			Doc: "Capture the entire screen to a PNG file and return its path.",
			Handler: func(c *keyword.Call) (any, error) {
				scale, err := strconv.ParseFloat(c.Arg(1), 64)
				if err != nil || scale <= 0 || scale > 1 {
					return nil, failure.Usagef("Argument 'scale' must be a number between 0 and 1, got %q", c.Arg(1))
				}
				p, err := l.nativeProvider()
				if err != nil {
					return nil, err
				}
				if p.Screen == nil {
					return nil, failure.Delegate(native.ErrUnsupported)
				}
				img, err := p.Screen.Capture()
				if err != nil {
					return nil, failure.Delegate(err)
				}
				path := c.Arg(0)
				if path == "" {
					path = native.DefaultScreenshotPath(l.now())
				}
				if err := native.SaveScreenshot(path, img, scale); err != nil {
					return nil, failure.Delegate(err)
				}
				l.log.Debug("screenshot saved", zap.String("path", path))
				return path, nil
			},
		},
	}
}

func (l *Library) nativeProvider() (*native.Provider, error) {
	if l.provider != nil {
		return l.provider, nil
	}
	p, err := l.newProvider()
	if err != nil {
		return nil, failure.Delegate(err)
	}
	l.provider = p
	return p, nil
}

func (l *Library) withMouse(fn func(c *keyword.Call, m native.Mouse) error) keyword.Handler {
	return func(c *keyword.Call) (any, error) {
		p, err := l.nativeProvider()
		if err != nil {
			return nil, err
		}
		if p.Mouse == nil {
			return nil, failure.Delegate(native.ErrUnsupported)
		}
		return nil, delegate(fn(c, p.Mouse))
	}
}

func point(xs, ys, xName, yName string) (int, int, error) {
	x, err := number(xName, xs)
	if err != nil {
		return 0, 0, err
	}
	y, err := number(yName, ys)
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}
