//go:build darwin && cgo

package darwin

import "github.com/mj1618/keyword-server/internal/native"

func init() {
	native.NewProviderFunc = func() (*native.Provider, error) {
		return &native.Provider{
			Mouse:  NewMouse(),
			Screen: NewScreen(),
		}, nil
	}
}
