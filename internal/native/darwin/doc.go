//go:build darwin

// Package darwin installs the macOS native provider: CoreGraphics mouse
// events and full-screen capture. It requires cgo; without it the package
// installs nothing and native keywords report that they are unsupported.
package darwin
