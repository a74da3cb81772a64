//go:build darwin

package main

// Registers the macOS mouse and screen provider for the native keywords.
import _ "github.com/mj1618/keyword-server/internal/native/darwin"
