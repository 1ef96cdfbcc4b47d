//go:build !windows
// +build !windows

package steamlocate

import (
	"os"
	"path/filepath"
	"runtime"
)

// platformSteamRoot resolves Steam's well-known install directory on macOS
// and Linux; there is no registry to consult off Windows.
func platformSteamRoot() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Application Support", "Steam"), nil
	}
	return filepath.Join(home, ".steam", "steam"), nil
}
