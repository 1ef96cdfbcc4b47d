//go:build windows
// +build windows

package steamlocate

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/windows/registry"
)

// platformSteamRoot reads Steam's install path out of the registry key Steam
// itself writes on install, falling back to the default Program Files
// location if the key is absent or unreadable.
func platformSteamRoot() (string, error) {
	k, err := registry.OpenKey(registry.LOCAL_MACHINE, `SOFTWARE\WOW6432Node\Valve\Steam`, registry.QUERY_VALUE)
	if err == nil {
		defer k.Close()
		if path, _, err := k.GetStringValue("InstallPath"); err == nil && path != "" {
			return path, nil
		}
	}

	programFiles := os.Getenv("ProgramFiles(x86)")
	if programFiles == "" {
		programFiles = os.Getenv("ProgramFiles")
	}
	if programFiles == "" {
		return "", fmt.Errorf("ProgramFiles(x86) is not set and the Steam registry key was unreadable")
	}
	return filepath.Join(programFiles, "Steam"), nil
}
