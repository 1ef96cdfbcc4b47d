// Package steamlocate finds a Steam library's per-game assets folder,
// branching on OS the same way the source tool's install-path discovery
// does, so the CLI's "locate" verb can run without the user typing a path.
package steamlocate

import (
	"fmt"
	"os"
	"path/filepath"
)

// Game is a known Steam title this tool can resolve an assets folder for.
type Game string

const (
	GameWargroove  Game = "wargroove"
	GameWargroove2 Game = "wargroove2"
)

func (g Game) steamDirName() string {
	switch g {
	case GameWargroove2:
		return "Wargroove 2"
	default:
		return "Wargroove"
	}
}

// FindSteamFolder resolves the root Steam install directory for the current
// OS, returning an error if it can't be determined. The actual
// lookup is platform-specific; see steamroot_windows.go and
// steamroot_other.go.
func FindSteamFolder() (string, error) {
	return platformSteamRoot()
}

// FindGameAssetsFolder resolves "<steamRoot>/steamapps/common/<Game>/assets"
// for the given title, verifying the directory exists. If steamRoot is
// empty, it is resolved via FindSteamFolder first.
func FindGameAssetsFolder(game Game, steamRoot string) (string, error) {
	if steamRoot == "" {
		var err error
		steamRoot, err = FindSteamFolder()
		if err != nil {
			return "", err
		}
	}
	assets := filepath.Join(steamRoot, "steamapps", "common", game.steamDirName(), "assets")
	if _, err := os.Stat(assets); err != nil {
		return "", fmt.Errorf("assets folder not found at %s: %w", assets, err)
	}
	return assets, nil
}
