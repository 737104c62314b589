package main

import (
	"errors"
	"os"
	"path/filepath"

	enhance "github.com/alnah/go-enhance"
	"github.com/alnah/go-enhance/internal/assets"
	"github.com/alnah/go-enhance/internal/config"
	"github.com/alnah/go-enhance/internal/hints"
)

// formatError renders err for the terminal with an actionable hint when
// one applies. configName is the --config value, used to suggest where
// a config could be created.
func formatError(err error, configName string) string {
	msg := "error: " + err.Error()

	switch {
	case errors.Is(err, enhance.ErrBrowserConnect):
		msg += hints.ForBrowserConnect()
	case isTimeout(err):
		msg += hints.ForTimeout()
	case errors.Is(err, config.ErrConfigNotFound):
		msg += hints.ForConfigNotFound(userConfigPaths(configName))
	case errors.Is(err, enhance.ErrStyleNotFound):
		msg += hints.ForStyleNotFound(assets.EmbeddedStyles())
	case errors.Is(err, ErrOutputDir):
		msg += hints.ForOutputDirectory()
	case errors.Is(err, ErrNoInput), errors.Is(err, ErrNoPages):
		msg += hints.ForNoInput()
	}
	return msg
}

// userConfigPaths lists where a named config is looked up under the user
// config directory. Paths and empty names yield nothing.
func userConfigPaths(name string) []string {
	if name == "" || filepath.Base(name) != name {
		return nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil
	}
	return []string{
		filepath.Join(dir, "go-enhance", name+".yaml"),
		filepath.Join(dir, "go-enhance", name+".yml"),
	}
}
