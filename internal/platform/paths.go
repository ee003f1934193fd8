// Package platform resolves where dayflow keeps its config, journal store and logs.
package platform

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const defaultAppName = "dayflow"

// Paths is the resolved on-disk layout for one app name.
type Paths struct {
	ConfigPath string
	DataDir    string
	DBPath     string
	LogDir     string
}

// Options selects the app directory name.
type Options struct {
	AppName string
	DevMode bool
}

// Env reads an environment variable; os.Getenv in production.
type Env func(string) string

// Bases are the per-user roots the layout hangs off.
type Bases struct {
	Home      string
	ConfigDir string
}

// DefaultPaths returns the layout for the default app name.
func DefaultPaths() (Paths, error) {
	return DefaultPathsWithOptions(Options{})
}

// DefaultPathsWithOptions resolves the layout for the current OS and user.
func DefaultPathsWithOptions(opts Options) (Paths, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return Paths{}, err
	}
	// A missing home only loses the XDG data/state fallbacks.
	home, _ := os.UserHomeDir()
	return Resolve(runtime.GOOS, os.Getenv, Bases{Home: home, ConfigDir: configDir}, AppDirName(opts))
}

// AppDirName is the directory name for opts; dev mode gets its own tree.
func AppDirName(opts Options) string {
	name := strings.TrimSpace(opts.AppName)
	if name == "" {
		name = defaultAppName
	}
	if opts.DevMode {
		name += "-dev"
	}
	return name
}

// Resolve maps bases and environment to the layout for goos.
//
//	linux:   $XDG_CONFIG_HOME, $XDG_DATA_HOME, $XDG_STATE_HOME (logs)
//	windows: %APPDATA% for config, %LOCALAPPDATA% for data and logs
//	darwin:  Application Support for config and data, ~/Library/Logs
func Resolve(goos string, getenv Env, bases Bases, appName string) (Paths, error) {
	if strings.TrimSpace(bases.ConfigDir) == "" {
		return Paths{}, errors.New("empty user config dir")
	}
	appName = strings.TrimSpace(appName)
	if appName == "" {
		return Paths{}, errors.New("empty app name")
	}
	if getenv == nil {
		getenv = func(string) string { return "" }
	}
	lookup := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}
	underHome := func(fallback string, elem ...string) string {
		if bases.Home == "" {
			return fallback
		}
		return filepath.Join(append([]string{bases.Home}, elem...)...)
	}

	configRoot := bases.ConfigDir
	dataRoot := bases.ConfigDir
	var logDir string

	switch goos {
	case "windows":
		configRoot = lookup("APPDATA", configRoot)
		dataRoot = lookup("LOCALAPPDATA", dataRoot)
		logDir = filepath.Join(dataRoot, appName, "logs")
	case "darwin":
		logDir = underHome(filepath.Join(dataRoot, appName, "logs"), "Library", "Logs", appName)
	case "linux":
		configRoot = lookup("XDG_CONFIG_HOME", configRoot)
		dataRoot = lookup("XDG_DATA_HOME", underHome(dataRoot, ".local", "share"))
		stateRoot := lookup("XDG_STATE_HOME", underHome(dataRoot, ".local", "state"))
		logDir = filepath.Join(stateRoot, appName, "logs")
	default:
		logDir = filepath.Join(dataRoot, appName, "logs")
	}

	dataDir := filepath.Join(dataRoot, appName)
	return Paths{
		ConfigPath: filepath.Join(configRoot, appName, "config.toml"),
		DataDir:    dataDir,
		DBPath:     filepath.Join(dataDir, appName+".db"),
		LogDir:     logDir,
	}, nil
}

// StorePath is the default store location for a backend. Badger keeps a
// directory, so it gets a suffix instead of an extension.
func (p Paths) StorePath(backend string) string {
	base := strings.TrimSuffix(p.DBPath, filepath.Ext(p.DBPath))
	switch backend {
	case "bolt":
		return base + ".bolt"
	case "badger":
		return base + "-badger"
	default:
		return p.DBPath
	}
}
