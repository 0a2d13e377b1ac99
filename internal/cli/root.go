// Package cli wires the vibe commands together.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/n0roo/vibespinner/internal/app"
	"github.com/n0roo/vibespinner/internal/auth"
	"github.com/n0roo/vibespinner/internal/config"
	"github.com/n0roo/vibespinner/internal/db"
	"github.com/n0roo/vibespinner/internal/store"
)

var (
	dbPath  string
	verbose bool
	jsonOut bool
)

var rootCmd = &cobra.Command{
	Use:   "vibe",
	Short: "Tag-driven place catalog",
	Long: `Vibespinner - a shared catalog of places, filtered by vibe.

Places carry tags from a small editable taxonomy. Pick the tags you
are in the mood for and the catalog narrows down to the places that
match.

Main features:
  - Tag filtering: OR within a group, every active group must match
  - Conditional groups: some tag groups only apply to certain types
  - Tag management: grow or prune the taxonomy, with cascade cleanup
  - Dashboard TUI: browse, add and edit without leaving the terminal`,
	Version: "0.1.0",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite DB path (default: .vibespinner/vibe.db)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "JSON output")
}

// GetProjectRoot locates the directory holding .vibespinner, falling
// back to the working directory
func GetProjectRoot() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	if root := config.FindRoot(cwd); root != "" {
		return root
	}
	return cwd
}

// GetDBPath returns the database path
func GetDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	root := GetProjectRoot()
	return config.Load(root).DBPath(root)
}

// GetConfig loads the project config, or defaults when absent
func GetConfig() *config.Config {
	return config.Load(GetProjectRoot())
}

// IsVerbose returns verbose flag
func IsVerbose() bool {
	return verbose
}

// IsJSON returns json output flag
func IsJSON() bool {
	return jsonOut
}

func openDB() (*db.DB, error) {
	return db.Open(GetDBPath())
}

// getAuth opens the auth provider over the project database
func getAuth() (*auth.Local, func(), error) {
	database, err := openDB()
	if err != nil {
		return nil, nil, err
	}
	return auth.NewLocal(database), func() { database.Close() }, nil
}

// getApp builds a started, synced app for one command invocation
func getApp() (*app.App, func(), error) {
	database, err := openDB()
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { database.Close() }

	provider := auth.NewLocal(database)
	session, ok, err := provider.Current()
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	if !ok {
		cleanup()
		return nil, nil, fmt.Errorf("not signed in (run: vibe auth login <email>)")
	}

	st := store.NewSQLite(database)
	a, err := app.New(GetConfig(), st, session)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	if err := a.Start(); err != nil {
		cleanup()
		return nil, nil, err
	}
	a.Sync()

	stop := func() {
		a.Stop()
		database.Close()
	}
	return a, stop, nil
}

// cacheDir is where analytics exports land
func cacheDir() string {
	return filepath.Join(GetProjectRoot(), ".vibespinner", "cache")
}
