package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/n0roo/vibespinner/internal/config"
	"github.com/n0roo/vibespinner/internal/db"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a catalog in the current directory",
	Long:  `Creates the .vibespinner directory, a default config and the database.`,
	RunE:  runInit,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and generate configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective config",
	RunE:  runConfigShow,
}

var configGenCmd = &cobra.Command{
	Use:   "gen <path>",
	Short: "Write the web client config artifact from FIREBASE_* env vars",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGen,
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGenCmd)

	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config")
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	cfgPath := config.Path(cwd)
	if _, err := os.Stat(cfgPath); err == nil && !initForce {
		return fmt.Errorf("already initialized: %s (use --force to overwrite)", cfgPath)
	}

	cfg := config.Defaults()
	if err := config.Save(cwd, cfg); err != nil {
		return err
	}

	database, err := db.Open(cfg.DBPath(cwd))
	if err != nil {
		return err
	}
	defer database.Close()

	version, err := database.GetVersion()
	if err != nil {
		return err
	}

	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(map[string]any{
			"status":         "initialized",
			"config":         cfgPath,
			"db":             database.Path(),
			"schema_version": version,
		})
	}
	fmt.Printf("✓ Initialized %s\n", filepath.Dir(cfgPath))
	fmt.Printf("  config: %s\n", cfgPath)
	fmt.Printf("  db:     %s (schema v%d)\n", database.Path(), version)
	fmt.Println("\nNext: vibe auth login <email>")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(cfg)
	}

	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	os.Stdout.Write(raw)
	return nil
}

func runConfigGen(cmd *cobra.Command, args []string) error {
	fb, ok := config.FirebaseFromEnv()
	if !ok {
		// Same behavior as the web build step: no artifact, the
		// client falls back to its built-in config
		if jsonOut {
			return json.NewEncoder(os.Stdout).Encode(map[string]string{"status": "fallback"})
		}
		fmt.Println("FIREBASE_* environment incomplete; no artifact written, client uses fallback config.")
		return nil
	}

	if err := fb.WriteArtifact(args[0]); err != nil {
		return err
	}

	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(map[string]string{
			"status": "written",
			"path":   args[0],
		})
	}
	fmt.Printf("✓ Wrote %s\n", args[0])
	return nil
}
