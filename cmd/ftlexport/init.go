package main

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pistekit/ftlexport/internal/config"
	"github.com/spf13/cobra"
)

//go:embed templates/ftlexport.yml
var configTemplate embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new ftlexport configuration file",
		Long: `Initialize creates a new ftlexport.yml configuration file in the current directory.

The generated file includes:
- The default FencingTimeLive base URL and output directory
- An optional PostgreSQL mirror DSN
- CSS selector overrides for when the site markup changes

Examples:
  # Create ftlexport.yml in current directory
  ftlexport init

  # Create config file at a specific path
  ftlexport init -o myconfig.yml

  # Create the file in the XDG config directory
  ftlexport init -g

  # Force overwrite existing file
  ftlexport init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")
	cmd.Flags().BoolP("global", "g", false,
		"Write the file to the XDG config directory instead of the current directory")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	global, err := cmd.Flags().GetBool("global")
	if err != nil {
		return err
	}
	if global {
		if cmd.Flags().Changed("output") {
			return errors.New("cannot combine --global with --output")
		}
		outputPath = filepath.Join(config.XDGConfigDir(), config.DefaultConfigFile)
	}

	// Check if file already exists
	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	// Read template from embedded filesystem
	content, err := configTemplate.ReadFile("templates/ftlexport.yml")
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	// Create parent directories if needed
	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// Write configuration file
	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	fmt.Printf("Created configuration file: %s\n", outputPath)
	fmt.Println("\nEdit this file to configure settings such as:")
	fmt.Println("  - The output directory for exported CSV files")
	fmt.Println("  - A PostgreSQL DSN for mirroring export summaries")
	fmt.Println("  - CSS selector overrides for FencingTimeLive markup changes")

	return nil
}
