package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/conneroisu/vitrine/internal/config"
	"github.com/conneroisu/vitrine/internal/content"
)

const defaultContentFile = "testimonials.yml"

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Write a starter configuration and testimonials file",
	Long: `Write .vitrine.yml and testimonials.yml into the directory (default is the
current one). The testimonials file holds the built-in Hebrew testimonials
as a starting point. Existing files are kept unless --force is given.

Examples:
  vitrine init
  vitrine init site --force`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing files")
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	cfg := config.Default()
	cfg.Content.Path = defaultContentFile

	configPath := filepath.Join(dir, config.FileName)
	if err := config.WriteFile(configPath, cfg, initForce); err != nil {
		return err
	}

	contentPath := filepath.Join(dir, defaultContentFile)
	if _, err := os.Stat(contentPath); err == nil && !initForce {
		return fmt.Errorf("testimonials file %s already exists", contentPath)
	}
	if err := os.WriteFile(contentPath, content.DefaultYAML(), 0o644); err != nil {
		return fmt.Errorf("failed to write testimonials file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Created", configPath)
	fmt.Fprintln(out, "Created", contentPath)
	fmt.Fprintln(out, "\nNext: vitrine validate && vitrine serve")
	return nil
}
