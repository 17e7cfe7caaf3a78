package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"rolecraft/internal/config"
)

func initCmd() *cobra.Command {
	var projectName string
	var dsn string
	var withCatalog bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a new rolecraft project",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(projectName) == "" {
				return fmt.Errorf("--name is required")
			}
			return runInit(projectName, dsn, withCatalog)
		},
	}
	cmd.Flags().StringVar(&projectName, "name", "", "Project name")
	cmd.Flags().StringVar(&dsn, "dsn", "sqlite://rolecraft.db", "Database DSN (sqlite:// or postgres://)")
	cmd.Flags().BoolVar(&withCatalog, "catalog", false, "Write the built-in trait catalog to traits.yaml for editing")
	return cmd
}

func runInit(projectName, dsn string, withCatalog bool) error {
	catalogPath := "traits.yaml"
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("%s already exists", configPath)
	}
	if withCatalog {
		if _, err := os.Stat(catalogPath); err == nil {
			return fmt.Errorf("%s already exists", catalogPath)
		}
	}

	catalogLine := ""
	if withCatalog {
		catalogLine = "catalog: " + catalogPath + "\n"
	}
	configContents := fmt.Sprintf("project: %s\nversion: 1\n\ndatabase:\n  dsn: %q\n%s\nlore:\n  paths:\n    - ./lore/\n\nlogging:\n  level: info\n  format: console\n", projectName, dsn, catalogLine)
	if err := os.WriteFile(configPath, []byte(configContents), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", configPath, err)
	}

	if withCatalog {
		contents, err := config.DefaultCatalog().Marshal()
		if err != nil {
			return fmt.Errorf("rendering trait catalog: %w", err)
		}
		if err := os.WriteFile(catalogPath, contents, 0o600); err != nil {
			return fmt.Errorf("writing %s: %w", catalogPath, err)
		}
	}

	if err := os.MkdirAll("lore", 0o755); err != nil {
		return fmt.Errorf("creating lore directory: %w", err)
	}
	return nil
}
