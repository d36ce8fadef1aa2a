package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/prasenjit/swagger-hub/internal/config"
	"github.com/prasenjit/swagger-hub/internal/option"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize swagger-hub with a default configuration",
	Long: `Creates the default configuration file (config.yaml) and data directory.

The configuration contains the server settings and an example hub section
listing one document routed through the hub and one called directly.

If config.yaml already exists, it will not be overwritten unless --force is used.`,
	RunE: runInit,
}

var (
	initForce   bool
	initPath    string
	initSection string
)

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite existing config file")
	initCmd.Flags().StringVarP(&initPath, "path", "p", ".", "Path where to initialize (default: current directory)")
	initCmd.Flags().StringVar(&initSection, "section", option.DefaultSectionName, "Name of the hub section")
}

type exampleDocument struct {
	BaseAddressURL string           `yaml:"BaseAddressUrl"`
	DocumentURL    string           `yaml:"DocumentUrl"`
	URLSuffix      string           `yaml:"UrlSuffix,omitempty"`
	IsDirectCall   bool             `yaml:"IsDirectCall"`
	Parameters     []map[string]any `yaml:"Parameters,omitempty"`
}

type exampleHub struct {
	Title       string            `yaml:"Title"`
	Version     string            `yaml:"Version"`
	Description string            `yaml:"Description"`
	Documents   []exampleDocument `yaml:"Documents"`
}

func runInit(cmd *cobra.Command, args []string) error {
	absPath, err := filepath.Abs(initPath)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	configFile := filepath.Join(absPath, "config.yaml")
	dataDir := filepath.Join(absPath, "data")

	if _, err := os.Stat(configFile); err == nil && !initForce {
		return fmt.Errorf("config.yaml already exists. Use --force to overwrite")
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dataDir, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created directory: %s\n", dataDir)

	data, err := defaultConfigYAML(initSection)
	if err != nil {
		return fmt.Errorf("failed to generate config: %w", err)
	}

	if err := os.WriteFile(configFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created config file: %s\n", configFile)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Initialization complete! Edit the document list, then start the server with:")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  cd %s\n", absPath)
	fmt.Fprintln(out, "  swagger-hub validate")
	fmt.Fprintln(out, "  swagger-hub serve")
	fmt.Fprintln(out)

	return nil
}

// defaultConfigYAML renders the application defaults followed by an example
// hub section named section
func defaultConfigYAML(section string) ([]byte, error) {
	cfg := config.Default()
	cfg.Storage.Type = "file"
	cfg.Hub.Section = section

	app, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, err
	}

	hubSection, err := yaml.Marshal(map[string]exampleHub{
		section: {
			Title:       "API Hub",
			Version:     "1.0.0",
			Description: "Merged API of every configured service",
			Documents: []exampleDocument{
				{
					BaseAddressURL: "http://localhost:5001/",
					DocumentURL:    "swagger/v1/swagger.json",
					URLSuffix:      "orders",
					Parameters: []map[string]any{{
						"Name":     "X-Api-Key",
						"In":       "header",
						"Required": true,
						"Schema":   map[string]any{"type": "string"},
					}},
				},
				{
					BaseAddressURL: "http://localhost:5002/",
					DocumentURL:    "swagger/v1/swagger.json",
					IsDirectCall:   true,
				},
			},
		},
	})
	if err != nil {
		return nil, err
	}

	header := "# swagger-hub configuration\n\n"
	return []byte(header + string(app) + "\n" + string(hubSection)), nil
}
