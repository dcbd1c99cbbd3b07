package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/matsen/bibclique/internal/config"
)

func init() {
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect library configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Show the effective configuration: .bibclique/config.yml with defaults
filled in and BIBCLIQUE_SENSITIVITY / BIBCLIQUE_ID_FORMAT applied.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

// ConfigResponse is the response for the config show command.
type ConfigResponse struct {
	Path             string   `json:"path"`
	Sensitivity      int      `json:"sensitivity"`
	PersonNameFormat string   `json:"person_name_format"`
	BeautifyMonth    bool     `json:"beautify_month"`
	IDFormats        []string `json:"id_formats"`
	DefaultIDFormat  string   `json:"default_id_format"`
	UnionFields      []string `json:"union_fields"`
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	root := mustFindLibrary()
	cfg := mustLoadConfig(root)

	if humanOutput {
		data, err := yaml.Marshal(cfg)
		if err != nil {
			exitWithError(ExitError, "encoding config: %v", err)
		}
		fmt.Printf("# %s\n%s", config.ConfigPath(root), data)
		return nil
	}

	outputJSON(ConfigResponse{
		Path:             config.ConfigPath(root),
		Sensitivity:      cfg.Sensitivity,
		PersonNameFormat: cfg.PersonNameFormat,
		BeautifyMonth:    cfg.BeautifyMonth,
		IDFormats:        cfg.IDFormats,
		DefaultIDFormat:  cfg.DefaultIDFormat,
		UnionFields:      cfg.UnionFields,
	})
	return nil
}
