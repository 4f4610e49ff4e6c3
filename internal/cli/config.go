package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/matzehuels/claimgraph/pkg/config"
)

// configCommand creates the config inspection command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.ConfigPath
			if path == "" {
				path = config.DefaultPath()
			}
			fmt.Fprintln(stdout, path)
			if _, err := os.Stat(path); os.IsNotExist(err) {
				printDetail("(not present; defaults and %s* variables apply)", config.EnvPrefix)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			data, err := marshalConfig(cfg)
			if err != nil {
				return err
			}
			_, err = stdout.Write(data)
			return err
		},
	})

	return cmd
}

// marshalConfig renders cfg as TOML with the API token masked.
func marshalConfig(cfg *config.Config) ([]byte, error) {
	shown := *cfg
	if shown.API.Token != "" {
		shown.API.Token = "********"
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(shown); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}
