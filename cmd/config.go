package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	cfgpkg "github.com/hydroponica/ecdash/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or scaffold the configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		b, err := yaml.Marshal(c)
		if err != nil {
			return fmt.Errorf("marshal yaml: %w", err)
		}
		fmt.Print(string(b))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default group/EC mapping",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := &cfgpkg.Config{
			DataDir:       "data",
			ImageDir:      "images",
			ListenAddr:    ":8080",
			EnvMarker:     "환경데이터",
			GrowthKeyword: "생육결과",
			Groups:        cfgpkg.DefaultGroups(),
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		if cfgFile != "" {
			fmt.Printf("✓ Wrote %s\n", cfgFile)
		} else {
			fmt.Println("✓ Wrote ~/.ecdash/config.yaml")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
