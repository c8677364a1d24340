package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/prosodylab/prosolia/configs"
)

// configTestCmd validates the effective configuration and prints it
var configTestCmd = &cobra.Command{
	Use:   "config-test",
	Short: "Validate and display the effective configuration",
	Long: `Load the configuration from all sources (defaults, config file,
environment, flags), validate it, and print the effective values.

Examples:
  prosolia config-test
  prosolia --config /path/to/prosolia.yaml config-test`,
	Args: cobra.NoArgs,
	RunE: runConfigTest,
}

func init() {
	rootCmd.AddCommand(configTestCmd)
}

func runConfigTest(cmd *cobra.Command, args []string) error {
	fmt.Printf("Configuration Test\n")
	fmt.Printf("==================\n\n")

	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Printf("Config file: %s\n\n", used)
	} else {
		fmt.Printf("Config file: (none, defaults only)\n\n")
	}

	config, err := configs.LoadConfig()
	if err != nil {
		return fmt.Errorf("%sfailed to load config: %v%s", ColorRed, err, ColorReset)
	}

	if err := config.Validate(); err != nil {
		fmt.Printf("%sValidation failed: %v%s\n", ColorRed, err, ColorReset)
		return err
	}
	fmt.Printf("%sConfiguration is valid%s\n\n", ColorGreen, ColorReset)

	effective, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to render configuration: %w", err)
	}
	fmt.Printf("Effective settings\n------------------\n%s", effective)

	return nil
}
