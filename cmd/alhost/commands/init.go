package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/benhaub/abstractionlayer/internal/cli/prompt"
	"github.com/benhaub/abstractionlayer/pkg/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a sample configuration file",
	Long: `Initialize a sample alhost configuration file.

By default, the configuration file is created at
$XDG_CONFIG_HOME/alhost/config.yaml. Use --config to specify a custom
path.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Force overwrite existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath := GetConfigFile()
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
	}

	if !initForce {
		if _, err := os.Stat(configPath); err == nil {
			overwrite, pErr := prompt.Confirm(fmt.Sprintf("%s already exists. Overwrite", configPath), false)
			if pErr != nil {
				if errors.Is(pErr, prompt.ErrAborted) {
					return fmt.Errorf("aborted")
				}
				return fmt.Errorf("configuration file already exists at %s (use --force to overwrite)", configPath)
			}
			if !overwrite {
				return fmt.Errorf("not overwriting %s", configPath)
			}
		}
	}

	if err := config.SaveConfig(config.GetDefaultConfig(), configPath); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	fmt.Printf("Configuration file created at: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Edit the configuration file to add network interfaces")
	fmt.Println("  2. Start the host process with: alhost start")
	fmt.Printf("  3. Or specify a custom config: alhost start --config %s\n", configPath)

	return nil
}
