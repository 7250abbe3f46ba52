package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/samsaffron/term-md/internal/config"
	"github.com/samsaffron/term-md/internal/llm"
	"github.com/samsaffron/term-md/internal/ui"
)

var (
	configInitForce    bool
	configInitProvider string
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage term-md configuration",
	Long: `View or create your term-md configuration.

Examples:
  term-md config                      # show current config
  term-md config path                 # print config file path
  term-md config init                 # write a default config file`,
	RunE: configShow, // Default to show
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  configShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print configuration file path",
	Args:  cobra.NoArgs,
	RunE:  configPath,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Args:  cobra.NoArgs,
	RunE:  configInit,
}

func init() {
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "Overwrite an existing config file")
	configInitCmd.Flags().StringVar(&configInitProvider, "with-provider", "", "Provider to write (prompts when omitted on a terminal)")
	if err := configInitCmd.RegisterFlagCompletionFunc("with-provider", ProviderFlagCompletion); err != nil {
		panic("failed to register provider completion: " + err.Error())
	}
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)
}

func configShow(cmd *cobra.Command, args []string) error {
	configPath, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !config.Exists() {
		fmt.Fprintf(out, "# No config file (using defaults)\n")
		fmt.Fprintf(out, "# Create one at: %s\n\n", configPath)
	} else {
		fmt.Fprintf(out, "# %s\n\n", configPath)
	}

	data, err := config.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}

func configPath(cmd *cobra.Command, args []string) error {
	configPath, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), configPath)
	return nil
}

func configInit(cmd *cobra.Command, args []string) error {
	configPath, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	if config.Exists() && !configInitForce {
		return fmt.Errorf("config already exists at %s (use --force to overwrite)", configPath)
	}

	cfg := config.Defaults()
	provider := configInitProvider
	if provider == "" && term.IsTerminal(int(os.Stdin.Fd())) {
		if provider, err = ui.SelectProvider(cfg.Provider, llm.ProviderNames()); err != nil {
			return err
		}
	}
	if err := cfg.ApplyOverrides(provider, ""); err != nil {
		return err
	}

	if err := config.Save(cfg); err != nil {
		return err
	}
	ui.ShowResult(true, "Wrote "+configPath)
	return nil
}
