package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/samsaffron/term-md/internal/config"
	"github.com/samsaffron/term-md/internal/credentials"
	"github.com/samsaffron/term-md/internal/llm"
	"github.com/samsaffron/term-md/internal/ui"
)

var (
	keyFromStdin bool
	keyClearYes  bool
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage the assistant API key",
	Long: `Store, remove or inspect the API key used by the assistant. Keys are
encrypted with age in the config directory.

Examples:
  term-md key set                       # prompt for the key
  echo "$KEY" | term-md key set --stdin
  term-md key status
  term-md key clear`,
	RunE: runKeyStatus,
}

var keySetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store an API key",
	Args:  cobra.NoArgs,
	RunE:  runKeySet,
}

var keyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored API key",
	Args:  cobra.NoArgs,
	RunE:  runKeyClear,
}

var keyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether an API key is available",
	Args:  cobra.NoArgs,
	RunE:  runKeyStatus,
}

func init() {
	keySetCmd.Flags().BoolVar(&keyFromStdin, "stdin", false, "Read the key from stdin instead of prompting")
	keyClearCmd.Flags().BoolVarP(&keyClearYes, "yes", "y", false, "Do not ask for confirmation")
	keyCmd.AddCommand(keySetCmd)
	keyCmd.AddCommand(keyClearCmd)
	keyCmd.AddCommand(keyStatusCmd)
	rootCmd.AddCommand(keyCmd)
}

// keyContext is the slice of the app the key commands need.
func keyContext(ctx context.Context) (*config.Config, *credentials.Lifecycle, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	client := llm.NewClient(cfg.Provider, cfg.Active().Model, log)
	creds, err := newCredentials(ctx, cfg, client, log)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, creds, func() { _ = log.Sync() }, nil
}

func runKeySet(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	cfg, creds, done, err := keyContext(ctx)
	if err != nil {
		return err
	}
	defer done()

	var key string
	if keyFromStdin {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("failed to read key from stdin: %w", err)
		}
		key = strings.TrimSpace(line)
	} else {
		key, err = ui.PromptAPIKey(llm.ProviderLabel(cfg.Provider), llm.EnvVar(cfg.Provider))
		if err != nil {
			return err
		}
	}

	if err := creds.Set(ctx, key); err != nil {
		return err
	}
	ui.ShowResult(true, "AI features enabled")
	return nil
}

func runKeyClear(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	_, creds, done, err := keyContext(ctx)
	if err != nil {
		return err
	}
	defer done()

	if !keyClearYes {
		ok, err := ui.Confirm("Remove API key?", "AI features will be disabled until a new key is added.")
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
	if err := creds.Clear(ctx); err != nil {
		return err
	}
	ui.ShowResult(true, "API key removed")
	return nil
}

func runKeyStatus(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	cfg, creds, done, err := keyContext(ctx)
	if err != nil {
		return err
	}
	defer done()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "provider: %s (%s)\n", cfg.Provider, cfg.Active().Model)
	switch {
	case !creds.Present():
		fmt.Fprintf(out, "key:      none (run \"term-md key set\" or export %s)\n", llm.EnvVar(cfg.Provider))
	case creds.FromFallback():
		fmt.Fprintf(out, "key:      from config or %s\n", llm.EnvVar(cfg.Provider))
	default:
		dir, _ := config.GetConfigDir()
		fmt.Fprintf(out, "key:      stored (encrypted in %s)\n", dir)
	}
	return nil
}
