// Package cli defines the gitscribe command tree. Commands stay thin:
// they load configuration, build the service, and print results, with
// all generation logic behind internal/service.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"gitscribe/internal/config"
	"gitscribe/internal/git"
	"gitscribe/internal/llm"
	"gitscribe/internal/llm/providers"
	"gitscribe/internal/logger"
	"gitscribe/internal/service"
)

var (
	flagConfigPath   string
	flagRepoPath     string
	flagProvider     string
	flagModel        string
	flagPreset       string
	flagInstructions string
	flagLogLevel     string
	flagLogFormat    string
)

var rootCmd = &cobra.Command{
	Use:   "gitscribe",
	Short: "Commit messages, changelogs, and release notes from your staged changes",
	Long: `gitscribe turns repository state into commit messages, changelogs, and
release notes. It snapshots the staged changes, scores and trims them to
fit the backend's context window, and asks the configured provider for a
draft you can review, edit, or commit.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the command tree. Interrupts cancel the active context
// so in-flight provider calls stop cleanly.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfigPath, "config", "", "Config file (default $XDG_CONFIG_HOME/gitscribe/config.toml)")
	pf.StringVar(&flagRepoPath, "repo", ".", "Path to the git repository")
	pf.StringVar(&flagProvider, "provider", "", "Generation backend for this run")
	pf.StringVar(&flagModel, "model", "", "Model override for the selected backend")
	pf.StringVar(&flagPreset, "preset", "", "Instruction preset (see gitscribe presets)")
	pf.StringVarP(&flagInstructions, "instructions", "i", "", "Custom generation instructions")
	pf.Bool("gitmoji", false, "Prefix commit titles with a gitmoji")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&flagLogFormat, "log-format", "", "Log format: text, json")

	rootCmd.AddCommand(genCmd)
	rootCmd.AddCommand(changelogCmd)
	rootCmd.AddCommand(releaseNotesCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(presetsCmd)
}

// configPath resolves the active config file location.
func configPath() (string, error) {
	if flagConfigPath != "" {
		return flagConfigPath, nil
	}
	return config.Path()
}

// loadConfig reads the configuration, layers the persistent flags over
// it, validates the result, and sets up logging.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}
	cfg, err := config.ReadFrom(path)
	if err != nil {
		return nil, err
	}
	applyRootFlags(cmd, cfg)

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	logger.Setup(cfg)
	return cfg, nil
}

func applyRootFlags(cmd *cobra.Command, cfg *config.Config) {
	if flagProvider != "" {
		cfg.DefaultProvider = flagProvider
	}
	if flagModel != "" {
		name, pc := cfg.ActiveProvider()
		pc.Model = flagModel
		cfg.Providers[name] = pc
	}
	if flagPreset != "" {
		cfg.InstructionPreset = flagPreset
	}
	if flagInstructions != "" {
		cfg.Instructions = flagInstructions
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	if flagLogFormat != "" {
		cfg.LogFormat = flagLogFormat
	}
	if cmd != nil && cmd.Flags().Changed("gitmoji") {
		on, _ := cmd.Flags().GetBool("gitmoji")
		cfg.UseGitmoji = on
	}
}

// newService opens the repository and wires the provider stack for one
// invocation.
func newService(ctx context.Context, cfg *config.Config) (*service.Service, error) {
	repo, err := git.Open(ctx, flagRepoPath)
	if err != nil {
		return nil, err
	}

	name, _ := cfg.ActiveProvider()
	provider, err := providers.New(name, cfg.ProviderSettings())
	if err != nil {
		return nil, err
	}
	runner := llm.NewRunner(provider, cfg.Retry.Policy())

	return service.New(cfg, repo, runner), nil
}
