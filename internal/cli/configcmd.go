package cli

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"gitscribe/internal/config"
	"gitscribe/internal/llm/providers"
	"gitscribe/internal/prompt"
)

var (
	flagAPIKey     string
	flagTokenLimit int
	flagParams     []string
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update the stored configuration",
	Long: `config prints the stored configuration when run without flags. With
flags it updates the file in place. Provider-scoped flags target the
backend named by --provider, or the default backend otherwise.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	configCmd.Flags().StringVar(&flagAPIKey, "api-key", "", "API key for the targeted backend")
	configCmd.Flags().IntVar(&flagTokenLimit, "token-limit", 0, "Context window size for the targeted backend")
	configCmd.Flags().StringArrayVar(&flagParams, "param", nil, "Extra provider parameter as key=value (repeatable)")
}

// configMutationFlags are the flags that switch the command from show
// mode to update mode.
var configMutationFlags = []string{
	"provider", "api-key", "model", "token-limit", "gitmoji", "instructions", "preset", "param",
}

func runConfig(cmd *cobra.Command, args []string) error {
	path, err := configPath()
	if err != nil {
		return err
	}
	// Read without validating: the command must work on incomplete
	// state, since it is how missing keys get filled in.
	cfg, err := config.ReadFrom(path)
	if err != nil {
		return err
	}

	changed := false
	for _, name := range configMutationFlags {
		if cmd.Flags().Changed(name) {
			changed = true
			break
		}
	}
	if !changed {
		printConfig(cmd, path, cfg)
		return nil
	}

	if err := applyConfigFlags(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.SaveTo(path); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Configuration updated.")
	return nil
}

func applyConfigFlags(cmd *cobra.Command, cfg *config.Config) error {
	if flagProvider != "" {
		name := strings.ToLower(flagProvider)
		if _, ok := providers.MetadataFor(name); !ok {
			return fmt.Errorf("unknown provider %q, expected one of: %v", flagProvider, providers.Available())
		}
		cfg.DefaultProvider = name
	}
	if flagPreset != "" {
		if _, ok := prompt.PresetByKey(flagPreset); !ok {
			return fmt.Errorf("unknown instruction preset %q, run gitscribe presets to list them", flagPreset)
		}
		cfg.InstructionPreset = flagPreset
	}
	if cmd.Flags().Changed("instructions") {
		cfg.Instructions = flagInstructions
	}
	if cmd.Flags().Changed("gitmoji") {
		on, _ := cmd.Flags().GetBool("gitmoji")
		cfg.UseGitmoji = on
	}

	target := strings.ToLower(cfg.DefaultProvider)
	pc := cfg.Providers[target]
	if cmd.Flags().Changed("api-key") {
		pc.APIKey = flagAPIKey
	}
	if flagModel != "" {
		pc.Model = flagModel
	}
	if cmd.Flags().Changed("token-limit") {
		if flagTokenLimit < 0 {
			return fmt.Errorf("token-limit must not be negative, got: %d", flagTokenLimit)
		}
		pc.TokenLimit = flagTokenLimit
	}
	for _, raw := range flagParams {
		key, value, ok := strings.Cut(raw, "=")
		if !ok || key == "" {
			return fmt.Errorf("invalid --param %q, expected key=value", raw)
		}
		if pc.Params == nil {
			pc.Params = make(map[string]string)
		}
		pc.Params[key] = value
	}
	if cfg.Providers == nil {
		cfg.Providers = make(map[string]config.ProviderConfig)
	}
	cfg.Providers[target] = pc
	return nil
}

func printConfig(cmd *cobra.Command, path string, cfg *config.Config) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Configuration file: %s\n\n", path)
	fmt.Fprintf(out, "default_provider = %s\n", cfg.DefaultProvider)
	fmt.Fprintf(out, "use_gitmoji = %t\n", cfg.UseGitmoji)
	fmt.Fprintf(out, "instruction_preset = %s\n", cfg.InstructionPreset)
	if cfg.Instructions != "" {
		fmt.Fprintf(out, "instructions = %s\n", cfg.Instructions)
	}
	if cfg.TokenBudget > 0 {
		fmt.Fprintf(out, "token_budget = %d\n", cfg.TokenBudget)
	}

	for _, name := range slices.Sorted(maps.Keys(cfg.Providers)) {
		pc := cfg.Providers[name]
		fmt.Fprintf(out, "\n[providers.%s]\n", name)
		fmt.Fprintf(out, "model = %s\n", pc.Model)
		fmt.Fprintf(out, "token_limit = %d\n", pc.TokenLimit)
		fmt.Fprintf(out, "api_key = %s\n", redactKey(pc.APIKey))
		if pc.BaseURL != "" {
			fmt.Fprintf(out, "base_url = %s\n", pc.BaseURL)
		}
		for _, key := range slices.Sorted(maps.Keys(pc.Params)) {
			fmt.Fprintf(out, "params.%s = %s\n", key, pc.Params[key])
		}
	}
}

// redactKey keeps secrets out of terminal scrollback.
func redactKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	return "(set)"
}
