// Package config provides CLI commands for managing council configuration.
package config

import (
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	appconfig "github.com/Iron-Ham/council/internal/config"
	"github.com/Iron-Ham/council/internal/logging"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify council configuration",
	Long: `View or modify council configuration.

Use 'config show' to display the effective configuration.
Use subcommands to modify settings or create a config file.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the user's config file.

Keys use dot notation, e.g.:
  council config set orchestrator.followup_turns 3
  council config set provider.default anthropic:claude-3-5-haiku-latest
  council config set retrieval.enabled false

Run 'council config keys' to list every key.`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List the settable configuration keys",
	RunE:  runConfigKeys,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at ~/.config/council/config.yaml with all available options.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configKeysCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}

// Register adds all config-related commands to the given parent command.
func Register(parent *cobra.Command) {
	parent.AddCommand(configCmd)
}

// keyKind is how a value given to 'config set' is parsed.
type keyKind string

const (
	kindString   keyKind = "string"
	kindInt      keyKind = "int"
	kindBool     keyKind = "bool"
	kindLevel    keyKind = "level"
	kindSummary  keyKind = "summary"
	kindBinding  keyKind = "binding"
	kindNonEmpty keyKind = "non_empty"
)

// validKeys lists the keys 'config set' accepts.
var validKeys = map[string]keyKind{
	"orchestrator.followup_turns": kindInt,
	"orchestrator.select_limit":   kindInt,
	"orchestrator.summary_style":  kindSummary,
	"orchestrator.context_window": kindInt,

	"provider.default":           kindBinding,
	"provider.timeout_seconds":   kindInt,
	"provider.failure_threshold": kindInt,
	"provider.cooldown_seconds":  kindInt,
	"provider.openai.api_key":    kindString,
	"provider.openai.base_url":   kindString,
	"provider.openai.model":      kindNonEmpty,
	"provider.anthropic.api_key": kindString,
	"provider.anthropic.model":   kindNonEmpty,
	"provider.ollama.base_url":   kindNonEmpty,
	"provider.ollama.model":      kindNonEmpty,

	"roles.file":  kindString,
	"roles.watch": kindBool,

	"retrieval.enabled":         kindBool,
	"retrieval.max_chars":       kindInt,
	"retrieval.max_urls":        kindInt,
	"retrieval.search_results":  kindInt,
	"retrieval.user_agent":      kindNonEmpty,
	"retrieval.timeout_seconds": kindInt,
	"retrieval.searxng_url":     kindString,
	"retrieval.brave_api_key":   kindString,
	"retrieval.duckduckgo":      kindBool,

	"server.addr": kindNonEmpty,

	"transcript.journal_dir": kindString,

	"logging.enabled":     kindBool,
	"logging.level":       kindLevel,
	"logging.dir":         kindString,
	"logging.max_size_mb": kindInt,
	"logging.max_backups": kindInt,
	"logging.compress":    kindBool,
}

// parseValue validates value for key and returns it typed for viper.
func parseValue(key, value string) (any, error) {
	kind, ok := validKeys[key]
	if !ok {
		return nil, fmt.Errorf("unknown configuration key: %s\nRun 'council config keys' to see valid keys", key)
	}

	switch kind {
	case kindBool:
		if value != "true" && value != "false" {
			return nil, fmt.Errorf("invalid value for %s: expected true or false", key)
		}
		return value == "true", nil
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected integer", key)
		}
		if n < 0 {
			return nil, fmt.Errorf("invalid value for %s: must be non-negative", key)
		}
		return n, nil
	case kindLevel:
		upper := strings.ToUpper(value)
		if !slices.Contains(logging.ValidLevels(), upper) {
			return nil, fmt.Errorf("invalid value for %s: %s\nValid options: %s",
				key, value, strings.Join(logging.ValidLevels(), ", "))
		}
		return strings.ToLower(upper), nil
	case kindSummary:
		if !slices.Contains(appconfig.ValidSummaryStyles(), value) {
			return nil, fmt.Errorf("invalid value for %s: %s\nValid options: %s",
				key, value, strings.Join(appconfig.ValidSummaryStyles(), ", "))
		}
		return value, nil
	case kindBinding:
		backend, _, _ := strings.Cut(value, ":")
		if !slices.Contains(appconfig.ValidBackends(), backend) {
			return nil, fmt.Errorf("invalid value for %s: expected backend[:model] with backend one of %s",
				key, strings.Join(appconfig.ValidBackends(), ", "))
		}
		return value, nil
	case kindNonEmpty:
		if strings.TrimSpace(value) == "" {
			return nil, fmt.Errorf("invalid value for %s: must not be empty", key)
		}
		return value, nil
	default:
		return value, nil
	}
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg := appconfig.Get()
	out := cmd.OutOrStdout()

	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "# Config file: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintln(out, "# Config file: (none - using defaults)")
	}
	return writeYAML(out, redacted(cfg))
}

// redacted returns a copy of cfg with secrets masked.
func redacted(cfg *appconfig.Config) *appconfig.Config {
	c := *cfg
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return "********"
	}
	c.Provider.OpenAI.APIKey = mask(c.Provider.OpenAI.APIKey)
	c.Provider.Anthropic.APIKey = mask(c.Provider.Anthropic.APIKey)
	c.Retrieval.BraveAPIKey = mask(c.Retrieval.BraveAPIKey)
	return &c
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	return enc.Close()
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	typedValue, err := parseValue(key, args[1])
	if err != nil {
		return err
	}

	// Ensure config directory exists
	if err := os.MkdirAll(appconfig.ConfigDir(), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	viper.Set(key, typedValue)

	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		configFile = appconfig.ConfigFile()
	}
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	cmd.Printf("Set %s = %v\n", key, typedValue)
	cmd.Printf("Config saved to %s\n", configFile)
	return nil
}

func runConfigKeys(cmd *cobra.Command, args []string) error {
	keys := make([]string, 0, len(validKeys))
	for k := range validKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		cmd.Printf("%-30s %s\n", k, validKeys[k])
	}
	return nil
}

const configHeader = `# council configuration
# Environment variables override these values: COUNCIL_<SECTION>_<KEY>,
# e.g. COUNCIL_PROVIDER_DEFAULT=offline or COUNCIL_LOGGING_ENABLED=true.
# API keys may also come from OPENAI_API_KEY and ANTHROPIC_API_KEY.

`

func runConfigInit(cmd *cobra.Command, args []string) error {
	configFile := appconfig.ConfigFile()

	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s\nUse 'council config set' to modify values", configFile)
	}
	if err := os.MkdirAll(appconfig.ConfigDir(), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(configFile, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	if _, err := io.WriteString(f, configHeader); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := writeYAML(f, appconfig.Default()); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	cmd.Printf("Created config file at %s\n", configFile)
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	if used := viper.ConfigFileUsed(); used != "" {
		cmd.Println(used)
		return nil
	}
	cmd.Println(appconfig.ConfigFile())
	return nil
}
