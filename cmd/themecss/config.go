package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/yacobolo/themecss"
)

const (
	defaultConfigFile = ".themecss.yaml"
	envPrefix         = "THEMECSS_"
)

var k = koanf.New(".")

// loadConfig loads configuration with precedence: flags > env > file > defaults.
// It must be called after cobra parses flags (in PreRunE or RunE).
func loadConfig(cmd *cobra.Command) error {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = defaultConfigFile
	}

	if err := loadConfigFromPath(configPath); err != nil {
		return err
	}

	// 3. CLI flags (highest precedence, only flags that were explicitly set)
	return loadFlags(cmd.Flags())
}

// loadFlags merges the explicitly set flags of fs under their own names.
func loadFlags(fs *pflag.FlagSet) error {
	provider := posflag.ProviderWithFlag(fs, ".", k, func(f *pflag.Flag) (string, interface{}) {
		if !f.Changed {
			return "", nil
		}
		return f.Name, posflag.FlagVal(fs, f)
	})
	if err := k.Load(provider, nil); err != nil {
		return fmt.Errorf("loading command flags: %w", err)
	}
	return nil
}

// loadConfigFromPath loads configuration from a file and environment variables.
// This is separated from loadConfig to allow testing without a cobra command.
func loadConfigFromPath(configPath string) error {
	// 1. Config file (lowest precedence among providers)
	if _, err := os.Stat(configPath); err == nil {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return fmt.Errorf("loading config file %s: %w", configPath, err)
		}
	}

	// 2. Environment variables (THEMECSS_* prefix)
	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return fmt.Errorf("loading environment variables: %w", err)
	}

	return nil
}

// envKey maps THEMECSS_GENERATE_OUTPUT__DIR to generate.output-dir: a single
// underscore separates sections, a double one stands for a dash.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	s = strings.ReplaceAll(s, "__", "-")
	return strings.ReplaceAll(s, "_", ".")
}

// buildGenerateConfig constructs the library's Config struct from koanf state.
// Positional args, when given, replace the configured patterns.
func buildGenerateConfig(args []string) themecss.Config {
	config := themecss.Config{
		Dir:         getStringWithFallback("dir", "generate.dir", "."),
		OutputDir:   getStringWithFallback("output-dir", "generate.output-dir", "."),
		PackageName: getStringWithFallback("package", "generate.package", ""),
		Patterns:    args,
		Excludes:    getStringsWithFallback("exclude", "generate.exclude"),
		BuildFlags:  getStringsWithFallback("build-flags", "generate.build-flags"),
		Logger:      logger,
	}
	if len(config.Patterns) == 0 {
		config.Patterns = k.Strings("generate.patterns")
	}
	return config
}

// generateOptions are the reporting settings of the generate command.
type generateOptions struct {
	Watch        bool
	Strict       bool
	Quiet        bool
	OutputFormat string
	PrintLines   bool
	UseColors    bool
}

func buildGenerateOptions() generateOptions {
	return generateOptions{
		Watch:        getBoolWithFallback("watch", "generate.watch", false),
		Strict:       getBoolWithFallback("strict", "generate.strict", false),
		Quiet:        getBoolWithFallback("quiet", "quiet", false),
		OutputFormat: getStringWithFallback("output-format", "generate.output-format", ""),
		PrintLines:   getBoolWithFallback("print-lines", "generate.print-lines", true),
		UseColors:    getBoolWithFallback("color", "color", false),
	}
}

// buildWriteConfig constructs the library's WriteConfig from koanf state.
// Command line values are merged in by the caller.
func buildWriteConfig() themecss.WriteConfig {
	return themecss.WriteConfig{
		TargetPath:      k.String("write.target-path"),
		ProjectDir:      k.String("write.project-dir"),
		BuildUnminified: getBoolWithFallback("write.build-unminified", "write.build-unminified", true),
		BuildMinified:   getBoolWithFallback("write.build-minified", "write.build-minified", true),
		Logger:          logger,
	}
}

// getStringWithFallback checks the flag key first, then the config file key, then returns the default.
func getStringWithFallback(flagKey, configKey, defaultVal string) string {
	if v := k.String(flagKey); v != "" {
		return v
	}
	if v := k.String(configKey); v != "" {
		return v
	}
	return defaultVal
}

// getStringsWithFallback checks the flag key first, then the config file key.
func getStringsWithFallback(flagKey, configKey string) []string {
	if v := k.Strings(flagKey); len(v) > 0 {
		return v
	}
	return k.Strings(configKey)
}

// getBoolWithFallback checks the flag key first, then the config file key, then returns the default.
func getBoolWithFallback(flagKey, configKey string, defaultVal bool) bool {
	if k.Exists(flagKey) {
		return k.Bool(flagKey)
	}
	if k.Exists(configKey) {
		return k.Bool(configKey)
	}
	return defaultVal
}
