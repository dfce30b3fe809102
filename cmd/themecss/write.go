package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yacobolo/themecss"
)

var writeCmd = &cobra.Command{
	Use:   "write --targetPath <plugin.so> --projectDir <dir> [--buildUnminified <bool>] [--buildMinified <bool>]",
	Short: "Write theme CSS files from a built theme plugin",
	Long: `Load the plugin built from the package holding themecss.gen.go, read its
manifest and write one stylesheet per theme type. Output paths are resolved
against the project directory.

Arguments are read leniently so the command survives being invoked from build
scripts with awkward quoting: option names are case-insensitive, values may
follow the option or be joined with '=', boolean values accept true/false/1/0
and anything unparsable falls back to the default (true). Path values are cut
at the first stray double quote.`,
	Example: `  themecss write --targetPath bin/themes.so --projectDir .
  themecss write --targetPath=bin/themes.so --projectDir=. --buildMinified 0`,
	// Flags are parsed by parseWriteArgs.
	DisableFlagParsing: true,
	RunE:               runWrite,
}

// Options of the write command, lower-cased.
const (
	argTargetPath      = "--targetpath"
	argProjectDir      = "--projectdir"
	argBuildUnminified = "--buildunminified"
	argBuildMinified   = "--buildminified"
	argConfig          = "--config"
)

var writeSwitches = map[string]string{
	"-h":        "help",
	"--help":    "help",
	"-v":        "verbose",
	"--verbose": "verbose",
	"--quiet":   "quiet",
}

// writeArgs is the lenient parse of the write command line.
type writeArgs struct {
	values   map[string]string
	switches map[string]bool
}

// parseWriteArgs pairs every option with the argument that follows it.
// Arguments that are not options, options without a value, and values that
// look like options are skipped.
func parseWriteArgs(args []string) writeArgs {
	parsed := writeArgs{values: make(map[string]string), switches: make(map[string]bool)}

	for i := 0; i < len(args); i++ {
		arg := strings.TrimSpace(args[i])
		if arg == "" || arg[0] != '-' {
			continue
		}
		if name, ok := writeSwitches[strings.ToLower(arg)]; ok {
			parsed.switches[name] = true
			continue
		}
		if key, value, ok := strings.Cut(arg, "="); ok {
			if strings.TrimSpace(value) != "" {
				parsed.values[strings.ToLower(key)] = value
			}
			continue
		}

		if i+1 >= len(args) {
			break
		}
		value := args[i+1]
		if strings.TrimSpace(value) == "" || value[0] == '-' {
			continue
		}
		parsed.values[strings.ToLower(arg)] = value
		i++
	}
	return parsed
}

// parseFlagBool reads a boolean option value, returning defaultVal for
// anything but true/false/1/0.
func parseFlagBool(value string, defaultVal bool) bool {
	switch v := strings.TrimSpace(value); {
	case strings.EqualFold(v, "true") || v == "1":
		return true
	case strings.EqualFold(v, "false") || v == "0":
		return false
	}
	return defaultVal
}

// sanitizePathArg strips what shell quoting mistakes leave around a path:
// everything from the first double quote on, and trailing quotes or
// backslashes.
func sanitizePathArg(value string) string {
	value = strings.TrimSpace(value)
	if i := strings.IndexByte(value, '"'); i >= 0 {
		value = value[:i]
	}
	return strings.Trim(strings.TrimSpace(value), "\"\\ ")
}

func runWrite(cmd *cobra.Command, args []string) error {
	parsed := parseWriteArgs(args)
	if parsed.switches["help"] {
		return cmd.Help()
	}
	if parsed.switches["verbose"] || parsed.switches["quiet"] {
		l, err := newLogger(parsed.switches["verbose"], parsed.switches["quiet"])
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
	}

	configPath := parsed.values[argConfig]
	if configPath == "" {
		configPath = defaultConfigFile
	}
	if err := loadConfigFromPath(configPath); err != nil {
		return err
	}

	config, err := writeConfigFromArgs(parsed)
	if err != nil {
		return err
	}

	logger.Debug("write",
		zap.String("target", config.TargetPath),
		zap.String("project", config.ProjectDir),
		zap.Bool("unminified", config.BuildUnminified),
		zap.Bool("minified", config.BuildMinified))

	if _, err := themecss.Write(cmd.Context(), config); err != nil {
		return fmt.Errorf("write failed: %w", err)
	}
	return nil
}

// writeConfigFromArgs layers the command line over the configured defaults.
func writeConfigFromArgs(parsed writeArgs) (themecss.WriteConfig, error) {
	config := buildWriteConfig()

	if v, ok := parsed.values[argTargetPath]; ok {
		config.TargetPath = v
	}
	if v, ok := parsed.values[argProjectDir]; ok {
		config.ProjectDir = v
	}
	_, haveUnminified := parsed.values[argBuildUnminified]
	_, haveMinified := parsed.values[argBuildMinified]
	config.BuildUnminified = parseFlagBool(parsed.values[argBuildUnminified], config.BuildUnminified)
	config.BuildMinified = parseFlagBool(parsed.values[argBuildMinified], config.BuildMinified)

	// Build scripts with broken quoting can swallow the trailing options.
	if (!haveUnminified && !k.Exists("write.build-unminified")) ||
		(!haveMinified && !k.Exists("write.build-minified")) {
		logger.Warn("build flag missing from the command line, some arguments may have been lost to shell quoting",
			zap.Bool("buildUnminified", config.BuildUnminified),
			zap.Bool("buildMinified", config.BuildMinified))
	}

	config.TargetPath = sanitizePathArg(config.TargetPath)
	config.ProjectDir = sanitizePathArg(config.ProjectDir)

	var errs []error
	if config.TargetPath == "" {
		errs = append(errs, errors.New("missing required --targetPath"))
	}
	if config.ProjectDir == "" {
		errs = append(errs, errors.New("missing required --projectDir"))
	}
	return config, errors.Join(errs...)
}
