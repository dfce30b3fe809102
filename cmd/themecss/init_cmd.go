package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default .themecss.yaml config file",
	Long:  `Create a .themecss.yaml configuration file in the current directory with sensible defaults.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		force, _ := cmd.Flags().GetBool("force")
		return writeDefaultConfig(defaultConfigFile, force, cmd.OutOrStdout())
	},
}

func writeDefaultConfig(path string, force bool, out io.Writer) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	if err := os.WriteFile(path, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	fmt.Fprintf(out, "Created %s\n", path)
	return nil
}

const defaultConfig = `# themecss configuration
# Docs: https://github.com/yacobolo/themecss

# Shared settings
verbose: false

# Manifest generation
generate:
  dir: .
  patterns:
    - "./..."
  output-dir: cmd/themes     # package built with -buildmode=plugin
  package: ""                # detected from existing files when empty
  exclude:
    - "**/*_mock.go"
  strict: false
  output-format: issues      # issues | json
  print-lines: true

# Post-build CSS writing
write:
  target-path: bin/themes.so
  project-dir: .
  build-unminified: true
  build-minified: true
`

func init() {
	initCmd.Flags().Bool("force", false, "Overwrite existing config file")
}
