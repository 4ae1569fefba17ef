// Copyright 2025 The bgesav authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cli

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/savetools/bgesav/editor"
)

var (
	version string // semantic version (e.g., "v1.2.3")
	commit  string // git commit SHA
	date    string // build timestamp
)

// SetVersion sets the version information displayed by --version. This is
// typically called by the main package with values injected via ldflags
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the bgesav CLI and returns an error if any command fails.
//
// The root command carries the persistent flags shared by all
// subcommands: --verbose (-v) for debug logging, --config for an explicit
// config file, and --strategy for the save strategy. The logger is
// attached to the context and accessible to all commands via
// loggerFromContext
func Execute(ctx context.Context) error {
	var (
		verbose      bool
		configPath   string
		strategyName string
		config       Config
	)

	root := &cobra.Command{
		Use:          "bgesav",
		Short:        "bgesav edits BGE 20th Anniversary save files",
		Long:         `bgesav splits the save-file container, decodes the embedded CBOR document, and lets you inspect and edit individual values, extract embedded JPEG images, and write the file back with a corrected size header.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			config, err = loadConfig(configPath)
			if err != nil {
				return err
			}
			level := charmlog.InfoLevel
			if verbose || config.Verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
			return nil
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("bgesav %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file path")
	root.PersistentFlags().StringVar(&strategyName, "strategy", "", "save strategy: full-reencode or surgical-patch")

	strategy := func() (editor.Strategy, error) {
		name := strategyName
		if name == "" {
			name = config.Strategy
		}
		if name == "" {
			return editor.StrategyFullReencode, nil
		}
		return editor.ParseStrategy(name)
	}

	root.AddCommand(newDumpCmd())
	root.AddCommand(newGetCmd())
	root.AddCommand(newSetCmd(strategy))
	root.AddCommand(newImagesCmd(func() Config { return config }))
	root.AddCommand(newViewCmd(strategy))

	return root.ExecuteContext(ctx)
}

// openSession opens a save file into a fresh session with the command's
// logger and strategy
func openSession(
	cmd *cobra.Command,
	path string,
	strategy editor.Strategy,
) (*editor.Session, error) {
	session := editor.NewSession(
		editor.WithLogger(loggerFromContext(cmd.Context())),
		editor.WithStrategy(strategy),
	)
	if err := session.Open(path); err != nil {
		return nil, err
	}
	return session, nil
}
