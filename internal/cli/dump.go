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
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/savetools/bgesav/editor"
	"github.com/savetools/bgesav/savefile"
)

func newDumpCmd() *cobra.Command {
	var (
		showHeader bool
		showHex    bool
	)
	cmd := &cobra.Command{
		Use:   "dump <savefile>",
		Short: "Print the decoded value tree of a save file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if showHex {
				raw, err := os.ReadFile(args[0])
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), savefile.HexDump(raw))
				return nil
			}
			session, err := openSession(cmd, args[0], editor.StrategyFullReencode)
			if err != nil {
				return err
			}
			if showHeader {
				for _, field := range session.Container().Describe() {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", field.Name, field.Value)
				}
				return nil
			}
			root, err := session.DisplayTree()
			if err != nil {
				return err
			}
			writeDisplayNode(cmd.OutOrStdout(), root, 0)
			return nil
		},
	}
	cmd.Flags().BoolVar(&showHeader, "header", false, "print the container header fields instead of the tree")
	cmd.Flags().BoolVar(&showHex, "hex", false, "print a hex dump of the raw file instead of the tree")
	return cmd
}

const maxDumpValueLen = 80

func writeDisplayNode(w io.Writer, node *editor.DisplayNode, depth int) {
	value := node.Value
	if len(value) > maxDumpValueLen {
		value = value[:maxDumpValueLen] + "..."
	}
	fmt.Fprintf(w, "%s%s: %s\n", strings.Repeat("  ", depth), node.Label, value)
	for _, child := range node.Children {
		writeDisplayNode(w, child, depth+1)
	}
}
