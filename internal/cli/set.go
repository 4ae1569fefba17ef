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

	"github.com/spf13/cobra"

	"github.com/savetools/bgesav/editor"
	"github.com/savetools/bgesav/keypath"
)

func newSetCmd(strategy func() (editor.Strategy, error)) *cobra.Command {
	var (
		newValue   string
		typeName   string
		outputPath string
	)
	cmd := &cobra.Command{
		Use:   "set <savefile> <path>...",
		Short: "Edit the value at a key path and save the file",
		Long:  `Edit the value at a key path and save the file: bgesav set save.sav stats health --value 80 --type int`,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			saveStrategy, err := strategy()
			if err != nil {
				return err
			}
			valueType, err := editor.ParseValueType(typeName)
			if err != nil {
				return err
			}
			session, err := openSession(cmd, args[0], saveStrategy)
			if err != nil {
				return err
			}
			path, err := keypath.Parse(args[1:]...)
			if err != nil {
				return err
			}
			result, err := session.Edit(path, newValue, valueType)
			if err != nil {
				return err
			}
			if result.Warning != nil {
				logger.Warn(result.Warning.Error())
			}
			target := outputPath
			if target == "" {
				target = args[0]
			}
			report, err := session.Save(target)
			if err != nil {
				return err
			}
			for _, skipped := range report.Skipped {
				logger.Warnf("patch skipped: %s", skipped)
			}
			for _, ambiguous := range report.Ambiguous {
				logger.Warnf(
					"ambiguous patch target %s: %d matches, first occurrence at offset %d used",
					ambiguous.Path,
					ambiguous.Matches,
					ambiguous.Offset,
				)
			}
			fmt.Fprintf(
				cmd.OutOrStdout(),
				"%s: %s -> %v (%s)\n",
				result.Path,
				result.Previous,
				result.Value,
				report.Strategy,
			)
			return nil
		},
	}
	cmd.Flags().StringVar(&newValue, "value", "", "replacement value text")
	cmd.Flags().StringVar(&typeName, "type", "text", "declared value type: int, float, bool, or text")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "write to this path instead of overwriting the input")
	_ = cmd.MarkFlagRequired("value")
	return cmd
}
