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

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <savefile> <path>...",
		Short: "Print the value at a key path",
		Long:  `Print the value at a key path. Path steps are map keys, or array indexes in brackets: bgesav get save.sav stats items [2] name`,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := openSession(cmd, args[0], editor.StrategyFullReencode)
			if err != nil {
				return err
			}
			path, err := keypath.Parse(args[1:]...)
			if err != nil {
				return err
			}
			detail, err := session.Describe(path)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), detail)
			return nil
		},
	}
}
