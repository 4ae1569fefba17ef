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
	"github.com/spf13/cobra"

	"github.com/savetools/bgesav/editor"
	"github.com/savetools/bgesav/internal/tui"
)

func newViewCmd(strategy func() (editor.Strategy, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "view <savefile>",
		Short: "Browse and edit the save file interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			saveStrategy, err := strategy()
			if err != nil {
				return err
			}
			session, err := openSession(cmd, args[0], saveStrategy)
			if err != nil {
				return err
			}
			return tui.Run(session)
		},
	}
}
