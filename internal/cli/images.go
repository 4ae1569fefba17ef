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
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/savetools/bgesav/cbor"
	"github.com/savetools/bgesav/editor"
	"github.com/savetools/bgesav/imagescan"
	"github.com/savetools/bgesav/keypath"
)

func newImagesCmd(config func() Config) *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "images <savefile>",
		Short: "Extract embedded JPEG images to files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			session, err := openSession(cmd, args[0], editor.StrategyFullReencode)
			if err != nil {
				return err
			}
			dir := outDir
			if dir == "" {
				dir = config().ImageDir
			}
			if dir == "" {
				dir = "."
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}
			count := 0
			tree := session.Tree()
			err = walkBytesLeaves(tree, tree.Root(), nil, func(path keypath.Path, data []byte) error {
				for _, candidate := range imagescan.Extract(data) {
					if candidate.Err != nil {
						logger.Warnf(
							"%s: stream at offset %d does not decode: %s",
							path, candidate.Offset, candidate.Err,
						)
						continue
					}
					name := filepath.Join(dir, fmt.Sprintf("img_%03d.jpg", count))
					if err := os.WriteFile(name, candidate.Data, 0o644); err != nil {
						return fmt.Errorf("write %s: %w", name, err)
					}
					bounds := candidate.Image.Bounds()
					fmt.Fprintf(
						cmd.OutOrStdout(),
						"%s: %dx%d (%d bytes) from %s\n",
						name, bounds.Dx(), bounds.Dy(), len(candidate.Data), path,
					)
					count++
				}
				return nil
			})
			if err != nil {
				return err
			}
			if count == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no embedded images found")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "O", "", "output directory for extracted images")
	return cmd
}

// walkBytesLeaves visits every byte-string leaf in document order with its
// key path
func walkBytesLeaves(
	tree *cbor.Tree,
	id cbor.NodeID,
	path keypath.Path,
	visit func(path keypath.Path, data []byte) error,
) error {
	node := tree.Node(id)
	switch node.Kind() {
	case cbor.KindBytes:
		return visit(path, node.Bytes())
	case cbor.KindMap:
		for _, pair := range node.Pairs() {
			key := tree.Node(pair.Key)
			// byte-string keys are leaves too
			if key.Kind() == cbor.KindBytes {
				if err := visit(path, key.Bytes()); err != nil {
					return err
				}
			}
			childPath := path
			if key.IsScalar() {
				childPath = path.Append(keypath.MapKey{Value: key.Scalar()})
			}
			if err := walkBytesLeaves(tree, pair.Value, childPath, visit); err != nil {
				return err
			}
		}
	case cbor.KindArray:
		for i, elem := range node.Elems() {
			childPath := path.Append(keypath.ArrayIndex{Index: i})
			if err := walkBytesLeaves(tree, elem, childPath, visit); err != nil {
				return err
			}
		}
	case cbor.KindTag:
		// tag wrappers are transparent for addressing
		for _, elem := range node.Elems() {
			if err := walkBytesLeaves(tree, elem, path, visit); err != nil {
				return err
			}
		}
	}
	return nil
}
