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
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds the optional settings read from the user's config file
type Config struct {
	// Strategy is the default save strategy: "full-reencode" or
	// "surgical-patch". Flags override it
	Strategy string `toml:"strategy"`
	// Verbose enables debug logging without the -v flag
	Verbose bool `toml:"verbose"`
	// ImageDir is the default output directory for extracted images
	ImageDir string `toml:"image_dir"`
}

// defaultConfigPath returns the conventional config file location, or an
// empty string when the user config directory cannot be determined
func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "bgesav", "config.toml")
}

// loadConfig reads the TOML config file at path, or the default location
// when path is empty. A missing file is not an error; it yields the zero
// config
func loadConfig(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath()
		if path == "" {
			return Config{}, nil
		}
	}
	var config Config
	if _, err := toml.DecodeFile(path, &config); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return config, nil
}
