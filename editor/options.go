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

package editor

import (
	"github.com/charmbracelet/log"
)

// SessionOptionFunc is a type that represents functions that modify the Session config
type SessionOptionFunc func(*Session)

// WithLogger specifies the logger used for warnings such as ambiguous
// patch targets and cast fallbacks. If none is provided, warnings are
// only reported through save and edit results
func WithLogger(logger *log.Logger) SessionOptionFunc {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithStrategy specifies the save strategy. The default is
// StrategyFullReencode
func WithStrategy(strategy Strategy) SessionOptionFunc {
	return func(s *Session) {
		s.strategy = strategy
	}
}
