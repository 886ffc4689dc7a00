/* Copyright 2025 Mochisync Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package context defines the mochisync runtime context
package context

import (
	"path/filepath"

	"github.com/mochisync/mochisync/pkg/cli/config"
	"github.com/mochisync/mochisync/pkg/cli/consts"
	"github.com/mochisync/mochisync/pkg/cli/database"
	"github.com/mochisync/mochisync/pkg/cli/utils"
	"github.com/mochisync/mochisync/pkg/clock"
	"github.com/mochisync/mochisync/pkg/mochi"
	"github.com/pkg/errors"
)

// Paths contain directory definitions
type Paths struct {
	Home   string
	Config string
	Data   string
	Cache  string
}

// MochisyncCtx is a context holding the information of the current runtime
type MochisyncCtx struct {
	Paths   Paths
	Version string
	Config  config.Config
	DB      *database.DB
	Clock   clock.Clock
	Client  *mochi.Client
}

// InitDirs creates the mochisync directories if they don't already exist
func InitDirs(paths Paths) error {
	if paths.Config != "" {
		configDir := filepath.Join(paths.Config, consts.DirName)
		if err := utils.EnsureDir(configDir); err != nil {
			return errors.Wrap(err, "initializing config dir")
		}
	}
	if paths.Data != "" {
		dataDir := filepath.Join(paths.Data, consts.DirName)
		if err := utils.EnsureDir(dataDir); err != nil {
			return errors.Wrap(err, "initializing data dir")
		}
	}

	return nil
}

// Redact replaces private information from the context with a set of
// placeholder values.
func Redact(ctx MochisyncCtx) MochisyncCtx {
	var apiKey string
	if ctx.Config.APIKey != "" {
		apiKey = "1"
	} else {
		apiKey = "0"
	}
	ctx.Config.APIKey = apiKey

	return ctx
}
