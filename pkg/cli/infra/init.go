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

// Package infra initializes the local environment for a mochisync run:
// directories, the config file, the state database and the remote client.
package infra

import (
	"path/filepath"
	"time"

	"github.com/mochisync/mochisync/pkg/cli/config"
	"github.com/mochisync/mochisync/pkg/cli/consts"
	"github.com/mochisync/mochisync/pkg/cli/context"
	"github.com/mochisync/mochisync/pkg/cli/database"
	"github.com/mochisync/mochisync/pkg/cli/log"
	"github.com/mochisync/mochisync/pkg/cli/utils"
	"github.com/mochisync/mochisync/pkg/clock"
	"github.com/mochisync/mochisync/pkg/dirs"
	"github.com/mochisync/mochisync/pkg/mochi"
	"github.com/mochisync/mochisync/pkg/ratelimit"
	"github.com/pkg/errors"
)

func getDBPath(paths context.Paths, customPath string) string {
	if customPath != "" {
		return customPath
	}

	return filepath.Join(paths.Data, consts.DirName, consts.DBFileName)
}

// initConfigFile populates a new config file if it does not exist yet
func initConfigFile() error {
	path := config.GetPath()
	ok, err := utils.FileExists(path)
	if err != nil {
		return errors.Wrap(err, "checking if config exists")
	}
	if ok {
		return nil
	}

	if err := config.Write(config.Default()); err != nil {
		return errors.Wrap(err, "writing config")
	}

	return nil
}

// Init initializes the mochisync environment and returns a new context
func Init(versionTag, dbPath string) (*context.MochisyncCtx, error) {
	paths := context.Paths{
		Home:   dirs.Home,
		Config: dirs.ConfigHome,
		Data:   dirs.DataHome,
		Cache:  dirs.CacheHome,
	}

	if err := context.InitDirs(paths); err != nil {
		return nil, errors.Wrap(err, "creating the mochisync dirs")
	}
	if err := initConfigFile(); err != nil {
		return nil, errors.Wrap(err, "generating the config file")
	}

	cf, err := config.Read()
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}

	db, err := database.Open(getDBPath(paths, dbPath))
	if err != nil {
		return nil, errors.Wrap(err, "connecting to db")
	}

	cl := clock.New()
	limiter := ratelimit.New(cf.RateLimit.Requests, time.Duration(cf.RateLimit.WindowSeconds)*time.Second, cl)

	ctx := context.MochisyncCtx{
		Paths:   paths,
		Version: versionTag,
		Config:  cf,
		DB:      db,
		Clock:   cl,
		Client:  mochi.NewClient(cf.APIEndpoint, cf.APIKey, limiter),
	}

	log.Debug("context: %+v\n", context.Redact(ctx))

	return &ctx, nil
}
