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

package main

import (
	"os"
	"strings"

	"github.com/mochisync/mochisync/pkg/cli/infra"
	"github.com/mochisync/mochisync/pkg/cli/log"
	_ "github.com/joho/godotenv/autoload"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	// commands
	"github.com/mochisync/mochisync/pkg/cli/cmd/decks"
	"github.com/mochisync/mochisync/pkg/cli/cmd/root"
	"github.com/mochisync/mochisync/pkg/cli/cmd/sync"
	"github.com/mochisync/mochisync/pkg/cli/cmd/version"
	"github.com/mochisync/mochisync/pkg/cli/cmd/watch"
)

// versionTag is populated during link time
var versionTag = "master"

// parseDBPath extracts the --dbPath flag value from command line arguments
// regardless of where it appears (before or after subcommand).
// Returns empty string if not found.
func parseDBPath(args []string) string {
	for i, arg := range args {
		if strings.HasPrefix(arg, "--dbPath=") {
			return strings.TrimPrefix(arg, "--dbPath=")
		}
		if arg == "--dbPath" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func main() {
	// the database location must be known before cobra parses flags, so
	// --dbPath is picked out of the raw arguments
	dbPath := parseDBPath(os.Args[1:])

	ctx, err := infra.Init(versionTag, dbPath)
	if err != nil {
		panic(errors.Wrap(err, "initializing context"))
	}
	defer ctx.DB.Close()

	root.Register(sync.NewCmd(*ctx))
	root.Register(watch.NewCmd(*ctx))
	root.Register(decks.NewCmd(*ctx))
	root.Register(version.NewCmd(*ctx))

	if err := root.Execute(); err != nil {
		log.Errorf("%s\n", err.Error())
		os.Exit(1)
	}
}
