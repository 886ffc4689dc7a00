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

package sync

import (
	"github.com/mochisync/mochisync/pkg/cli/context"
	"github.com/mochisync/mochisync/pkg/cli/log"
	"github.com/mochisync/mochisync/pkg/logseq"
	"github.com/mochisync/mochisync/pkg/syncer"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var example = `
  mochisync sync
  mochisync sync --dry-run
  mochisync sync --prune --pull`

var dryRunFlag bool
var pruneFlag bool
var pullFlag bool
var graphFlag string

// NewCmd returns a new sync command
func NewCmd(ctx context.MochisyncCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sync",
		Aliases: []string{"s"},
		Short:   "Sync tagged blocks to the remote store",
		Example: example,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.BoolVar(&dryRunFlag, "dry-run", false, "compute and print the plan without changing anything")
	f.BoolVar(&pruneFlag, "prune", false, "delete remote cards that no longer have a tagged block")
	f.BoolVar(&pullFlag, "pull", false, "git pull the graph repository before reading it")
	f.StringVar(&graphFlag, "graph", "", "the graph directory to sync (defaults to value in config)")

	return cmd
}

func newRun(ctx context.MochisyncCtx) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cf := ctx.Config
		if graphFlag != "" {
			cf.GraphDir = graphFlag
		}
		if err := cf.Validate(); err != nil {
			return errors.Wrap(err, "validating config")
		}

		// a failed pull is not fatal; the sync proceeds with the
		// graph as it is on disk
		if pullFlag || cf.GitPull {
			if err := logseq.Pull(cf.GraphDir); err != nil {
				log.Warnf("pulling graph repository: %s\n", err)
			}
		}

		g, err := logseq.Load(cf.GraphDir)
		if err != nil {
			return errors.Wrap(err, "loading graph")
		}

		s := syncer.Syncer{
			Client: ctx.Client,
			Graph:  g,
			DB:     ctx.DB,
			Config: cf,
			Clock:  ctx.Clock,
			DryRun: dryRunFlag,
			Prune:  pruneFlag,
		}

		res, err := s.Run()
		if err != nil {
			return errors.Wrap(err, "syncing")
		}

		if dryRunFlag {
			log.Infof("dry run: %s\n", res)
			return nil
		}

		log.Successf("%s\n", res)

		if res.Failed > 0 {
			return errors.Errorf("%d card(s) failed", res.Failed)
		}

		return nil
	}
}
