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

package watch

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/mochisync/mochisync/pkg/cli/context"
	"github.com/mochisync/mochisync/pkg/cli/log"
	"github.com/mochisync/mochisync/pkg/logseq"
	"github.com/mochisync/mochisync/pkg/syncer"
	"github.com/pkg/errors"
	"github.com/radovskyb/watcher"
	"github.com/robfig/cron"
	"github.com/spf13/cobra"
)

var example = `
  mochisync watch
  mochisync watch --schedule "@every 30m"`

var scheduleFlag string
var debounceFlag time.Duration
var pruneFlag bool
var pullFlag bool
var graphFlag string

// pollInterval is how often the file watcher scans the graph directory
const pollInterval = time.Second

// NewCmd returns a new watch command
func NewCmd(ctx context.MochisyncCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "watch",
		Short:   "Keep syncing: re-run on graph file changes and on a schedule",
		Example: example,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.StringVar(&scheduleFlag, "schedule", "", `cron schedule for periodic re-runs, e.g. "@every 30m"`)
	f.DurationVar(&debounceFlag, "debounce", 2*time.Second, "how long to wait after a file change before syncing")
	f.BoolVar(&pruneFlag, "prune", false, "delete remote cards that no longer have a tagged block")
	f.BoolVar(&pullFlag, "pull", false, "git pull the graph repository before each run")
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

		// runs are serialized; a trigger arriving mid-run is coalesced
		// into the next one
		var mu sync.Mutex
		runOnce := func() {
			mu.Lock()
			defer mu.Unlock()

			if pullFlag || cf.GitPull {
				if err := logseq.Pull(cf.GraphDir); err != nil {
					log.Warnf("pulling graph repository: %s\n", err)
				}
			}

			g, err := logseq.Load(cf.GraphDir)
			if err != nil {
				log.Errorf("loading graph: %s\n", err)
				return
			}

			s := syncer.Syncer{
				Client: ctx.Client,
				Graph:  g,
				DB:     ctx.DB,
				Config: cf,
				Clock:  ctx.Clock,
				Prune:  pruneFlag,
			}

			res, err := s.Run()
			if err != nil {
				log.Errorf("syncing: %s\n", err)
				return
			}
			log.Successf("%s\n", res)
		}

		events := make(chan struct{}, 1)
		trigger := func() {
			select {
			case events <- struct{}{}:
			default:
			}
		}

		if scheduleFlag != "" {
			c := cron.New()
			if err := c.AddFunc(scheduleFlag, trigger); err != nil {
				return errors.Wrap(err, "parsing schedule")
			}
			c.Start()
			defer c.Stop()
		}

		w := watcher.New()
		w.SetMaxEvents(1)
		w.FilterOps(watcher.Create, watcher.Write, watcher.Remove, watcher.Rename, watcher.Move)
		if err := w.AddRecursive(cf.GraphDir); err != nil {
			return errors.Wrap(err, "watching graph directory")
		}
		defer w.Close()

		go func() {
			for {
				select {
				case <-w.Event:
					trigger()
				case err := <-w.Error:
					log.Errorf("watching graph: %s\n", err)
				case <-w.Closed:
					return
				}
			}
		}()
		go func() {
			if err := w.Start(pollInterval); err != nil {
				log.Errorf("starting watcher: %s\n", err)
			}
		}()

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

		log.Infof("watching %s\n", cf.GraphDir)
		runOnce()

		// id write-backs re-trigger the watcher; the follow-up run
		// finds nothing to do
		var pending <-chan time.Time
		for {
			select {
			case <-events:
				pending = time.After(debounceFlag)
			case <-pending:
				pending = nil
				runOnce()
			case <-sig:
				return nil
			}
		}
	}
}
