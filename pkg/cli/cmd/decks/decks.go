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

package decks

import (
	"github.com/mochisync/mochisync/pkg/cli/context"
	"github.com/mochisync/mochisync/pkg/cli/log"
	"github.com/mochisync/mochisync/pkg/mochi"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var example = `
  mochisync decks`

// NewCmd returns a new decks command
func NewCmd(ctx context.MochisyncCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "decks",
		Short:   "List the decks in the remote store",
		Example: example,
		RunE:    newRun(ctx),
	}

	return cmd
}

func newRun(ctx context.MochisyncCtx) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if ctx.Config.APIKey == "" {
			return errors.New("api key is not configured")
		}

		decks, err := ctx.Client.ListDecks()
		if err != nil {
			return errors.Wrap(err, "listing decks")
		}

		if len(decks) == 0 {
			log.Info("no decks found\n")
			return nil
		}

		byID := map[string]mochi.Deck{}
		for _, d := range decks {
			byID[d.ID] = d
		}

		for _, d := range decks {
			log.Plainf("%s  %s\n", d.ID, fullName(d, byID))
		}

		return nil
	}
}

// fullName renders the deck name with its ancestor path, e.g. Parent/Child
func fullName(d mochi.Deck, byID map[string]mochi.Deck) string {
	name := d.Name
	seen := map[string]bool{d.ID: true}

	for d.ParentID != "" {
		parent, ok := byID[d.ParentID]
		if !ok || seen[parent.ID] {
			break
		}
		seen[parent.ID] = true
		name = parent.Name + "/" + name
		d = parent
	}

	return name
}
