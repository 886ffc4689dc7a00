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

package syncer

import (
	"sort"
	"strings"

	"github.com/mochisync/mochisync/pkg/card"
	"github.com/mochisync/mochisync/pkg/mochi"
)

// Op is the reconciliation decision for one card
type Op int

// Reconciliation decisions
const (
	OpNoop Op = iota
	OpCreate
	OpUpdate
)

func (o Op) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpUpdate:
		return "update"
	default:
		return "no-op"
	}
}

// Decide compares a local card against its remote counterpart. remote is
// nil when the card has no remote id or the id is stale. This is a pure
// decision function; the caller performs I/O based on it.
func Decide(local card.Card, remote *mochi.Card, deckID, templateID, systemTag string) Op {
	if remote == nil {
		return OpCreate
	}

	if local.Content != remote.Content {
		return OpUpdate
	}
	if deckID != remote.DeckID {
		return OpUpdate
	}
	if !tagSetEqual(local.TagSet(systemTag), remote.Tags) {
		return OpUpdate
	}
	if templateID != remote.TemplateID {
		return OpUpdate
	}
	if !fieldsEqual(local.Fields, remote.Fields) {
		return OpUpdate
	}

	// every local attachment filename must already exist remotely
	remoteFiles := remote.AttachmentFilenames()
	for filename := range local.AttachmentFilenames() {
		if !remoteFiles[filename] {
			return OpUpdate
		}
	}

	return OpNoop
}

// NeededDeckNames returns the sorted set of deck names the given cards
// require, always including the configured default deck
func NeededDeckNames(cards []card.Card, defaultDeck string) []string {
	seen := map[string]string{}
	if defaultDeck != "" {
		seen[strings.ToLower(defaultDeck)] = defaultDeck
	}
	for _, c := range cards {
		if c.DeckName == "" {
			continue
		}
		// first authored casing wins
		if _, ok := seen[strings.ToLower(c.DeckName)]; !ok {
			seen[strings.ToLower(c.DeckName)] = c.DeckName
		}
	}

	var ret []string
	for _, name := range seen {
		ret = append(ret, name)
	}
	sort.Strings(ret)

	return ret
}

func tagSetEqual(local map[string]bool, remote []string) bool {
	if len(local) != len(remote) {
		return false
	}
	for _, t := range remote {
		if !local[t] {
			return false
		}
	}

	return true
}

// fieldsEqual compares field maps value by value. A field present on one
// side and absent on the other counts as a difference.
func fieldsEqual(a, b map[string]mochi.Field) bool {
	if len(a) != len(b) {
		return false
	}
	for id, f := range a {
		other, ok := b[id]
		if !ok || other.Value != f.Value {
			return false
		}
	}

	return true
}
