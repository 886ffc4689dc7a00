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
	"testing"

	"github.com/mochisync/mochisync/pkg/assert"
	"github.com/mochisync/mochisync/pkg/card"
	"github.com/mochisync/mochisync/pkg/mochi"
)

func baseLocal() card.Card {
	return card.Card{
		BlockUUID: "blk-1",
		CardID:    "c1",
		Content:   "question\n\n---\n\nanswer\n",
		Tags:      []string{"bio"},
		Attachments: []card.Attachment{
			{Filename: "aaaa.png"},
		},
	}
}

func baseRemote() *mochi.Card {
	return &mochi.Card{
		ID:      "c1",
		Content: "question\n\n---\n\nanswer\n",
		DeckID:  "d1",
		Tags:    []string{"bio", "logseq"},
		Attachments: []mochi.Attachment{
			{FileName: "aaaa.png"},
		},
	}
}

func TestDecide(t *testing.T) {
	testCases := []struct {
		name     string
		local    func(c *card.Card)
		remote   func(c *mochi.Card) *mochi.Card
		deckID   string
		template string
		expected Op
	}{
		{
			name:     "everything equal",
			expected: OpNoop,
		},
		{
			name:     "no remote",
			remote:   func(c *mochi.Card) *mochi.Card { return nil },
			expected: OpCreate,
		},
		{
			name:     "content differs",
			local:    func(c *card.Card) { c.Content = "changed\n" },
			expected: OpUpdate,
		},
		{
			name:     "deck moved",
			deckID:   "d2",
			expected: OpUpdate,
		},
		{
			name:     "tag added locally",
			local:    func(c *card.Card) { c.Tags = []string{"bio", "extra"} },
			expected: OpUpdate,
		},
		{
			name:     "tag removed locally",
			local:    func(c *card.Card) { c.Tags = nil },
			expected: OpUpdate,
		},
		{
			name:     "template differs",
			template: "tmpl-1",
			expected: OpUpdate,
		},
		{
			name: "field value differs",
			local: func(c *card.Card) {
				c.Fields = map[string]mochi.Field{"f1": {ID: "f1", Value: "new"}}
			},
			remote: func(c *mochi.Card) *mochi.Card {
				c.Fields = map[string]mochi.Field{"f1": {ID: "f1", Value: "old"}}
				return c
			},
			expected: OpUpdate,
		},
		{
			name: "field missing remotely",
			local: func(c *card.Card) {
				c.Fields = map[string]mochi.Field{"f1": {ID: "f1", Value: "v"}}
			},
			expected: OpUpdate,
		},
		{
			name: "attachment missing remotely",
			remote: func(c *mochi.Card) *mochi.Card {
				c.Attachments = nil
				return c
			},
			expected: OpUpdate,
		},
		{
			name: "extra remote attachment is fine",
			remote: func(c *mochi.Card) *mochi.Card {
				c.Attachments = append(c.Attachments, mochi.Attachment{FileName: "bbbb.png"})
				return c
			},
			expected: OpNoop,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			local := baseLocal()
			if tc.local != nil {
				tc.local(&local)
			}

			remote := baseRemote()
			if tc.remote != nil {
				remote = tc.remote(remote)
			}

			deckID := tc.deckID
			if deckID == "" {
				deckID = "d1"
			}

			got := Decide(local, remote, deckID, tc.template, "logseq")
			assert.Equal(t, got, tc.expected, "decision mismatch")
		})
	}
}

func TestNeededDeckNames(t *testing.T) {
	cards := []card.Card{
		{DeckName: "Science"},
		{DeckName: "science"},
		{DeckName: "Languages"},
		{DeckName: ""},
	}

	got := NeededDeckNames(cards, "Inbox")
	assert.DeepEqual(t, got, []string{"Inbox", "Languages", "Science"}, "needed decks mismatch")
}
