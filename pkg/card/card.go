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

// Package card builds the canonical card representation out of a tagged
// block and its surrounding tree. A card is rebuilt from scratch on every
// run; its content is a pure function of the block subtree, the resolved
// properties and the configuration.
package card

import (
	"github.com/mochisync/mochisync/pkg/mochi"
)

// Card is the synchronized unit: one per tagged block
type Card struct {
	// BlockUUID is the stable identity of the source block
	BlockUUID string
	// Content is the final target-markup text
	Content string
	// Properties is the merged cascade result
	Properties map[string]string
	// DeckName is the resolved deck, from the cascade or the default
	DeckName string
	// Tags are the card's own tags, without the system tag
	Tags []string
	// TemplateName is the requested template name, empty when none
	TemplateName string
	// Fields maps field id to value for the resolved template
	Fields map[string]mochi.Field
	// CardID is the previously assigned remote id, empty for new cards
	CardID string
	// Attachments are the media files referenced by the content
	Attachments []Attachment
}

// TagSet returns the card's tags plus the fixed system tag as a set
func (c Card) TagSet(systemTag string) map[string]bool {
	ret := map[string]bool{systemTag: true}
	for _, t := range c.Tags {
		ret[t] = true
	}

	return ret
}

// AttachmentFilenames returns the set of content-addressed filenames the
// card references. Two references to identical bytes collapse to one entry.
func (c Card) AttachmentFilenames() map[string]bool {
	ret := map[string]bool{}
	for _, a := range c.Attachments {
		ret[a.Filename] = true
	}

	return ret
}
