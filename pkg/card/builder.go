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

package card

import (
	"strconv"
	"strings"

	"github.com/mochisync/mochisync/pkg/cli/consts"
	"github.com/mochisync/mochisync/pkg/cli/log"
	"github.com/mochisync/mochisync/pkg/logseq"
	"github.com/mochisync/mochisync/pkg/mochi"
	"github.com/pkg/errors"
)

// sideDelimiter separates the sides of a multi-sided card
const sideDelimiter = "---"

// Builder produces one Card per tagged block
type Builder struct {
	Graph *logseq.Graph
	// Templates is the remote template registry keyed by template name
	Templates map[string]mochi.Template

	Transformer Transformer
	DefaultDeck string
	// IncludePageTitle and IncludeAncestors are the global defaults,
	// overridable per card through the merged property set
	IncludePageTitle bool
	IncludeAncestors bool
}

// Build constructs the card for the given tagged block. The block must
// already carry a uuid.
func (b *Builder) Build(blk *logseq.Block) (Card, error) {
	if blk == nil || blk.Page == nil {
		return Card{}, errors.New("block has no page")
	}
	page := blk.Page

	// property cascade: page, then ancestors root to nearest, then the
	// block itself
	lists := [][]logseq.Property{page.Properties}
	for _, anc := range blk.Ancestors() {
		lists = append(lists, anc.Properties)
	}
	lists = append(lists, blk.Properties)
	merged := logseq.MergeProperties(lists...)

	// the remote id property is never authored by a human; only the
	// block's own value survives, whatever the ancestors say
	scrubMerged(merged, consts.PropCardID)
	cardID := ""
	if v, ok := logseq.Prop(blk.Properties, consts.PropCardID); ok {
		cardID = v
		merged[consts.PropCardID] = v
	}

	includeTitle := boolProp(merged, consts.PropIncludePageTitle, b.IncludePageTitle)
	includeAncestors := boolProp(merged, consts.PropIncludeAncestors, b.IncludeAncestors)

	resolver := Resolver{Source: func(ref string) ([]byte, string, error) {
		return b.Graph.ReadAsset(page, ref)
	}}

	render := func(text string) (string, []Attachment) {
		s := b.Transformer.Transform(text)
		s, atts, errs := resolver.Resolve(s)
		for _, err := range errs {
			log.Warnf("page %s: %s\n", page.Title, err)
		}

		return strings.TrimRight(s, "\n"), atts
	}

	var chunks []string
	var attachments []Attachment
	appendChunk := func(text string) {
		s, atts := render(text)
		attachments = append(attachments, atts...)
		if strings.TrimSpace(s) != "" {
			chunks = append(chunks, s)
		}
	}

	if includeTitle && page.Title != "" {
		chunks = append(chunks, "**"+page.Title+"**")
	}
	if includeAncestors {
		for _, anc := range blk.Ancestors() {
			if strings.TrimSpace(anc.Content) != "" {
				appendChunk(anc.Content)
			}
		}
	}

	appendChunk(blk.Content)

	// descendants always become the remaining sides, regardless of the
	// ancestor flag
	for _, child := range blk.Children {
		side, atts := b.renderSide(child, render)
		attachments = append(attachments, atts...)
		chunks = append(chunks, sideDelimiter, side)
	}

	content := strings.Join(chunks, "\n\n") + "\n"

	ret := Card{
		BlockUUID:   blk.UUID,
		Content:     content,
		Properties:  merged,
		CardID:      cardID,
		Attachments: dedupAttachments(attachments),
	}

	if deck, ok := logseq.LookupMerged(merged, consts.PropDeck); ok && deck != "" {
		ret.DeckName = deck
	} else {
		ret.DeckName = b.DefaultDeck
	}

	if tags, ok := logseq.LookupMerged(merged, consts.PropTags); ok {
		ret.Tags = splitTags(tags)
	}

	b.applyTemplate(&ret, merged)

	return ret, nil
}

// renderSide renders one direct child of the tagged block as a card side.
// The child's own descendants become nested list items inside the side.
func (b *Builder) renderSide(blk *logseq.Block, render func(string) (string, []Attachment)) (string, []Attachment) {
	var attachments []Attachment

	side, atts := render(blk.Content)
	attachments = append(attachments, atts...)

	var lines []string
	var nest func(n *logseq.Block, depth int)
	nest = func(n *logseq.Block, depth int) {
		s, atts := render(n.Content)
		attachments = append(attachments, atts...)

		indent := strings.Repeat("  ", depth)
		for i, line := range strings.Split(s, "\n") {
			if i == 0 {
				lines = append(lines, indent+"- "+line)
			} else {
				lines = append(lines, indent+"  "+line)
			}
		}

		for _, c := range n.Children {
			nest(c, depth+1)
		}
	}
	for _, c := range blk.Children {
		nest(c, 0)
	}

	if len(lines) > 0 {
		side = strings.TrimRight(side+"\n"+strings.Join(lines, "\n"), "\n")
	}

	return side, attachments
}

// applyTemplate resolves the template reference and the field-* properties.
// A template name that cannot be found is logged and the card is built
// without template data.
func (b *Builder) applyTemplate(c *Card, merged map[string]string) {
	name, ok := logseq.LookupMerged(merged, consts.PropTemplate)
	if !ok || name == "" {
		return
	}

	var tmpl mochi.Template
	found := false
	for tmplName, t := range b.Templates {
		if strings.EqualFold(tmplName, name) {
			tmpl = t
			found = true
			break
		}
	}
	if !found {
		log.Warnf("template %q not found; syncing card %s without template data\n", name, c.BlockUUID)
		return
	}

	c.TemplateName = tmpl.Name
	c.Fields = map[string]mochi.Field{}

	for key, value := range merged {
		if len(key) <= len(consts.PropFieldPrefix) || !strings.EqualFold(key[:len(consts.PropFieldPrefix)], consts.PropFieldPrefix) {
			continue
		}

		fieldName := key[len(consts.PropFieldPrefix):]
		if f, ok := tmpl.FieldByName(fieldName); ok {
			// normalize to the template's canonical field
			c.Fields[f.ID] = mochi.Field{ID: f.ID, Value: value}
		} else {
			c.Fields[fieldName] = mochi.Field{ID: fieldName, Value: value}
		}
	}
}

// scrubMerged removes every case variant of the key from the merged map
func scrubMerged(merged map[string]string, key string) {
	for k := range merged {
		if strings.EqualFold(k, key) {
			delete(merged, k)
		}
	}
}

// boolProp reads a boolean override from the merged property set, falling
// back to the given default when absent or malformed
func boolProp(merged map[string]string, key string, fallback bool) bool {
	v, ok := logseq.LookupMerged(merged, key)
	if !ok {
		return fallback
	}

	parsed, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}

	return parsed
}

func splitTags(s string) []string {
	var ret []string
	for _, t := range strings.Split(s, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			ret = append(ret, t)
		}
	}

	return ret
}

// dedupAttachments collapses attachments by filename equality. The filename
// is hash-derived, so identical bytes from different references collapse.
func dedupAttachments(atts []Attachment) []Attachment {
	if len(atts) == 0 {
		return nil
	}

	seen := map[string]bool{}
	var ret []Attachment
	for _, a := range atts {
		if seen[a.Filename] {
			continue
		}
		seen[a.Filename] = true
		ret = append(ret, a)
	}

	return ret
}
