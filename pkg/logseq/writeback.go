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

package logseq

import (
	"os"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/mochisync/mochisync/pkg/cli/consts"
	"github.com/pkg/errors"
)

var leadingWhitespace = regexp.MustCompile(`^[ \t]*`)

// WriteBlockProperty writes a single property onto the block, both in the
// in-memory snapshot and in the page file. An existing property of the same
// key is replaced in place; otherwise a property line is inserted right
// after the block's head line.
func (g *Graph) WriteBlockProperty(b *Block, key, value string) error {
	page := b.Page
	propLine := key + ":: " + value

	// replace in place when the block already carries the key
	replaced := false
	for i := b.startLine; i < b.endLine && i < len(page.lines); i++ {
		m := propertyPattern.FindStringSubmatch(strings.TrimSpace(page.lines[i]))
		if m == nil || !strings.EqualFold(m[1], key) {
			continue
		}

		ws := leadingWhitespace.FindString(page.lines[i])
		page.lines[i] = ws + propLine
		replaced = true
		break
	}

	if !replaced {
		headWS := leadingWhitespace.FindString(page.lines[b.startLine])
		page.insertLine(b.startLine+1, headWS+"  "+propLine)
	}

	found := false
	for i := range b.Properties {
		if strings.EqualFold(b.Properties[i].Key, key) {
			b.Properties[i] = Property{Key: key, Value: value}
			found = true
		}
	}
	if !found {
		b.Properties = append(b.Properties, Property{Key: key, Value: value})
	}

	if err := os.WriteFile(page.Path, []byte(strings.Join(page.lines, "\n")), 0644); err != nil {
		return errors.Wrapf(err, "writing page %s", page.Path)
	}

	return nil
}

// insertLine splices a line into the page and adjusts every block span.
// It is the sole owner of span arithmetic: a line inserted at a block's end
// boundary belongs to that block, which is what a property insert right
// under a single-line head needs.
func (p *Page) insertLine(idx int, line string) {
	p.lines = append(p.lines, "")
	copy(p.lines[idx+1:], p.lines[idx:])
	p.lines[idx] = line

	p.WalkBlocks(func(b *Block) {
		if b.startLine >= idx {
			b.startLine++
		}
		if b.endLine >= idx {
			b.endLine++
		}
	})
}

// EnsureUUID returns the block's uuid, assigning and persisting a fresh one
// when the block has none
func (g *Graph) EnsureUUID(b *Block) (string, error) {
	if b.UUID != "" {
		return b.UUID, nil
	}

	id := uuid.NewString()
	if err := g.WriteBlockProperty(b, consts.PropBlockID, id); err != nil {
		return "", errors.Wrap(err, "persisting block uuid")
	}

	b.UUID = id
	g.byUUID[id] = b

	return id, nil
}
