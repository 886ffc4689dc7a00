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
	"os"
	"path/filepath"
	"testing"

	"github.com/mochisync/mochisync/pkg/assert"
	"github.com/mochisync/mochisync/pkg/logseq"
	"github.com/mochisync/mochisync/pkg/mochi"
)

func loadGraph(t *testing.T, pages map[string]string) *logseq.Graph {
	t.Helper()

	dir := t.TempDir()
	for name, content := range pages {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	g, err := logseq.Load(dir)
	if err != nil {
		t.Fatal(err)
	}

	return g
}

func newBuilder(g *logseq.Graph) *Builder {
	return &Builder{
		Graph:            g,
		Transformer:      Transformer{Tag: "card"},
		DefaultDeck:      "Default",
		IncludePageTitle: true,
		IncludeAncestors: true,
	}
}

func buildTagged(t *testing.T, b *Builder, uuid string) Card {
	t.Helper()

	blk, ok := b.Graph.BlockByUUID(uuid)
	if !ok {
		t.Fatalf("block %s not found", uuid)
	}

	c, err := b.Build(blk)
	if err != nil {
		t.Fatal(err)
	}

	return c
}

func TestBuild(t *testing.T) {
	g := loadGraph(t, map[string]string{
		"Biology.md": `deck:: Science
tags:: bio

- Topic
  deck:: Zoology
  - What is a cell? #card
    id:: blk-1
    - The basic unit of life
    - Second side
      - detail item
`,
	})
	b := newBuilder(g)

	c := buildTagged(t, b, "blk-1")

	expected := "**Biology**\n\nTopic\n\nWhat is a cell?\n\n---\n\nThe basic unit of life\n\n---\n\nSecond side\n- detail item\n"
	assert.Equal(t, c.Content, expected, "content mismatch")
	assert.Equal(t, c.DeckName, "Zoology", "the nearest deck in the cascade should win")
	assert.DeepEqual(t, c.Tags, []string{"bio"}, "tags should come from the page")
	assert.Equal(t, c.BlockUUID, "blk-1", "block uuid mismatch")
	assert.Equal(t, c.CardID, "", "card id should be empty for a new card")
}

func TestBuild_defaultDeck(t *testing.T) {
	g := loadGraph(t, map[string]string{
		"Plain.md": "- simple question #card\n  id:: blk-2\n  - answer\n",
	})
	b := newBuilder(g)

	c := buildTagged(t, b, "blk-2")

	assert.Equal(t, c.DeckName, "Default", "deck should fall back to the default")
}

func TestBuild_includeFlags(t *testing.T) {
	g := loadGraph(t, map[string]string{
		"Flags.md": `- Topic
  - question #card
    id:: blk-3
    include-page-title:: false
    include-ancestors:: false
    - answer
`,
	})
	b := newBuilder(g)

	c := buildTagged(t, b, "blk-3")

	assert.Equal(t, c.Content, "question\n\n---\n\nanswer\n", "flags on the block should suppress title and ancestors")
}

func TestBuild_cardIDImmuneToCascade(t *testing.T) {
	g := loadGraph(t, map[string]string{
		"Ids.md": `- parent is a card #card
  id:: blk-parent
  mochi-id:: remote-parent
  - child is a card too #card
    id:: blk-child
    - answer
`,
	})
	b := newBuilder(g)

	parent := buildTagged(t, b, "blk-parent")
	assert.Equal(t, parent.CardID, "remote-parent", "the block's own id should be used")

	child := buildTagged(t, b, "blk-child")
	assert.Equal(t, child.CardID, "", "the remote id must not cascade to descendants")

	_, inherited := logseq.LookupMerged(child.Properties, "mochi-id")
	assert.Equal(t, inherited, false, "the merged props must not carry an inherited remote id")
}

func TestBuild_template(t *testing.T) {
	g := loadGraph(t, map[string]string{
		"Vocab.md": `- bonjour #card
  id:: blk-4
  template:: vocab
  field-front:: bonjour
  field-Back:: hello
  field-Note:: greeting
`,
	})
	b := newBuilder(g)
	b.Templates = map[string]mochi.Template{
		"Vocab": {
			ID:   "tmpl-1",
			Name: "Vocab",
			Fields: map[string]mochi.TemplateField{
				"f1": {ID: "f1", Name: "Front"},
				"f2": {ID: "f2", Name: "Back"},
			},
		},
	}

	c := buildTagged(t, b, "blk-4")

	assert.Equal(t, c.TemplateName, "Vocab", "the template name should be resolved case-insensitively")
	assert.DeepEqual(t, c.Fields, map[string]mochi.Field{
		"f1":   {ID: "f1", Value: "bonjour"},
		"f2":   {ID: "f2", Value: "hello"},
		"Note": {ID: "Note", Value: "greeting"},
	}, "declared fields should be keyed by id, undeclared ones verbatim")
}

func TestBuild_unknownTemplate(t *testing.T) {
	g := loadGraph(t, map[string]string{
		"Unknown.md": "- question #card\n  id:: blk-5\n  template:: nope\n  - answer\n",
	})
	b := newBuilder(g)

	c := buildTagged(t, b, "blk-5")

	assert.Equal(t, c.TemplateName, "", "an unknown template should be dropped")
	assert.Equal(t, len(c.Fields), 0, "no fields without a template")
}

func TestBuild_attachments(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "assets"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "assets", "pic.png"), []byte("png-bytes"), 0644); err != nil {
		t.Fatal(err)
	}
	page := "- what is this? ![q](../assets/pic.png) #card\n  id:: blk-6\n  - the same ![a](../assets/pic.png)\n"
	if err := os.WriteFile(filepath.Join(dir, "Pics.md"), []byte(page), 0644); err != nil {
		t.Fatal(err)
	}

	g, err := logseq.Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	b := newBuilder(g)

	c := buildTagged(t, b, "blk-6")

	assert.Equal(t, len(c.Attachments), 1, "identical bytes should collapse to one attachment")
	filename := c.Attachments[0].Filename
	assert.Equal(t, filepath.Ext(filename), ".png", "filename should keep the extension")
	assert.Equal(t, len(c.AttachmentFilenames()), 1, "filename set mismatch")
}
