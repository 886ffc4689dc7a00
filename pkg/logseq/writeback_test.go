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
	"strings"
	"testing"

	"github.com/mochisync/mochisync/pkg/assert"
)

func loadSinglePage(t *testing.T, content string) (*Graph, *Page) {
	t.Helper()

	dir := t.TempDir()
	writePage(t, dir, "page.md", content)

	g, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(g.Pages))
	}

	return g, g.Pages[0]
}

func readPageFile(t *testing.T, page *Page) string {
	t.Helper()

	b, err := os.ReadFile(page.Path)
	if err != nil {
		t.Fatal(err)
	}

	return string(b)
}

func TestWriteBlockProperty_insert(t *testing.T) {
	g, page := loadSinglePage(t, "- parent\n  - child block\n")
	child := page.Blocks[0].Children[0]

	if err := g.WriteBlockProperty(child, "mochi-id", "abc123"); err != nil {
		t.Fatal(err)
	}

	got := readPageFile(t, page)
	assert.Equal(t, got, "- parent\n  - child block\n    mochi-id:: abc123\n", "file content mismatch")

	v, ok := Prop(child.Properties, "mochi-id")
	assert.Equal(t, ok, true, "in-memory property should be set")
	assert.Equal(t, v, "abc123", "in-memory property value mismatch")
}

func TestWriteBlockProperty_replace(t *testing.T) {
	g, page := loadSinglePage(t, "- block\n  mochi-id:: old\n")
	blk := page.Blocks[0]

	if err := g.WriteBlockProperty(blk, "mochi-id", "new"); err != nil {
		t.Fatal(err)
	}

	got := readPageFile(t, page)
	assert.Equal(t, got, "- block\n  mochi-id:: new\n", "existing property should be replaced in place")
	assert.Equal(t, strings.Count(got, "mochi-id"), 1, "property should not be duplicated")
}

func TestWriteBlockProperty_shiftsSpans(t *testing.T) {
	g, page := loadSinglePage(t, "- parent\n  - child block\n")
	parent := page.Blocks[0]
	child := parent.Children[0]

	// inserting on the parent shifts the child's line span; a subsequent
	// write on the child must land inside the child
	if err := g.WriteBlockProperty(parent, "mochi-id", "p-id"); err != nil {
		t.Fatal(err)
	}
	if err := g.WriteBlockProperty(child, "mochi-id", "c-id"); err != nil {
		t.Fatal(err)
	}

	got := readPageFile(t, page)
	assert.Equal(t, got, "- parent\n  mochi-id:: p-id\n  - child block\n    mochi-id:: c-id\n", "file content mismatch")
}

func TestWriteBlockProperty_spanStaysTight(t *testing.T) {
	g, page := loadSinglePage(t, "- first\n  note:: keep\n- second\n  marker:: old\n")
	first := page.Blocks[0]

	// two inserts on the first block must not grow its span into the
	// second block; the third write has no match inside the first block
	// and must insert rather than replace the neighbor's line
	if err := g.WriteBlockProperty(first, "id", "u-1"); err != nil {
		t.Fatal(err)
	}
	if err := g.WriteBlockProperty(first, "mochi-id", "c-1"); err != nil {
		t.Fatal(err)
	}
	if err := g.WriteBlockProperty(first, "marker", "new"); err != nil {
		t.Fatal(err)
	}

	got := readPageFile(t, page)
	want := "- first\n" +
		"  marker:: new\n" +
		"  mochi-id:: c-1\n" +
		"  id:: u-1\n" +
		"  note:: keep\n" +
		"- second\n" +
		"  marker:: old\n"
	assert.Equal(t, got, want, "file content mismatch")
}

func TestEnsureUUID(t *testing.T) {
	g, page := loadSinglePage(t, "- some block\n")
	blk := page.Blocks[0]

	id, err := g.EnsureUUID(blk)
	if err != nil {
		t.Fatal(err)
	}
	assert.NotEqual(t, id, "", "a uuid should have been assigned")

	got := readPageFile(t, page)
	assert.Equal(t, got, "- some block\n  id:: "+id+"\n", "file content mismatch")

	found, ok := g.BlockByUUID(id)
	assert.Equal(t, ok, true, "block should be registered under the new uuid")
	assert.Equal(t, found, blk, "registered block mismatch")

	// a second call returns the same uuid without touching the file
	again, err := g.EnsureUUID(blk)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, again, id, "uuid should be stable")
}
