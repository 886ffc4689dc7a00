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
	"path/filepath"
	"testing"

	"github.com/mochisync/mochisync/pkg/assert"
)

func writePage(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	return path
}

func TestParsePage(t *testing.T) {
	content := `alias:: Example Page

- first block
  id:: 1111-2222
  a continuation line
- parent
	- tab child
- spaced parent
  - child one
  - child two
    - grandchild
`
	path := writePage(t, t.TempDir(), "My Page.md", content)

	page, err := ParsePage(path)
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, page.Title, "My Page", "title mismatch")
	assert.DeepEqual(t, page.Properties, []Property{{Key: "alias", Value: "Example Page"}}, "page props mismatch")
	assert.Equal(t, len(page.Blocks), 3, "top-level block count mismatch")

	first := page.Blocks[0]
	assert.Equal(t, first.UUID, "1111-2222", "uuid should come from the id property")
	assert.Equal(t, first.Content, "first block\na continuation line", "first block content mismatch")

	parent := page.Blocks[1]
	assert.Equal(t, len(parent.Children), 1, "tab-indented child should nest")
	assert.Equal(t, parent.Children[0].Content, "tab child", "tab child content mismatch")

	spaced := page.Blocks[2]
	assert.Equal(t, len(spaced.Children), 2, "child count mismatch")
	assert.Equal(t, len(spaced.Children[1].Children), 1, "grandchild should nest under child two")
	assert.Equal(t, spaced.Children[1].Children[0].Parent, spaced.Children[1], "parent pointer mismatch")
}

func TestParsePage_propertyBlock(t *testing.T) {
	content := `- deck:: FromBlock
  tags:: page-tag
- actual first block
`
	path := writePage(t, t.TempDir(), "props.md", content)

	page, err := ParsePage(path)
	if err != nil {
		t.Fatal(err)
	}

	// the property-only first block holds the page properties
	assert.Equal(t, len(page.Blocks), 1, "property block should not remain a block")
	assert.Equal(t, page.Blocks[0].Content, "actual first block", "block content mismatch")

	deck, ok := Prop(page.Properties, "deck")
	assert.Equal(t, ok, true, "deck should be a page property")
	assert.Equal(t, deck, "FromBlock", "deck value mismatch")
}

func TestTitleFromFilename(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{input: "plain.md", expected: "plain"},
		{input: "ns%2Fchild.md", expected: "ns/child"},
		{input: "ns___child.md", expected: "ns/child"},
	}

	for _, tc := range testCases {
		assert.Equal(t, titleFromFilename(tc.input), tc.expected, "title mismatch")
	}
}

func TestParsePage_crlf(t *testing.T) {
	path := writePage(t, t.TempDir(), "crlf.md", "- one\r\n- two\r\n")

	page, err := ParsePage(path)
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, len(page.Blocks), 2, "block count mismatch")
	assert.Equal(t, page.Blocks[1].Content, "two", "content should not carry carriage returns")
}
