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
	"regexp"
	"strings"

	"github.com/mochisync/mochisync/pkg/cli/consts"
	"github.com/pkg/errors"
)

var bulletPattern = regexp.MustCompile(`^([ \t]*)-(?: (.*))?$`)

// indentWidth scores leading whitespace. Tabs count as four columns so that
// tab-indented and space-indented graphs nest the same way.
func indentWidth(ws string) int {
	w := 0
	for _, r := range ws {
		if r == '\t' {
			w += 4
		} else {
			w++
		}
	}

	return w
}

// titleFromFilename derives the page title from the file name. Logseq
// encodes `/` in namespaced page names as `%2F` or `___`.
func titleFromFilename(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	name = strings.ReplaceAll(name, "%2F", "/")
	name = strings.ReplaceAll(name, "___", "/")

	return name
}

// openBlock is parser state for a block whose continuation lines are
// still being read
type openBlock struct {
	block  *Block
	indent int
	raw    []string
}

// ParsePage parses one page file into a block tree
func ParsePage(path string) (*Page, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading page %s", path)
	}

	page := &Page{
		Title: titleFromFilename(path),
		Path:  path,
		lines: strings.Split(strings.ReplaceAll(string(b), "\r\n", "\n"), "\n"),
	}
	parseInto(page)

	return page, nil
}

func parseInto(page *Page) {
	var stack []*openBlock
	var preamble []string

	finish := func(ob *openBlock) {
		raw := strings.Join(ob.raw, "\n")
		content, props := ExtractProperties(raw)
		ob.block.Content = content
		ob.block.Properties = props
		if id, ok := Prop(props, consts.PropBlockID); ok {
			ob.block.UUID = id
		}
	}

	// the file's trailing newline splits into empty elements that are not
	// block content; they stay in page.lines for write-back
	end := len(page.lines)
	for end > 0 && page.lines[end-1] == "" {
		end--
	}

	for i, line := range page.lines[:end] {
		m := bulletPattern.FindStringSubmatch(line)
		if m == nil {
			if len(stack) == 0 {
				preamble = append(preamble, line)
				continue
			}

			top := stack[len(stack)-1]
			top.raw = append(top.raw, strings.TrimLeft(line, " \t"))
			top.block.endLine = i + 1
			continue
		}

		indent := indentWidth(m[1])
		blk := &Block{Page: page, startLine: i, endLine: i + 1}

		// close blocks that the new bullet does not nest under
		for len(stack) > 0 && stack[len(stack)-1].indent >= indent {
			finish(stack[len(stack)-1])
			stack = stack[:len(stack)-1]
		}

		if len(stack) == 0 {
			page.Blocks = append(page.Blocks, blk)
		} else {
			parent := stack[len(stack)-1].block
			blk.Parent = parent
			parent.Children = append(parent.Children, blk)
		}

		stack = append(stack, &openBlock{block: blk, indent: indent, raw: []string{m[2]}})
	}

	for len(stack) > 0 {
		finish(stack[len(stack)-1])
		stack = stack[:len(stack)-1]
	}

	// Lines before the first bullet hold page properties.
	_, pageProps := ExtractProperties(strings.Join(preamble, "\n"))
	page.Properties = pageProps

	// A first top-level block consisting only of property lines is the
	// other way Logseq stores page properties.
	if len(page.Blocks) > 0 {
		first := page.Blocks[0]
		if strings.TrimSpace(first.Content) == "" && len(first.Properties) > 0 && len(first.Children) == 0 {
			page.Properties = append(page.Properties, first.Properties...)
			page.Blocks = page.Blocks[1:]
		}
	}
}
