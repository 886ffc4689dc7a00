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
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// Graph is an immutable snapshot of the pages of one graph directory
type Graph struct {
	Dir   string
	Pages []*Page

	byUUID map[string]*Block
}

// Load reads the graph at the given directory. When the directory has the
// standard pages/ and journals/ layout only those are read; otherwise every
// markdown file under the directory is treated as a page.
func Load(dir string) (*Graph, error) {
	g := &Graph{Dir: dir, byUUID: map[string]*Block{}}

	roots := []string{filepath.Join(dir, "pages"), filepath.Join(dir, "journals")}
	if _, err := os.Stat(roots[0]); err != nil {
		roots = []string{dir}
	}

	for _, root := range roots {
		if _, err := os.Stat(root); err != nil {
			continue
		}

		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				name := d.Name()
				if path != root && (strings.HasPrefix(name, ".") || name == "logseq" || name == "assets") {
					return filepath.SkipDir
				}
				return nil
			}
			if !strings.EqualFold(filepath.Ext(d.Name()), ".md") {
				return nil
			}

			page, err := ParsePage(path)
			if err != nil {
				return err
			}
			g.Pages = append(g.Pages, page)

			return nil
		})
		if err != nil {
			return nil, errors.Wrapf(err, "walking %s", root)
		}
	}

	for _, p := range g.Pages {
		p.WalkBlocks(func(b *Block) {
			if b.UUID != "" {
				g.byUUID[b.UUID] = b
			}
		})
	}

	return g, nil
}

// BlockByUUID returns the block with the given uuid, if any
func (g *Graph) BlockByUUID(uuid string) (*Block, bool) {
	b, ok := g.byUUID[uuid]
	return b, ok
}

// Tagged returns every block whose content references the given tag,
// in page order
func (g *Graph) Tagged(tag string) []*Block {
	var ret []*Block
	for _, p := range g.Pages {
		p.WalkBlocks(func(b *Block) {
			if HasMarker(b.Content, tag) {
				ret = append(ret, b)
			}
		})
	}

	return ret
}

// HasMarker returns true if the text references the tag as #tag, #[[tag]]
// or [[tag]]
func HasMarker(text, tag string) bool {
	return markerPattern(tag).MatchString(text)
}

func markerPattern(tag string) *regexp.Regexp {
	q := regexp.QuoteMeta(tag)
	return regexp.MustCompile(`(?m)(?:#\[\[` + q + `\]\]|\[\[` + q + `\]\]|#` + q + `(?:\s|$))`)
}

// ReadAsset resolves a media reference found on the given page to its bytes
// and the resolved path. References are local paths relative to the page
// file, typically ../assets/<name>.
func (g *Graph) ReadAsset(page *Page, ref string) ([]byte, string, error) {
	candidates := []string{
		filepath.Clean(filepath.Join(filepath.Dir(page.Path), ref)),
		filepath.Clean(filepath.Join(g.Dir, "assets", filepath.Base(ref))),
	}

	var lastErr error
	for _, path := range candidates {
		if !strings.HasPrefix(path, filepath.Clean(g.Dir)+string(os.PathSeparator)) {
			lastErr = errors.Errorf("asset %s escapes the graph directory", ref)
			continue
		}

		b, err := os.ReadFile(path)
		if err != nil {
			lastErr = err
			continue
		}

		return b, path, nil
	}

	return nil, "", errors.Wrapf(lastErr, "resolving asset %s", ref)
}
