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

// Package logseq reads an outliner graph from disk into an immutable
// snapshot of pages and blocks. The snapshot is walked with plain recursion;
// the only mutation ever performed on the source is writing a single
// property line back onto a block.
package logseq

// Block is one outline bullet together with its continuation lines
type Block struct {
	// UUID is the block's stable identity, from its id:: property.
	// Empty until one is assigned.
	UUID string
	// Content is the block text minus property lines
	Content string
	// Properties are the pairs extracted from the block's own text
	Properties []Property
	Children   []*Block
	Parent     *Block
	Page       *Page

	// startLine and endLine delimit the block's own lines (head plus
	// continuations, excluding children) in the page file
	startLine int
	endLine   int
}

// Ancestors returns the block's ancestor chain ordered root first, nearest
// parent last. The page itself is not part of the chain.
func (b *Block) Ancestors() []*Block {
	var ret []*Block
	for p := b.Parent; p != nil; p = p.Parent {
		ret = append([]*Block{p}, ret...)
	}

	return ret
}

// Walk visits the block and all of its descendants depth-first
func (b *Block) Walk(fn func(*Block)) {
	fn(b)
	for _, c := range b.Children {
		c.Walk(fn)
	}
}

// Page is one markdown file in the graph
type Page struct {
	Title      string
	Path       string
	Properties []Property
	Blocks     []*Block

	lines []string
}

// WalkBlocks visits every block of the page depth-first
func (p *Page) WalkBlocks(fn func(*Block)) {
	for _, b := range p.Blocks {
		b.Walk(fn)
	}
}
