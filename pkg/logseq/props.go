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
	"regexp"
	"strings"
)

// Property is an ordered key/value pair extracted from one line of block text.
// Keys are kept case-sensitive as extracted; special keys are matched
// case-insensitively when consumed.
type Property struct {
	Key   string
	Value string
}

// propertyPattern matches a `key:: value` line. Keys are identifier
// characters plus `?` and `-`.
var propertyPattern = regexp.MustCompile(`^([A-Za-z0-9_?-]+)\s*::\s*(.*)$`)

// ExtractProperties splits raw block text into its display content and its
// ordered property pairs. Property lines are removed; every other line is
// retained verbatim, in original order. The input is never mutated.
func ExtractProperties(text string) (string, []Property) {
	var props []Property
	var kept []string

	for _, line := range strings.Split(text, "\n") {
		m := propertyPattern.FindStringSubmatch(strings.TrimSpace(line))
		if m != nil {
			props = append(props, Property{Key: m[1], Value: strings.TrimSpace(m[2])})
			continue
		}

		kept = append(kept, line)
	}

	return strings.Join(kept, "\n"), props
}

// Prop returns the value of the given key, matched case-insensitively.
// When the key repeats, the last occurrence wins.
func Prop(props []Property, key string) (string, bool) {
	var val string
	found := false
	for _, p := range props {
		if strings.EqualFold(p.Key, key) {
			val = p.Value
			found = true
		}
	}

	return val, found
}

// MergeProperties merges ordered property lists left to right into a map.
// Later lists override earlier ones; within a list, later pairs win.
// Overriding matches keys case-insensitively but the winning pair keeps its
// authored key casing.
func MergeProperties(lists ...[]Property) map[string]string {
	ret := map[string]string{}
	canonical := map[string]string{}

	for _, list := range lists {
		for _, p := range list {
			folded := strings.ToLower(p.Key)
			if prev, ok := canonical[folded]; ok && prev != p.Key {
				delete(ret, prev)
			}
			canonical[folded] = p.Key
			ret[p.Key] = p.Value
		}
	}

	return ret
}

// LookupMerged reads a key from a merged property map case-insensitively
func LookupMerged(props map[string]string, key string) (string, bool) {
	for k, v := range props {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}

	return "", false
}
