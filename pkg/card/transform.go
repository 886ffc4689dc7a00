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
	"regexp"
	"strings"
)

// Transformer rewrites display content from source markup to the remote
// store's markup. Applying it to its own output is a no-op.
type Transformer struct {
	// Tag is the card marker to strip, e.g. "card"
	Tag string
}

var clozePattern = regexp.MustCompile(`(?s)\{\{cloze\s+(.+?)\}\}`)
var trailingLineSpace = regexp.MustCompile(`(?m)[ \t]+$`)

// Transform rewrites the given stripped block text
func (t Transformer) Transform(text string) string {
	s := t.stripMarker(text)
	s = clozePattern.ReplaceAllString(s, "{{$1}}")
	s = escapeUnescaped(s, "[[")
	s = escapeUnescaped(s, "]]")
	s = trailingLineSpace.ReplaceAllString(s, "")

	return strings.TrimRight(s, "\n") + "\n"
}

// stripMarker removes the card-tag marker together with the whitespace
// directly before it
func (t Transformer) stripMarker(s string) string {
	q := regexp.QuoteMeta(t.Tag)
	re := regexp.MustCompile(`[ \t]*(?:#\[\[` + q + `\]\]|\[\[` + q + `\]\]|#` + q + `\b)`)

	return re.ReplaceAllString(s, "")
}

// escapeUnescaped prefixes every occurrence of the token with a backslash,
// leaving already-escaped occurrences untouched so that repeated
// application does not double-escape
func escapeUnescaped(s, token string) string {
	var b strings.Builder
	for i := 0; i < len(s); {
		if strings.HasPrefix(s[i:], token) && (i == 0 || s[i-1] != '\\') {
			b.WriteByte('\\')
			b.WriteString(token)
			i += len(token)
			continue
		}

		b.WriteByte(s[i])
		i++
	}

	return b.String()
}
