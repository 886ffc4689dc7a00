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
	"crypto/sha256"
	"encoding/hex"
	"mime"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// MaxAttachmentBytes is the upper bound on a single attachment. Larger
// references are left unresolved.
const MaxAttachmentBytes = 5 << 20

// filenameHashLen is the number of hash hex characters used in the
// content-addressed filename
const filenameHashLen = 16

// Attachment is a media file referenced by card content, identified by a
// hash of its bytes rather than its original path
type Attachment struct {
	Hash         string
	OriginalPath string
	Filename     string
	ContentType  string
	Bytes        []byte
}

// Source resolves a local media reference to its bytes and resolved path
type Source func(ref string) ([]byte, string, error)

// Resolver rewrites media references in content to content-addressed
// filenames and collects the referenced bytes
type Resolver struct {
	Source Source
}

var mediaPattern = regexp.MustCompile(`!\[[^\]]*\]\(([^()\s]+)\)`)

// Resolve rewrites every local media reference in the content to its
// content-addressed filename. Unresolvable or oversized references are left
// in place and reported; they never fail the card.
func (r Resolver) Resolve(content string) (string, []Attachment, []error) {
	var atts []Attachment
	var errs []error

	out := mediaPattern.ReplaceAllStringFunc(content, func(m string) string {
		ref := mediaPattern.FindStringSubmatch(m)[1]
		if isRemoteURL(ref) {
			return m
		}

		att, err := r.resolveOne(ref)
		if err != nil {
			errs = append(errs, err)
			return m
		}

		atts = append(atts, att)
		return strings.Replace(m, "("+ref+")", "("+att.Filename+")", 1)
	})

	return out, atts, errs
}

func (r Resolver) resolveOne(ref string) (Attachment, error) {
	b, path, err := r.Source(ref)
	if err != nil {
		return Attachment{}, errors.Wrapf(err, "reading media reference %s", ref)
	}
	if len(b) > MaxAttachmentBytes {
		return Attachment{}, errors.Errorf("media reference %s is %d bytes, above the %d byte limit", ref, len(b), MaxAttachmentBytes)
	}

	sum := sha256.Sum256(b)
	hash := hex.EncodeToString(sum[:])
	ext := strings.ToLower(filepath.Ext(ref))

	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = http.DetectContentType(b)
	}

	return Attachment{
		Hash:         hash,
		OriginalPath: path,
		Filename:     hash[:filenameHashLen] + ext,
		ContentType:  contentType,
		Bytes:        b,
	}, nil
}

func isRemoteURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}
