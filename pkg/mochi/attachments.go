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

package mochi

import (
	"bytes"
	"fmt"
	"mime/multipart"

	"github.com/pkg/errors"
)

// AttachmentExists checks whether the card already has an attachment with
// the given filename. Filenames are content-addressed, so a hit means the
// bytes are already on the server.
func (c *Client) AttachmentExists(cardID, filename string) (bool, error) {
	res, err := c.doReq("HEAD", fmt.Sprintf("/cards/%s/attachments/%s", cardID, filename), "", nil)
	if err != nil {
		var httpErr *HTTPError
		if errors.As(err, &httpErr) && httpErr.IsNotFound() {
			return false, nil
		}

		return false, errors.Wrap(err, "checking attachment")
	}
	res.Body.Close()

	return true, nil
}

// UploadAttachment uploads the given bytes as an attachment on the card
func (c *Client) UploadAttachment(cardID, filename, contentType string, data []byte) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return errors.Wrap(err, "creating multipart field")
	}
	if _, err := part.Write(data); err != nil {
		return errors.Wrap(err, "writing attachment bytes")
	}
	if err := w.Close(); err != nil {
		return errors.Wrap(err, "closing multipart writer")
	}

	path := fmt.Sprintf("/cards/%s/attachments/%s", cardID, filename)
	res, err := c.doReq("POST", path, w.FormDataContentType(), &buf)
	if err != nil {
		return errors.Wrap(err, "uploading attachment")
	}
	res.Body.Close()

	return nil
}
