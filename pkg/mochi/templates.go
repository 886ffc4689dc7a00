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
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

// TemplateField is a field declared on a template
type TemplateField struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Template is a template document in the remote store. Read-only.
type Template struct {
	ID     string                   `json:"id"`
	Name   string                   `json:"name"`
	Fields map[string]TemplateField `json:"fields"`
}

// FieldByName returns the declared field whose name matches case-insensitively
func (t Template) FieldByName(name string) (TemplateField, bool) {
	for _, f := range t.Fields {
		if strings.EqualFold(f.Name, name) {
			return f, true
		}
	}

	return TemplateField{}, false
}

type listTemplatesResp struct {
	Docs     []Template `json:"docs"`
	Bookmark string     `json:"bookmark"`
}

// ListTemplates fetches all templates from the server
func (c *Client) ListTemplates() ([]Template, error) {
	var ret []Template

	bookmark := ""
	for {
		v := url.Values{}
		v.Set("limit", fmt.Sprintf("%d", pageLimit))
		if bookmark != "" {
			v.Set("bookmark", bookmark)
		}

		res, err := c.doJSON("GET", fmt.Sprintf("/templates?%s", v.Encode()), "")
		if err != nil {
			return nil, errors.Wrap(err, "listing templates")
		}

		var resp listTemplatesResp
		if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
			res.Body.Close()
			return nil, errors.Wrap(err, "decoding payload")
		}
		res.Body.Close()

		ret = append(ret, resp.Docs...)

		if len(resp.Docs) == 0 || resp.Bookmark == "" || resp.Bookmark == bookmark {
			break
		}
		bookmark = resp.Bookmark
	}

	return ret, nil
}
