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

	"github.com/pkg/errors"
)

// Deck is a deck document in the remote store
type Deck struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	ParentID string `json:"parent-id,omitempty"`
}

type listDecksResp struct {
	Docs     []Deck `json:"docs"`
	Bookmark string `json:"bookmark"`
}

// ListDecks fetches all decks from the server
func (c *Client) ListDecks() ([]Deck, error) {
	var ret []Deck

	bookmark := ""
	for {
		v := url.Values{}
		v.Set("limit", fmt.Sprintf("%d", pageLimit))
		if bookmark != "" {
			v.Set("bookmark", bookmark)
		}

		res, err := c.doJSON("GET", fmt.Sprintf("/decks?%s", v.Encode()), "")
		if err != nil {
			return nil, errors.Wrap(err, "listing decks")
		}

		var resp listDecksResp
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

// CreateDeck creates a new deck in the server
func (c *Client) CreateDeck(name string) (Deck, error) {
	payload := Deck{Name: name}
	b, err := json.Marshal(payload)
	if err != nil {
		return Deck{}, errors.Wrap(err, "marshaling payload")
	}

	res, err := c.doJSON("POST", "/decks", string(b))
	if err != nil {
		return Deck{}, errors.Wrap(err, "posting a deck to the server")
	}
	defer res.Body.Close()

	var ret Deck
	if err := json.NewDecoder(res.Body).Decode(&ret); err != nil {
		return Deck{}, errors.Wrap(err, "decoding payload")
	}

	return ret, nil
}
