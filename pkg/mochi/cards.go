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

// Field is a template field value on a card
type Field struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

// Attachment is an uploaded file on a card. Filenames are content-addressed,
// so filename equality is the dedup key.
type Attachment struct {
	FileName string `json:"file-name"`
}

// Card is a card document in the remote store
type Card struct {
	ID          string           `json:"id,omitempty"`
	Content     string           `json:"content"`
	DeckID      string           `json:"deck-id"`
	TemplateID  string           `json:"template-id,omitempty"`
	Fields      map[string]Field `json:"fields,omitempty"`
	Tags        []string         `json:"manual-tags,omitempty"`
	TrashedAt   *string          `json:"trashed?,omitempty"`
	Attachments []Attachment     `json:"attachments,omitempty"`
}

// Trashed returns true if the card sits in the remote trash
func (c Card) Trashed() bool {
	return c.TrashedAt != nil && *c.TrashedAt != ""
}

// AttachmentFilenames returns the set of attachment filenames on the card
func (c Card) AttachmentFilenames() map[string]bool {
	ret := map[string]bool{}
	for _, a := range c.Attachments {
		ret[a.FileName] = true
	}

	return ret
}

// HasTag returns true if the card carries the given tag
func (c Card) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}

	return false
}

type listCardsResp struct {
	Docs     []Card `json:"docs"`
	Bookmark string `json:"bookmark"`
}

// pageLimit is the page size requested from the paginated list endpoints
const pageLimit = 100

// ListCards fetches all cards from the server, following the bookmark
// cursor until the server stops returning documents.
func (c *Client) ListCards() ([]Card, error) {
	var ret []Card

	bookmark := ""
	for {
		v := url.Values{}
		v.Set("limit", fmt.Sprintf("%d", pageLimit))
		if bookmark != "" {
			v.Set("bookmark", bookmark)
		}

		res, err := c.doJSON("GET", fmt.Sprintf("/cards?%s", v.Encode()), "")
		if err != nil {
			return nil, errors.Wrap(err, "listing cards")
		}

		var resp listCardsResp
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

// ListCardsWithTag fetches all cards and filters them client-side down to
// the ones carrying the given tag
func (c *Client) ListCardsWithTag(tag string) ([]Card, error) {
	cards, err := c.ListCards()
	if err != nil {
		return nil, err
	}

	var ret []Card
	for _, card := range cards {
		if card.HasTag(tag) {
			ret = append(ret, card)
		}
	}

	return ret, nil
}

// CreateCard creates a new card in the server
func (c *Client) CreateCard(card Card) (Card, error) {
	b, err := json.Marshal(card)
	if err != nil {
		return Card{}, errors.Wrap(err, "marshaling payload")
	}

	res, err := c.doJSON("POST", "/cards", string(b))
	if err != nil {
		return Card{}, errors.Wrap(err, "posting a card to the server")
	}
	defer res.Body.Close()

	var ret Card
	if err := json.NewDecoder(res.Body).Decode(&ret); err != nil {
		return Card{}, errors.Wrap(err, "decoding payload")
	}

	return ret, nil
}

// UpdateCard updates an existing card in the server
func (c *Client) UpdateCard(card Card) (Card, error) {
	b, err := json.Marshal(card)
	if err != nil {
		return Card{}, errors.Wrap(err, "marshaling payload")
	}

	res, err := c.doJSON("POST", fmt.Sprintf("/cards/%s", card.ID), string(b))
	if err != nil {
		return Card{}, errors.Wrap(err, "updating a card in the server")
	}
	defer res.Body.Close()

	var ret Card
	if err := json.NewDecoder(res.Body).Decode(&ret); err != nil {
		return Card{}, errors.Wrap(err, "decoding payload")
	}

	return ret, nil
}

// DeleteCard removes a card in the server
func (c *Client) DeleteCard(id string) error {
	res, err := c.doJSON("DELETE", fmt.Sprintf("/cards/%s", id), "")
	if err != nil {
		return errors.Wrap(err, "deleting a card in the server")
	}
	res.Body.Close()

	return nil
}
