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
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mochisync/mochisync/pkg/assert"
	"github.com/pkg/errors"
)

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	c := NewClient(srv.URL, "test-key", nil)

	return c, srv
}

func TestListCards_pagination(t *testing.T) {
	var authedUser string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authedUser, _, _ = r.BasicAuth()

		bookmark := r.URL.Query().Get("bookmark")
		var resp listCardsResp
		switch bookmark {
		case "":
			resp = listCardsResp{
				Docs:     []Card{{ID: "c1", Content: "one"}, {ID: "c2", Content: "two"}},
				Bookmark: "page2",
			}
		case "page2":
			resp = listCardsResp{
				Docs:     []Card{{ID: "c3", Content: "three"}},
				Bookmark: "page3",
			}
		default:
			resp = listCardsResp{Bookmark: bookmark}
		}

		json.NewEncoder(w).Encode(resp)
	})
	c, srv := newTestClient(handler)
	defer srv.Close()

	got, err := c.ListCards()
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, len(got), 3, "all pages should be followed")
	assert.Equal(t, got[2].ID, "c3", "card order mismatch")
	assert.Equal(t, authedUser, "test-key", "the api key should be the basic auth user")
}

func TestListCards_repeatedBookmark(t *testing.T) {
	calls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		// same bookmark forever; the client must stop
		json.NewEncoder(w).Encode(listCardsResp{
			Docs:     []Card{{ID: fmt.Sprintf("c%d", calls)}},
			Bookmark: "same",
		})
	})
	c, srv := newTestClient(handler)
	defer srv.Close()

	got, err := c.ListCards()
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, calls, 2, "the repeated bookmark should end the loop")
	assert.Equal(t, len(got), 2, "card count mismatch")
}

func TestListCardsWithTag(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(listCardsResp{Docs: []Card{
			{ID: "c1", Tags: []string{"logseq"}},
			{ID: "c2", Tags: []string{"other"}},
			{ID: "c3"},
		}})
	})
	c, srv := newTestClient(handler)
	defer srv.Close()

	got, err := c.ListCardsWithTag("logseq")
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, len(got), 1, "only tagged cards should be returned")
	assert.Equal(t, got[0].ID, "c1", "card mismatch")
}

func TestHTTPError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintln(w, "something broke")
	})
	c, srv := newTestClient(handler)
	defer srv.Close()

	_, err := c.ListCards()
	assert.NotEqual(t, err, nil, "the call should fail")

	var httpErr *HTTPError
	assert.Equal(t, errors.As(err, &httpErr), true, "the error should carry the http response")
	assert.Equal(t, httpErr.StatusCode, http.StatusInternalServerError, "status code mismatch")
	assert.Equal(t, httpErr.Message, "something broke", "message mismatch")
}

func TestCreateCard(t *testing.T) {
	var body map[string]interface{}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, r.Method, "POST", "method mismatch")
		assert.Equal(t, r.URL.Path, "/cards", "path mismatch")

		b, _ := io.ReadAll(r.Body)
		json.Unmarshal(b, &body)

		json.NewEncoder(w).Encode(Card{ID: "new-id", Content: "hello", DeckID: "d1"})
	})
	c, srv := newTestClient(handler)
	defer srv.Close()

	got, err := c.CreateCard(Card{Content: "hello", DeckID: "d1", Tags: []string{"logseq"}})
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, got.ID, "new-id", "created card id mismatch")
	assert.Equal(t, body["deck-id"], "d1", "payload should use the dashed deck key")
	tags, _ := body["manual-tags"].([]interface{})
	assert.Equal(t, len(tags), 1, "payload should carry manual-tags")
}

func TestAttachmentExists(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, r.Method, "HEAD", "method mismatch")
		if r.URL.Path == "/cards/c1/attachments/yes.png" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})
	c, srv := newTestClient(handler)
	defer srv.Close()

	ok, err := c.AttachmentExists("c1", "yes.png")
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, ok, true, "existing attachment should report true")

	ok, err = c.AttachmentExists("c1", "no.png")
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, ok, false, "missing attachment should report false without error")
}

func TestUploadAttachment(t *testing.T) {
	var gotFilename string
	var gotBytes []byte
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, r.Method, "POST", "method mismatch")
		assert.Equal(t, r.URL.Path, "/cards/c1/attachments/abc.png", "path mismatch")

		f, header, err := r.FormFile("file")
		if err != nil {
			t.Fatal(err)
		}
		defer f.Close()

		gotFilename = header.Filename
		gotBytes, _ = io.ReadAll(f)
	})
	c, srv := newTestClient(handler)
	defer srv.Close()

	err := c.UploadAttachment("c1", "abc.png", "image/png", []byte("png-bytes"))
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, gotFilename, "abc.png", "multipart filename mismatch")
	assert.Equal(t, string(gotBytes), "png-bytes", "uploaded bytes mismatch")
}

func TestTrashed(t *testing.T) {
	live := Card{ID: "c1"}
	assert.Equal(t, live.Trashed(), false, "card without trashed timestamp should be live")

	ts := "2026-08-27T00:00:00Z"
	gone := Card{ID: "c2", TrashedAt: &ts}
	assert.Equal(t, gone.Trashed(), true, "card with trashed timestamp should be trashed")
}
