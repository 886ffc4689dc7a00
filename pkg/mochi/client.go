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

// Package mochi provides the client for the remote flashcard store and the
// data structures for its responses
package mochi

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mochisync/mochisync/pkg/cli/log"
	"github.com/mochisync/mochisync/pkg/ratelimit"
	"github.com/pkg/errors"
)

// HTTPError represents an HTTP error response from the server
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf(`response %d "%s"`, e.StatusCode, e.Message)
}

// IsNotFound returns true if the error is a 404 Not Found error
func (e *HTTPError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// Client talks to the remote store. Every call, read or write, passes
// through the shared rate limiter.
type Client struct {
	APIEndpoint string
	APIKey      string
	HTTPClient  *http.Client
	Limiter     *ratelimit.Limiter
}

// NewClient constructs a client for the given endpoint and credential
func NewClient(apiEndpoint, apiKey string, limiter *ratelimit.Limiter) *Client {
	return &Client{
		APIEndpoint: apiEndpoint,
		APIKey:      apiKey,
		HTTPClient:  &http.Client{},
		Limiter:     limiter,
	}
}

func (c *Client) getReq(method, path, contentType string, body io.Reader) (*http.Request, error) {
	endpoint := fmt.Sprintf("%s%s", c.APIEndpoint, path)
	req, err := http.NewRequest(method, endpoint, body)
	if err != nil {
		return nil, errors.Wrap(err, "constructing http request")
	}

	req.SetBasicAuth(c.APIKey, "")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	return req, nil
}

// checkRespErr checks if the given http response indicates an error. It
// returns a decoded error message if so.
func checkRespErr(res *http.Response) error {
	if res.StatusCode < 400 {
		return nil
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return errors.Wrapf(err, "server responded with %d but client could not read the response body", res.StatusCode)
	}

	return &HTTPError{
		StatusCode: res.StatusCode,
		Message:    strings.TrimRight(string(body), "\n"),
	}
}

// doReq does a http request to the given path in the api endpoint
func (c *Client) doReq(method, path, contentType string, body io.Reader) (*http.Response, error) {
	req, err := c.getReq(method, path, contentType, body)
	if err != nil {
		return nil, errors.Wrap(err, "getting request")
	}

	if c.Limiter != nil {
		c.Limiter.Wait()
	}

	log.Debug("HTTP %s %s\n", method, path)

	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return res, errors.Wrap(err, "making http request")
	}

	log.Debug("HTTP %d %s\n", res.StatusCode, res.Status)

	if err = checkRespErr(res); err != nil {
		return res, err
	}

	return res, nil
}

func (c *Client) doJSON(method, path, body string) (*http.Response, error) {
	var reader io.Reader
	var contentType string
	if body != "" {
		reader = strings.NewReader(body)
		contentType = "application/json"
	}

	return c.doReq(method, path, contentType, reader)
}
