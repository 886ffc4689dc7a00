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

// Package consts provides definitions of constants
package consts

var (
	// DirName is the name of the directory containing mochisync files
	DirName = "mochisync"
	// DBFileName is a filename for the mochisync SQLite database
	DBFileName = "mochisync.db"
	// ConfigFilename is the name of the config file
	ConfigFilename = "mochisyncrc"

	// EnvConfigPath overrides the config file location
	EnvConfigPath = "MOCHISYNC_CONFIG"
	// EnvAPIKey carries the remote store credential
	EnvAPIKey = "MOCHI_API_KEY"

	// SystemSchema is the key for schema in the system table
	SystemSchema = "schema"
	// SystemLastSyncAt is the local timestamp of the last successful sync
	SystemLastSyncAt = "last_sync_time"
)

var (
	// PropCardID is the block property carrying the assigned remote card id.
	// It is written by mochisync and never authored by hand.
	PropCardID = "mochi-id"
	// PropBlockID is the block property carrying the block's stable uuid
	PropBlockID = "id"
	// PropDeck selects the deck for a card
	PropDeck = "deck"
	// PropTags carries a comma-separated tag list
	PropTags = "tags"
	// PropTemplate selects the remote template by name
	PropTemplate = "template"
	// PropFieldPrefix prefixes template field properties, e.g. field-Front
	PropFieldPrefix = "field-"
	// PropIncludePageTitle overrides the global page-title inclusion flag
	PropIncludePageTitle = "include-page-title"
	// PropIncludeAncestors overrides the global ancestor inclusion flag
	PropIncludeAncestors = "include-ancestors"

	// SystemTag marks every card managed by mochisync. The remote card
	// list is filtered down to cards carrying it.
	SystemTag = "logseq"

	// DefaultSyncTag is the tag that marks a block as a card
	DefaultSyncTag = "card"
)
