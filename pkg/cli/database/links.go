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

package database

import (
	"database/sql"

	"github.com/pkg/errors"
)

// Link maps a local block to its remote card
type Link struct {
	BlockUUID string
	CardID    string
}

// GetCardID returns the remote card id for the given block uuid. The second
// return value reports whether a mapping exists.
func GetCardID(db *DB, blockUUID string) (string, bool, error) {
	var cardID string

	err := db.QueryRow("SELECT card_id FROM links WHERE block_uuid = ?", blockUUID).Scan(&cardID)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "querying link for block %s", blockUUID)
	}

	return cardID, true, nil
}

// UpsertLink records the remote card id for the given block uuid
func UpsertLink(db *DB, blockUUID, cardID string) error {
	_, err := db.Exec(`INSERT INTO links (block_uuid, card_id) VALUES (?, ?)
		ON CONFLICT(block_uuid) DO UPDATE SET card_id = excluded.card_id`, blockUUID, cardID)
	if err != nil {
		return errors.Wrapf(err, "upserting link for block %s", blockUUID)
	}

	return nil
}

// DeleteLinkByCardID removes the mapping that points at the given remote card.
// A future card reusing the block identity is then treated as new.
func DeleteLinkByCardID(db *DB, cardID string) error {
	_, err := db.Exec("DELETE FROM links WHERE card_id = ?", cardID)
	if err != nil {
		return errors.Wrapf(err, "deleting link for card %s", cardID)
	}

	return nil
}

// AllLinks returns the full block uuid to card id mapping
func AllLinks(db *DB) (map[string]string, error) {
	rows, err := db.Query("SELECT block_uuid, card_id FROM links")
	if err != nil {
		return nil, errors.Wrap(err, "querying links")
	}
	defer rows.Close()

	ret := map[string]string{}
	for rows.Next() {
		var l Link
		if err := rows.Scan(&l.BlockUUID, &l.CardID); err != nil {
			return nil, errors.Wrap(err, "scanning a link row")
		}
		ret[l.BlockUUID] = l.CardID
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating link rows")
	}

	return ret, nil
}
