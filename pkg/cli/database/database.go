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

// Package database provides the persisted sync state: the mapping from
// local block identity to remote card id, plus a small system kv table.
package database

import (
	"database/sql"

	"github.com/pkg/errors"
)

// DB is a wrapper around the SQL database connection
type DB struct {
	*sql.DB
}

// Open opens the connection with the database and initializes the schema
func Open(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "opening the database")
	}

	db := &DB{conn}
	if err := initSchema(db); err != nil {
		return nil, errors.Wrap(err, "initializing schema")
	}

	return db, nil
}

func initSchema(db *DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS links
		(
			block_uuid text PRIMARY KEY,
			card_id text NOT NULL
		)`)
	if err != nil {
		return errors.Wrap(err, "creating links table")
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS system
		(
			key text NOT NULL,
			value text NOT NULL
		)`)
	if err != nil {
		return errors.Wrap(err, "creating system table")
	}

	_, err = db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_links_card_id ON links(card_id);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_system_key ON system(key);`)
	if err != nil {
		return errors.Wrap(err, "creating indices")
	}

	return nil
}

// GetSystem scans the value for the given key in the system table into dest
func GetSystem(db *DB, key string, dest interface{}) error {
	if err := db.QueryRow("SELECT value FROM system WHERE key = ?", key).Scan(dest); err != nil {
		return errors.Wrapf(err, "querying system value for %s", key)
	}

	return nil
}

// UpsertSystem inserts or updates the value for the given key in the system table
func UpsertSystem(db *DB, key string, value interface{}) error {
	var count int
	if err := db.QueryRow("SELECT count(*) FROM system WHERE key = ?", key).Scan(&count); err != nil {
		return errors.Wrapf(err, "counting %s", key)
	}

	if count == 0 {
		if _, err := db.Exec("INSERT INTO system (key, value) VALUES (?, ?)", key, value); err != nil {
			return errors.Wrapf(err, "inserting %s", key)
		}

		return nil
	}

	if _, err := db.Exec("UPDATE system SET value = ? WHERE key = ?", value, key); err != nil {
		return errors.Wrapf(err, "updating %s", key)
	}

	return nil
}
