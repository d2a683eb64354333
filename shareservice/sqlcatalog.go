/*
Copyright (C) 2024  Carl-Philip Hänsch

    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU General Public License as published by
    the Free Software Foundation, either version 3 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU General Public License
    along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package shareservice

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"

	"github.com/cc-hpc-itwm/mcs/storageid"
)

// SQLCatalog is the durable Catalog backed by database/sql, so a
// restarted share service recovers its name table instead of starting
// empty. The driver is chosen from dsn's scheme: "postgres://..." picks
// lib/pq, anything else is handed to the mysql driver as a DSN.
type SQLCatalog struct {
	db       *sql.DB
	postgres bool
}

// OpenSQLCatalog connects to dsn and ensures the catalog table exists.
func OpenSQLCatalog(dsn string) (*SQLCatalog, error) {
	driver := "mysql"
	postgres := strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
	if postgres {
		driver = "postgres"
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("shareservice: open %s catalog: %w", driver, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("shareservice: ping %s catalog: %w", driver, err)
	}

	c := &SQLCatalog{db: db, postgres: postgres}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS mcs_share_entries (
		name VARCHAR(255) PRIMARY KEY,
		storage_id BIGINT NOT NULL,
		segment_id BIGINT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("shareservice: create catalog table: %w", err)
	}
	return c, nil
}

func (c *SQLCatalog) Close() error { return c.db.Close() }

// placeholders returns the n positional placeholders for the driver in
// use: lib/pq wants $1, $2, ...; the mysql driver wants plain ?.
func (c *SQLCatalog) placeholders(n int) []string {
	out := make([]string, n)
	for i := range out {
		if c.postgres {
			out[i] = fmt.Sprintf("$%d", i+1)
		} else {
			out[i] = "?"
		}
	}
	return out
}

func (c *SQLCatalog) Put(name string, entry shareEntry) error {
	ph := c.placeholders(3)
	_, err := c.db.Exec(
		fmt.Sprintf(`INSERT INTO mcs_share_entries (name, storage_id, segment_id) VALUES (%s, %s, %s)`, ph[0], ph[1], ph[2]),
		name, uint64(entry.Storage), uint64(entry.Segment),
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateName{Name: name}
		}
		return fmt.Errorf("shareservice: put %q: %w", name, err)
	}
	return nil
}

func (c *SQLCatalog) Get(name string) (shareEntry, error) {
	ph := c.placeholders(1)
	var storageID, segmentID uint64
	err := c.db.QueryRow(
		fmt.Sprintf(`SELECT storage_id, segment_id FROM mcs_share_entries WHERE name = %s`, ph[0]), name,
	).Scan(&storageID, &segmentID)
	if err == sql.ErrNoRows {
		return shareEntry{}, ErrUnknownName{Name: name}
	}
	if err != nil {
		return shareEntry{}, fmt.Errorf("shareservice: get %q: %w", name, err)
	}
	return shareEntry{Storage: storageid.ID(storageID), Segment: storageid.SegmentID(segmentID)}, nil
}

func (c *SQLCatalog) Delete(name string) error {
	ph := c.placeholders(1)
	res, err := c.db.Exec(fmt.Sprintf(`DELETE FROM mcs_share_entries WHERE name = %s`, ph[0]), name)
	if err != nil {
		return fmt.Errorf("shareservice: delete %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("shareservice: delete %q: %w", name, err)
	}
	if n == 0 {
		return ErrUnknownName{Name: name}
	}
	return nil
}

// isDuplicateKeyError recognizes the two drivers' distinct
// duplicate-primary-key error text, since database/sql has no portable
// error type for it.
func isDuplicateKeyError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "duplicate key value")
}
