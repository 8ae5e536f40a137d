// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/custodyd/blockrecord"
	"github.com/bitmark-inc/custodyd/fault"
)

const sqliteSchemaVersion = 1

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS blocks (
	block_index   INTEGER PRIMARY KEY,
	timestamp     TEXT NOT NULL,
	user_id       TEXT NOT NULL,
	action        TEXT NOT NULL,
	subject_id    TEXT NOT NULL,
	changes       BLOB NOT NULL,
	previous_hash CHAR(64) NOT NULL,
	current_hash  CHAR(64) NOT NULL
);
CREATE INDEX IF NOT EXISTS blocks_subject ON blocks (subject_id, block_index);
`

const sqliteColumns = `block_index, timestamp, user_id, action, subject_id, changes, previous_hash, current_hash`

// SQLite - a custody chain held in an SQLite database
type SQLite struct {
	log *logger.L
	db  *sql.DB
}

// OpenSQLite - open or create an SQLite custody database
func OpenSQLite(name string, readOnly bool) (*SQLite, error) {
	log := logger.New("storage")

	dsn := "file:" + name + "?_journal_mode=WAL&_synchronous=FULL&_busy_timeout=5000"
	if readOnly {
		dsn = "file:" + name + "?mode=ro&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dsn)
	if nil != err {
		return nil, fmt.Errorf("%w: open: %q: %s", fault.ErrStorageRead, name, err)
	}

	var version int
	if err := db.QueryRow(`PRAGMA user_version`).Scan(&version); nil != err {
		db.Close()
		return nil, fmt.Errorf("%w: open: %q: %s", fault.ErrStorageRead, name, err)
	}

	if version > sqliteSchemaVersion || (readOnly && version != sqliteSchemaVersion) {
		log.Criticalf("database version: %d  current: %d", version, sqliteSchemaVersion)
		db.Close()
		return nil, fault.ErrIncompatibleDatabase
	}

	if !readOnly {
		if _, err := db.Exec(sqliteSchema); nil != err {
			db.Close()
			return nil, fmt.Errorf("%w: schema: %s", fault.ErrStorageWrite, err)
		}
		if _, err := db.Exec(fmt.Sprintf(`PRAGMA user_version = %d`, sqliteSchemaVersion)); nil != err {
			db.Close()
			return nil, fmt.Errorf("%w: version: %s", fault.ErrStorageWrite, err)
		}
	}

	log.Infof("opened: %q  read only: %v", name, readOnly)
	return &SQLite{
		log: log,
		db:  db,
	}, nil
}

// Close - close the database connection
func (s *SQLite) Close() error {
	s.log.Info("closed")
	s.log.Flush()
	return s.db.Close()
}

// Commit - insert one block row in a single transaction
func (s *SQLite) Commit(block *blockrecord.Block) error {
	changes, err := encodeChanges(block.Changes)
	if nil != err {
		return err
	}

	tx, err := s.db.Begin()
	if nil != err {
		return fmt.Errorf("%w: begin: %s", fault.ErrStorageWrite, err)
	}

	_, err = tx.Exec(
		`INSERT INTO blocks (`+sqliteColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		int64(block.Index),
		blockrecord.FormatTimestamp(block.Timestamp),
		block.UserID,
		string(block.Action),
		block.SubjectID,
		changes,
		block.PreviousHash.String(),
		block.CurrentHash.String(),
	)
	if nil != err {
		tx.Rollback()
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqlite3.ErrConstraint == sqliteErr.Code {
			return fault.ErrBlockExists
		}
		return fmt.Errorf("%w: insert: %s", fault.ErrStorageWrite, err)
	}

	if err := tx.Commit(); nil != err {
		return fmt.Errorf("%w: commit: %s", fault.ErrStorageWrite, err)
	}
	return nil
}

// Last - the highest indexed block, nil if the database is empty
func (s *SQLite) Last() (*blockrecord.Block, error) {
	row := s.db.QueryRow(`SELECT ` + sqliteColumns + ` FROM blocks ORDER BY block_index DESC LIMIT 1`)
	block, err := scanBlock(row)
	if sql.ErrNoRows == err {
		return nil, nil
	}
	return block, err
}

// Get - a single block by index
func (s *SQLite) Get(index uint64) (*blockrecord.Block, error) {
	if index > MaximumIndex {
		return nil, fault.ErrBlockNotFound
	}
	row := s.db.QueryRow(`SELECT `+sqliteColumns+` FROM blocks WHERE block_index = ?`, int64(index))
	block, err := scanBlock(row)
	if sql.ErrNoRows == err {
		return nil, fault.ErrBlockNotFound
	}
	return block, err
}

// Range - blocks from..to inclusive in index order
func (s *SQLite) Range(from uint64, to uint64, f func(*blockrecord.Block) error) error {
	if from > to || from > MaximumIndex {
		return nil
	}
	if to > MaximumIndex {
		to = MaximumIndex
	}
	return s.query(f,
		`SELECT `+sqliteColumns+` FROM blocks WHERE block_index BETWEEN ? AND ? ORDER BY block_index`,
		int64(from), int64(to))
}

// Subject - blocks of one subject with index from..to inclusive
func (s *SQLite) Subject(subjectID string, from uint64, to uint64, f func(*blockrecord.Block) error) error {
	if from > to || from > MaximumIndex {
		return nil
	}
	if to > MaximumIndex {
		to = MaximumIndex
	}
	return s.query(f,
		`SELECT `+sqliteColumns+` FROM blocks WHERE subject_id = ? AND block_index BETWEEN ? AND ? ORDER BY block_index`,
		subjectID, int64(from), int64(to))
}

// run a query, decode all rows, then pass them to f
func (s *SQLite) query(f func(*blockrecord.Block) error, statement string, arguments ...interface{}) error {
	rows, err := s.db.Query(statement, arguments...)
	if nil != err {
		return fmt.Errorf("%w: %s", fault.ErrStorageRead, err)
	}

	var blocks []*blockrecord.Block
	for rows.Next() {
		block, err := scanBlock(rows)
		if nil != err {
			rows.Close()
			return err
		}
		blocks = append(blocks, block)
	}
	err = rows.Err()
	rows.Close()
	if nil != err {
		return fmt.Errorf("%w: %s", fault.ErrStorageRead, err)
	}

	for _, block := range blocks {
		if err := f(block); nil != err {
			return err
		}
	}
	return nil
}

// either *sql.Row or *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanBlock(row scanner) (*blockrecord.Block, error) {
	var (
		index     int64
		timestamp string
		userID    string
		action    string
		subjectID string
		changes   []byte
		previous  string
		current   string
	)
	err := row.Scan(&index, &timestamp, &userID, &action, &subjectID, &changes, &previous, &current)
	if sql.ErrNoRows == err {
		return nil, err
	}
	if nil != err {
		return nil, fmt.Errorf("%w: %s", fault.ErrStorageRead, err)
	}

	t, err := blockrecord.ParseTimestamp(timestamp)
	if nil != err {
		return nil, fmt.Errorf("%w: timestamp: %s", fault.ErrInvalidStoredBlock, err)
	}
	c, err := decodeChanges(changes)
	if nil != err {
		return nil, err
	}
	return assemble(uint64(index), t, userID, action, subjectID, c, previous, current)
}
