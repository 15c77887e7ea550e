package sheetredirect

import (
	"context"
	"database/sql"
	"fmt"
	_ "github.com/mattn/go-sqlite3"
	"os"
)

type sqliteBackend struct {
	db *sql.DB
}

func SqliteOpen(filename string, isWrite bool, nodeId int64) (*sqliteBackend, error) {
	if isWrite && (nodeId < 0 || nodeId > 63) {
		return nil, fmt.Errorf("%v is not a valid snowflake node id", nodeId)
	}
	_, err := os.Stat(filename)
	needInit := false
	if os.IsNotExist(err) && isWrite {
		file, err := os.Create(filename)
		if err != nil {
			return nil, err
		}
		_ = file.Close()
		needInit = true
	} else if err != nil {
		return nil, err
	}
	dsn := "file:" + filename
	if !isWrite {
		dsn += "?mode=ro"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	if needInit {
		_, err = db.Exec(fmt.Sprintf("PRAGMA user_version = %d", nodeId))
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		err = createTables(db)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	s := &sqliteBackend{db}
	dbNodeId, err := s.getNodeId()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if isWrite && dbNodeId != nodeId {
		_ = db.Close()
		return nil, fmt.Errorf("node id is not identical, expected %d, actually got %d", dbNodeId, nodeId)
	}
	return s, nil
}

func createTables(db *sql.DB) error {
	ddl := `CREATE TABLE redirect (
			"id" INTEGER NOT NULL PRIMARY KEY,
			"link" TEXT NOT NULL,
			"redirect" TEXT NOT NULL);`
	_, err := db.Exec(ddl)
	return err
}

func (s *sqliteBackend) FetchRecords(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT link, redirect FROM redirect ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)
	result := make([]Record, 0)
	for rows.Next() {
		var r Record
		if err = rows.Scan(&r.Link, &r.Redirect); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

func (s *sqliteBackend) InsertRecord(entry *RecordEntry) error {
	_, err := s.db.Exec(`INSERT INTO redirect(id, link, redirect) VALUES (?,?,?)`,
		entry.Id, entry.Link, entry.Redirect)
	return err
}

func (s *sqliteBackend) DeleteByLink(link string) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM redirect WHERE link = ?`, link)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *sqliteBackend) QueryAll() ([]RecordEntry, error) {
	rows, err := s.db.Query(`SELECT id, link, redirect FROM redirect ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)
	result := make([]RecordEntry, 0)
	for rows.Next() {
		var entry RecordEntry
		if err = rows.Scan(&entry.Id, &entry.Link, &entry.Redirect); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

// ReplaceAll swaps the whole table contents in a single transaction.
func (s *sqliteBackend) ReplaceAll(entries []RecordEntry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err = tx.Exec(`DELETE FROM redirect`); err != nil {
		_ = tx.Rollback()
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO redirect(id, link, redirect) VALUES (?,?,?)`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer func(stmt *sql.Stmt) {
		_ = stmt.Close()
	}(stmt)
	for _, entry := range entries {
		if _, err = stmt.Exec(entry.Id, entry.Link, entry.Redirect); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (s *sqliteBackend) Close() error {
	return s.db.Close()
}

func (s *sqliteBackend) getNodeId() (int64, error) {
	row, err := s.db.Query(`PRAGMA user_version`)
	if err != nil {
		return 0, err
	}
	defer func(row *sql.Rows) {
		_ = row.Close()
	}(row)
	for row.Next() {
		var userVer int64
		err = row.Scan(&userVer)
		if err != nil {
			return 0, err
		}
		return userVer & 0x3f, nil
	}
	return 0, nil
}
