package palnorm

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// ReportDB stores batch reports in a SQLite database.
type ReportDB struct {
	db *sql.DB
}

// Run describes one recorded batch.
type Run struct {
	ID      int64
	Source  string
	Started time.Time
}

// NewReportDB opens, creating if necessary, the database in file.
func NewReportDB(file string) (*ReportDB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS run (id INTEGER PRIMARY KEY NOT NULL, source TEXT NOT NULL, started TEXT NOT NULL)"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS result (id INTEGER PRIMARY KEY NOT NULL, run_id INTEGER NOT NULL, collection TEXT NOT NULL, name TEXT NOT NULL, status INTEGER NOT NULL, error TEXT, artifacts TEXT NOT NULL, FOREIGN KEY(run_id) REFERENCES run(id))"); err != nil {
		db.Close()
		return nil, err
	}

	return &ReportDB{
		db: db,
	}, nil
}

// Close closes the database.
func (db *ReportDB) Close() error {
	return db.db.Close()
}

// Record stores every result in r as a new run and returns its ID.
func (db *ReportDB) Record(source string, r *Report) (int64, error) {
	tx, err := db.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	result, err := tx.Exec("INSERT INTO run (source, started) VALUES (?, ?)", source, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, res := range r.Results {
		var msg sql.NullString
		if res.Err != nil {
			msg.String = res.Err.Error()
			msg.Valid = true
		}
		if _, err := tx.Exec("INSERT INTO result (run_id, collection, name, status, error, artifacts) VALUES (?, ?, ?, ?, ?, ?)", id, res.Collection, res.Name, int(res.Status), msg, strings.Join(res.Artifacts, "\n")); err != nil {
			return 0, err
		}
	}

	return id, tx.Commit()
}

// LastRun returns the most recently recorded run. It returns nil if nothing
// has been recorded yet.
func (db *ReportDB) LastRun() (*Run, error) {
	var run Run
	var started string
	switch err := db.db.QueryRow("SELECT id, source, started FROM run ORDER BY id DESC LIMIT 1").Scan(&run.ID, &run.Source, &started); err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		t, err := time.Parse(time.RFC3339Nano, started)
		if err != nil {
			return nil, err
		}
		run.Started = t
		return &run, nil
	default:
		return nil, err
	}
}

// Results returns the report recorded for the given run.
func (db *ReportDB) Results(run int64) (*Report, error) {
	rows, err := db.db.Query("SELECT collection, name, status, error, artifacts FROM result WHERE run_id = ? ORDER BY id", run)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	r := new(Report)
	for rows.Next() {
		var res Result
		var status int
		var msg sql.NullString
		var artifacts string
		if err := rows.Scan(&res.Collection, &res.Name, &status, &msg, &artifacts); err != nil {
			return nil, err
		}
		res.Status = Status(status)
		if msg.Valid {
			res.Err = errors.New(msg.String)
		}
		if artifacts != "" {
			res.Artifacts = strings.Split(artifacts, "\n")
		}
		r.add(res)
	}

	return r, rows.Err()
}
