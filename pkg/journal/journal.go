// Copyright (c) 2017 Intel Corporation
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package journal

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/hpc-bench/benchsweep/pkg/results"
	"github.com/hpc-bench/benchsweep/pkg/scheduler"
	"github.com/hpc-bench/benchsweep/pkg/sweep"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	// Pure Go SQLite driver.
	_ "modernc.org/sqlite"
)

const timeLayout = time.RFC3339Nano

var schema = []string{
	`CREATE TABLE IF NOT EXISTS run_flags (
  run_id TEXT NOT NULL,
  app    TEXT NOT NULL,
  name   TEXT NOT NULL,
  value  TEXT,
  PRIMARY KEY (run_id, name)
);`,
	`CREATE TABLE IF NOT EXISTS submissions (
  id           INTEGER PRIMARY KEY AUTOINCREMENT,
  run_id       TEXT NOT NULL,
  family       TEXT,
  variant      TEXT,
  job_name     TEXT,
  parameters   TEXT,
  descriptor   TEXT,
  status       TEXT,
  job_id       TEXT,
  output       TEXT,
  submitted_at TEXT
);`,
	`CREATE INDEX IF NOT EXISTS submissions_run_id ON submissions (run_id);`,
	`CREATE TABLE IF NOT EXISTS results (
  id     INTEGER PRIMARY KEY AUTOINCREMENT,
  family TEXT NOT NULL,
  kind   TEXT,
  cores  INTEGER,
  size   INTEGER,
  time   REAL,
  speed  REAL
);`,
}

// Journal is a sqlite ledger of runs, submissions and aggregated results.
type Journal struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the journal at path.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrapf(err, "cannot create journal directory for %q", path)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open journal %q", path)
	}
	// A single connection serialises writers of the sqlite file.
	db.SetMaxOpenConns(1)

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, errors.Wrapf(err, "cannot initialise journal %q", path)
		}
	}

	log.Debugf("Journal opened at %q", path)
	return &Journal{db: db, now: time.Now}, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// RecordFlags stores configuration of a run.
func (j *Journal) RecordFlags(runID, app string, flags map[string]string) error {
	tx, err := j.db.Begin()
	if err != nil {
		return errors.Wrap(err, "cannot begin transaction")
	}
	defer tx.Rollback()

	for name, value := range flags {
		if _, err := tx.Exec(`INSERT OR REPLACE INTO run_flags (run_id, app, name, value) VALUES (?, ?, ?, ?)`,
			runID, app, name, value); err != nil {
			return errors.Wrapf(err, "cannot record flag %q of run %q", name, runID)
		}
	}
	return errors.Wrapf(tx.Commit(), "cannot record flags of run %q", runID)
}

// Flags returns configuration recorded for a run.
func (j *Journal) Flags(runID string) (map[string]string, error) {
	rows, err := j.db.Query(`SELECT name, value FROM run_flags WHERE run_id = ?`, runID)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot query flags of run %q", runID)
	}
	defer rows.Close()

	flags := map[string]string{}
	for rows.Next() {
		var name string
		var value sql.NullString
		if err := rows.Scan(&name, &value); err != nil {
			return nil, errors.Wrapf(err, "cannot read flags of run %q", runID)
		}
		flags[name] = value.String
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "cannot read flags of run %q", runID)
	}
	if len(flags) == 0 {
		return nil, errors.Errorf("no flags recorded for run %q", runID)
	}
	return flags, nil
}

// Submission is a recorded submit call.
type Submission struct {
	RunID string
	sweep.Entry
	// Descriptor is the staged job script.
	Descriptor  string
	SubmittedAt time.Time
}

// RecordSubmission stores a sweep entry together with its staged descriptor.
func (j *Journal) RecordSubmission(runID string, entry sweep.Entry) error {
	descriptor, err := os.ReadFile(entry.Path)
	if err != nil {
		log.Warnf("Cannot read descriptor %q for journal: %v", entry.Path, err)
	}

	_, err = j.db.Exec(`INSERT INTO submissions
  (run_id, family, variant, job_name, parameters, descriptor, status, job_id, output, submitted_at)
  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, entry.Family, entry.Variant, entry.JobName, entry.Parameters, string(descriptor),
		string(entry.Status), entry.JobID, entry.Output, j.now().UTC().Format(timeLayout))
	return errors.Wrapf(err, "cannot record submission of %q", entry.JobName)
}

// Submissions returns submissions of a run in submission order.
func (j *Journal) Submissions(runID string) ([]Submission, error) {
	rows, err := j.db.Query(`SELECT family, variant, job_name, parameters, descriptor, status, job_id, output, submitted_at
  FROM submissions WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot query submissions of run %q", runID)
	}
	defer rows.Close()

	var submissions []Submission
	for rows.Next() {
		var (
			submission  = Submission{RunID: runID}
			status      string
			submittedAt string
		)
		if err := rows.Scan(&submission.Family, &submission.Variant, &submission.JobName, &submission.Parameters,
			&submission.Descriptor, &status, &submission.JobID, &submission.Output, &submittedAt); err != nil {
			return nil, errors.Wrapf(err, "cannot read submissions of run %q", runID)
		}
		submission.Status = scheduler.Status(status)
		if submission.SubmittedAt, err = time.Parse(timeLayout, submittedAt); err != nil {
			return nil, errors.Wrapf(err, "malformed submission time %q", submittedAt)
		}
		submissions = append(submissions, submission)
	}
	return submissions, errors.Wrapf(rows.Err(), "cannot read submissions of run %q", runID)
}

// ReplaceResults rewrites aggregated rows of a family in one transaction.
func (j *Journal) ReplaceResults(family string, rows []results.Row) error {
	tx, err := j.db.Begin()
	if err != nil {
		return errors.Wrap(err, "cannot begin transaction")
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM results WHERE family = ?`, family); err != nil {
		return errors.Wrapf(err, "cannot clear results of %q", family)
	}

	stmt, err := tx.Prepare(`INSERT INTO results (family, kind, cores, size, time, speed) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "cannot prepare results insert")
	}
	defer stmt.Close()

	for _, row := range rows {
		speed := sql.NullFloat64{Float64: row.Speed, Valid: row.HasSpeed}
		if _, err := stmt.Exec(family, row.Kind, row.Cores, row.Size, row.Time, speed); err != nil {
			return errors.Wrapf(err, "cannot record row %q", row.String())
		}
	}
	return errors.Wrapf(tx.Commit(), "cannot record results of %q", family)
}

// Results returns aggregated rows of a family in table order.
func (j *Journal) Results(family string) ([]results.Row, error) {
	rows, err := j.db.Query(`SELECT kind, cores, size, time, speed FROM results WHERE family = ? ORDER BY id`, family)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot query results of %q", family)
	}
	defer rows.Close()

	var rowsRead []results.Row
	for rows.Next() {
		var row results.Row
		var speed sql.NullFloat64
		if err := rows.Scan(&row.Kind, &row.Cores, &row.Size, &row.Time, &speed); err != nil {
			return nil, errors.Wrapf(err, "cannot read results of %q", family)
		}
		row.Speed, row.HasSpeed = speed.Float64, speed.Valid
		rowsRead = append(rowsRead, row)
	}
	return rowsRead, errors.Wrapf(rows.Err(), "cannot read results of %q", family)
}
