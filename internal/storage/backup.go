// ABOUTME: Full-store backup export and atomic import/restore.
// ABOUTME: Exports one self-describing JSON document; import is all-or-nothing.
package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/harperreed/gymlog/internal/models"
	"gopkg.in/yaml.v3"
)

const (
	backupTool          = "gymlog"
	backupFormatVersion = 1
)

// BackupData is the transportable document holding the full logical contents
// of the store. It round-trips losslessly through export and import.
type BackupData struct {
	Tool          string                    `json:"tool" yaml:"tool"`
	FormatVersion int                       `json:"format_version" yaml:"format_version"`
	SchemaVersion int                       `json:"schema_version" yaml:"schema_version"`
	ExportedAt    time.Time                 `json:"exported_at" yaml:"exported_at"`
	Sessions      []*models.WorkoutSession  `json:"sessions" yaml:"sessions"`
	Library       []*models.Exercise        `json:"library" yaml:"library"`
}

// GetAllData assembles the full backup document: every session hydrated with
// its exercises and sets, plus the exercise library.
func (d *DB) GetAllData() (*BackupData, error) {
	sessions, err := d.ListSessions()
	if err != nil {
		return nil, fmt.Errorf("export sessions: %w", err)
	}

	library, err := d.ListExercises()
	if err != nil {
		return nil, fmt.Errorf("export library: %w", err)
	}

	version, err := d.SchemaVersion()
	if err != nil {
		return nil, fmt.Errorf("export schema version: %w", err)
	}

	return &BackupData{
		Tool:          backupTool,
		FormatVersion: backupFormatVersion,
		SchemaVersion: version,
		ExportedAt:    time.Now(),
		Sessions:      sessions,
		Library:       library,
	}, nil
}

// ExportJSON serializes the entire store as an indented JSON document.
func (d *DB) ExportJSON() ([]byte, error) {
	data, err := d.GetAllData()
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

// ExportYAML serializes the entire store as YAML, for human-readable backups.
func (d *DB) ExportYAML() ([]byte, error) {
	data, err := d.GetAllData()
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(data)
}

// ImportJSON replaces the store's contents with the backup document. The
// document is validated before any transaction opens; the destructive
// replace itself runs in one transaction, so a failing import leaves the
// store exactly as it was.
func (d *DB) ImportJSON(doc []byte) error {
	var data BackupData
	if err := json.Unmarshal(doc, &data); err != nil {
		return fmt.Errorf("parse backup document: %v: %w", err, ErrInvalidFormat)
	}
	if data.Tool != backupTool || data.FormatVersion != backupFormatVersion {
		return fmt.Errorf("unrecognized backup document (tool %q, format %d): %w",
			data.Tool, data.FormatVersion, ErrInvalidFormat)
	}
	for i, s := range data.Sessions {
		if s == nil {
			return fmt.Errorf("backup document: null session entry at index %d: %w", i, ErrInvalidFormat)
		}
	}
	for i, e := range data.Library {
		if e == nil {
			return fmt.Errorf("backup document: null library entry at index %d: %w", i, ErrInvalidFormat)
		}
	}

	db, err := d.conn()
	if err != nil {
		return err
	}

	if data.SchemaVersion != 0 {
		current, err := currentVersion(db)
		if err != nil {
			return err
		}
		if data.SchemaVersion != current {
			return fmt.Errorf("backup schema version %d does not match store version %d: %w",
				data.SchemaVersion, current, ErrInvalidFormat)
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := clearDataTables(tx); err != nil {
		return fmt.Errorf("import: %w", err)
	}

	// Library first so session exercise references resolve.
	for _, e := range data.Library {
		_, err := tx.Exec(
			`INSERT INTO exercises (id, name, body_part, video_url, created_at, last_used)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			e.ID.String(), e.Name, string(e.BodyPart), e.VideoURL,
			formatTime(e.CreatedAt), nullableTime(e.LastUsed),
		)
		if err != nil {
			return wrapWriteErr("import library entry", err)
		}
	}

	for _, s := range data.Sessions {
		if err := insertSessionRows(tx, s); err != nil {
			return fmt.Errorf("import session %s: %w", s.ID, err)
		}
	}

	return tx.Commit()
}

func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}
