// ABOUTME: Exercise library CRUD with (name, body part) uniqueness and usage tracking.
// ABOUTME: Deleting a library entry never touches historical workout exercises.
package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/harperreed/gymlog/internal/models"
)

// Library list ordering: most recently used first, never-used entries last,
// then newest first, then id for a stable order.
const libraryOrder = "ORDER BY last_used IS NULL, last_used DESC, created_at DESC, id"

// CreateExercise adds a library entry, generating its id and creation
// timestamp. A duplicate (name, body part) pair fails with ErrConstraint.
func (d *DB) CreateExercise(e *models.Exercise) error {
	if err := validateExerciseName(e.Name); err != nil {
		return err
	}

	db, err := d.conn()
	if err != nil {
		return err
	}

	e.ID = uuid.New()
	e.CreatedAt = time.Now()

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("create exercise: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := checkNameCollision(tx, e.Name, e.BodyPart, uuid.Nil); err != nil {
		return err
	}

	_, err = tx.Exec(
		`INSERT INTO exercises (id, name, body_part, video_url, created_at, last_used)
		 VALUES (?, ?, ?, ?, ?, NULL)`,
		e.ID.String(), e.Name, string(e.BodyPart), e.VideoURL, formatTime(e.CreatedAt),
	)
	if err != nil {
		return wrapWriteErr("create exercise", err)
	}
	return tx.Commit()
}

// GetExercise retrieves a library entry, or (nil, nil) for an unknown id.
func (d *DB) GetExercise(id uuid.UUID) (*models.Exercise, error) {
	db, err := d.conn()
	if err != nil {
		return nil, err
	}

	row := db.QueryRow(
		`SELECT id, name, body_part, video_url, created_at, last_used
		 FROM exercises WHERE id = ?`, id.String(),
	)
	e, err := scanExercise(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get exercise: %w", err)
	}
	return e, nil
}

// ListExercises returns the whole library, most recently used first.
func (d *DB) ListExercises() ([]*models.Exercise, error) {
	return d.listExercises(
		`SELECT id, name, body_part, video_url, created_at, last_used
		 FROM exercises ` + libraryOrder,
	)
}

// ListExercisesByBodyPart filters the library by tag, keeping the
// most-recently-used-first ordering.
func (d *DB) ListExercisesByBodyPart(bp models.BodyPart) ([]*models.Exercise, error) {
	return d.listExercises(
		`SELECT id, name, body_part, video_url, created_at, last_used
		 FROM exercises WHERE body_part = ? `+libraryOrder,
		string(bp),
	)
}

// SearchExercises performs a case-insensitive substring match on name. An
// empty query returns the full library. LIKE wildcards in the query are
// matched literally.
func (d *DB) SearchExercises(query string) ([]*models.Exercise, error) {
	if query == "" {
		return d.ListExercises()
	}
	return d.listExercises(
		`SELECT id, name, body_part, video_url, created_at, last_used
		 FROM exercises WHERE name LIKE '%' || ? || '%' ESCAPE '\' `+libraryOrder,
		escapeLike(query),
	)
}

// escapeLike neutralizes LIKE pattern characters so queries match literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func (d *DB) listExercises(query string, args ...interface{}) ([]*models.Exercise, error) {
	db, err := d.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	defer rows.Close()

	var exercises []*models.Exercise
	for rows.Next() {
		e, err := scanExercise(rows)
		if err != nil {
			return nil, fmt.Errorf("list exercises: %w", err)
		}
		exercises = append(exercises, e)
	}
	return exercises, rows.Err()
}

// ExerciseUpdate carries the fields to change on a library entry. Nil fields
// are left untouched; an empty VideoURL clears the stored URL.
type ExerciseUpdate struct {
	Name     *string
	BodyPart *models.BodyPart
	VideoURL *string
}

// UpdateExercise applies a partial update, preserving the original creation
// timestamp. Renaming into another entry's (name, body part) pair fails with
// ErrConstraint; an unknown id fails with ErrNotFound.
func (d *DB) UpdateExercise(id uuid.UUID, upd ExerciseUpdate) (*models.Exercise, error) {
	if upd.Name != nil {
		if err := validateExerciseName(*upd.Name); err != nil {
			return nil, err
		}
	}

	db, err := d.conn()
	if err != nil {
		return nil, err
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("update exercise: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var name, bodyPart string
	err = tx.QueryRow(
		`SELECT name, body_part FROM exercises WHERE id = ?`, id.String(),
	).Scan(&name, &bodyPart)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("update exercise %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update exercise: %w", err)
	}

	if upd.Name != nil {
		name = *upd.Name
	}
	if upd.BodyPart != nil {
		bodyPart = string(*upd.BodyPart)
	}

	if err := checkNameCollision(tx, name, models.BodyPart(bodyPart), id); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(
		`UPDATE exercises SET name = ?, body_part = ? WHERE id = ?`,
		name, bodyPart, id.String(),
	); err != nil {
		return nil, wrapWriteErr("update exercise", err)
	}

	if upd.VideoURL != nil {
		var url *string
		if *upd.VideoURL != "" {
			url = upd.VideoURL
		}
		if _, err := tx.Exec(
			`UPDATE exercises SET video_url = ? WHERE id = ?`, url, id.String(),
		); err != nil {
			return nil, wrapWriteErr("update exercise", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("update exercise: %w", err)
	}
	return d.GetExercise(id)
}

// DeleteExercise removes a library entry. Historical workout exercises keep
// their denormalized name and body part; only their library reference is
// nulled out by the schema.
func (d *DB) DeleteExercise(id uuid.UUID) error {
	db, err := d.conn()
	if err != nil {
		return err
	}

	result, err := db.Exec(`DELETE FROM exercises WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete exercise: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete exercise: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete exercise %s: %w", id, ErrNotFound)
	}
	return nil
}

// MarkExerciseUsed stamps the last-used timestamp on the first entry
// matching the name (oldest entry first when several body parts share a
// name). A name matching nothing is a silent no-op.
func (d *DB) MarkExerciseUsed(name string) error {
	db, err := d.conn()
	if err != nil {
		return err
	}

	_, err = db.Exec(
		`UPDATE exercises SET last_used = ?
		 WHERE id = (SELECT id FROM exercises WHERE name = ? COLLATE NOCASE
		             ORDER BY created_at, id LIMIT 1)`,
		formatTime(time.Now()), name,
	)
	if err != nil {
		return fmt.Errorf("mark exercise used: %w", err)
	}
	return nil
}

// checkNameCollision fails with ErrConstraint when another entry already
// holds the (name, body part) pair. The UNIQUE index backstops this check.
func checkNameCollision(tx *sql.Tx, name string, bp models.BodyPart, selfID uuid.UUID) error {
	var existing string
	err := tx.QueryRow(
		`SELECT id FROM exercises WHERE name = ? AND body_part = ?`,
		name, string(bp),
	).Scan(&existing)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("check exercise uniqueness: %w", err)
	}
	if existing == selfID.String() {
		return nil
	}
	return fmt.Errorf("exercise %q (%s) already exists: %w", name, bp, ErrConstraint)
}

func validateExerciseName(name string) error {
	n := utf8.RuneCountInString(name)
	if n < 1 || n > 100 {
		return fmt.Errorf("exercise name must be 1-100 characters: %w", ErrConstraint)
	}
	return nil
}

func scanExercise(row rowScanner) (*models.Exercise, error) {
	var e models.Exercise
	var idStr, bodyPart, createdAt string
	var videoURL sql.NullString
	var lastUsed sql.NullString

	err := row.Scan(&idStr, &e.Name, &bodyPart, &videoURL, &createdAt, &lastUsed)
	if err != nil {
		return nil, err
	}

	e.ID, _ = uuid.Parse(idStr)
	e.BodyPart = models.BodyPart(bodyPart)
	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if videoURL.Valid {
		e.VideoURL = &videoURL.String
	}
	if lastUsed.Valid {
		t, err := parseTime(lastUsed.String)
		if err != nil {
			return nil, err
		}
		e.LastUsed = &t
	}
	return &e, nil
}
