// ABOUTME: Workout session CRUD with nested exercises and sets.
// ABOUTME: Multi-row mutations run in one transaction; cascade delete removes children.
package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/gymlog/internal/models"
)

// Session list ordering: date descending, then created_at descending, then
// id, so sessions sharing a date come back in a stable order.
const sessionOrder = "ORDER BY date DESC, created_at DESC, id"

// CreateSession persists a session with its exercises and sets as one atomic
// unit. Fresh ids are generated for every row, creation and last-modified
// timestamps are stamped to the same value, and each exercise's max weight is
// derived from its sets. The passed struct is updated in place.
func (d *DB) CreateSession(s *models.WorkoutSession) error {
	db, err := d.conn()
	if err != nil {
		return err
	}

	now := time.Now()
	s.ID = uuid.New()
	s.CreatedAt = now
	s.UpdatedAt = now
	prepareExercises(s)

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := insertSessionRows(tx, s); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return tx.Commit()
}

// prepareExercises regenerates ids, rewires parent references, normalizes
// order indices to slice position, and recomputes derived max weights.
func prepareExercises(s *models.WorkoutSession) {
	for i := range s.Exercises {
		e := &s.Exercises[i]
		e.ID = uuid.New()
		e.SessionID = s.ID
		e.OrderIndex = i
		for j := range e.Sets {
			st := &e.Sets[j]
			st.ID = uuid.New()
			st.ExerciseID = e.ID
			st.OrderIndex = j
			if st.CompletedAt.IsZero() {
				st.CompletedAt = time.Now()
			}
		}
		e.MaxWeight = e.ComputeMaxWeight()
	}
}

// insertSessionRows writes a session and its children exactly as given,
// preserving ids. Backup import relies on this to round-trip.
func insertSessionRows(tx *sql.Tx, s *models.WorkoutSession) error {
	_, err := tx.Exec(
		`INSERT INTO workout_sessions (id, date, total_time, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		s.ID.String(), formatTime(s.Date), s.TotalTime,
		formatTime(s.CreatedAt), formatTime(s.UpdatedAt),
	)
	if err != nil {
		return wrapWriteErr("insert session", err)
	}

	for i := range s.Exercises {
		if err := insertExerciseRows(tx, &s.Exercises[i]); err != nil {
			return err
		}
	}
	return nil
}

func insertExerciseRows(tx *sql.Tx, e *models.WorkoutExercise) error {
	var libRef *string
	if e.ExerciseID != nil {
		ref := e.ExerciseID.String()
		libRef = &ref
	}

	_, err := tx.Exec(
		`INSERT INTO workout_exercises
		 (id, session_id, exercise_id, exercise_name, body_part, max_weight, order_index)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID.String(), e.SessionID.String(), libRef,
		e.ExerciseName, string(e.BodyPart), e.MaxWeight, e.OrderIndex,
	)
	if err != nil {
		return wrapWriteErr("insert exercise", err)
	}

	for _, st := range e.Sets {
		_, err := tx.Exec(
			`INSERT INTO sets (id, exercise_id, weight, reps, completed_at, order_index)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			st.ID.String(), st.ExerciseID.String(), st.Weight, st.Reps,
			formatTime(st.CompletedAt), st.OrderIndex,
		)
		if err != nil {
			return wrapWriteErr("insert set", err)
		}
	}
	return nil
}

// GetSession retrieves a fully hydrated session, or (nil, nil) when the id
// is unknown. Lookups never fail on a missing id.
func (d *DB) GetSession(id uuid.UUID) (*models.WorkoutSession, error) {
	db, err := d.conn()
	if err != nil {
		return nil, err
	}

	row := db.QueryRow(
		`SELECT id, date, total_time, created_at, updated_at
		 FROM workout_sessions WHERE id = ?`, id.String(),
	)
	s, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if err := d.hydrateSession(db, s); err != nil {
		return nil, err
	}
	return s, nil
}

// ListSessions returns every session, most recent date first, hydrated with
// exercises and sets in stored order.
func (d *DB) ListSessions() ([]*models.WorkoutSession, error) {
	return d.listSessions(
		`SELECT id, date, total_time, created_at, updated_at
		 FROM workout_sessions `+sessionOrder,
	)
}

// ListSessionsByDateRange returns hydrated sessions with dates between start
// and end, inclusive on both ends.
func (d *DB) ListSessionsByDateRange(start, end time.Time) ([]*models.WorkoutSession, error) {
	return d.listSessions(
		`SELECT id, date, total_time, created_at, updated_at
		 FROM workout_sessions WHERE date >= ? AND date <= ? `+sessionOrder,
		formatTime(start), formatTime(end),
	)
}

func (d *DB) listSessions(query string, args ...interface{}) ([]*models.WorkoutSession, error) {
	db, err := d.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.WorkoutSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("list sessions: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	for _, s := range sessions {
		if err := d.hydrateSession(db, s); err != nil {
			return nil, err
		}
	}
	return sessions, nil
}

// SessionUpdate carries the fields to change on a session. Nil fields are
// left untouched. A non-nil Exercises slice replaces the session's whole
// exercise collection, old sets included.
type SessionUpdate struct {
	Date      *time.Time
	TotalTime *int
	Exercises []models.WorkoutExercise
}

// UpdateSession applies a partial update and returns the hydrated result.
// The last-modified timestamp always advances strictly past its previous
// value so callers can diff on it.
func (d *DB) UpdateSession(id uuid.UUID, upd SessionUpdate) (*models.WorkoutSession, error) {
	db, err := d.conn()
	if err != nil {
		return nil, err
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var prevUpdated string
	err = tx.QueryRow(
		`SELECT updated_at FROM workout_sessions WHERE id = ?`, id.String(),
	).Scan(&prevUpdated)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("update session %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}

	prev, err := parseTime(prevUpdated)
	if err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}
	updatedAt := time.Now()
	if !updatedAt.After(prev) {
		updatedAt = prev.Add(time.Nanosecond)
	}

	if upd.Date != nil {
		if _, err := tx.Exec(
			`UPDATE workout_sessions SET date = ? WHERE id = ?`,
			formatTime(*upd.Date), id.String(),
		); err != nil {
			return nil, wrapWriteErr("update session date", err)
		}
	}
	if upd.TotalTime != nil {
		if _, err := tx.Exec(
			`UPDATE workout_sessions SET total_time = ? WHERE id = ?`,
			*upd.TotalTime, id.String(),
		); err != nil {
			return nil, wrapWriteErr("update session time", err)
		}
	}

	if upd.Exercises != nil {
		// Replace, not merge: drop the old collection (cascade takes the
		// sets with it) and reinsert the supplied one with fresh ids.
		if _, err := tx.Exec(
			`DELETE FROM workout_exercises WHERE session_id = ?`, id.String(),
		); err != nil {
			return nil, fmt.Errorf("replace exercises: %w", err)
		}

		replacement := &models.WorkoutSession{ID: id, Exercises: upd.Exercises}
		prepareExercises(replacement)
		for i := range replacement.Exercises {
			if err := insertExerciseRows(tx, &replacement.Exercises[i]); err != nil {
				return nil, err
			}
		}
	}

	if _, err := tx.Exec(
		`UPDATE workout_sessions SET updated_at = ? WHERE id = ?`,
		formatTime(updatedAt), id.String(),
	); err != nil {
		return nil, wrapWriteErr("update session", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}
	return d.GetSession(id)
}

// DeleteSession removes a session and, via cascade, every owned exercise and
// set. Returns ErrNotFound for an unknown id.
func (d *DB) DeleteSession(id uuid.UUID) error {
	db, err := d.conn()
	if err != nil {
		return err
	}

	result, err := db.Exec(`DELETE FROM workout_sessions WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete session %s: %w", id, ErrNotFound)
	}
	return nil
}

// PreviousMaxWeight returns the heaviest derived max weight recorded for the
// named exercise across all sessions, or nil when there is no history. Name
// matching is case-insensitive for ASCII letters and exact otherwise.
func (d *DB) PreviousMaxWeight(exerciseName string) (*float64, error) {
	db, err := d.conn()
	if err != nil {
		return nil, err
	}

	var max sql.NullFloat64
	err = db.QueryRow(
		`SELECT MAX(max_weight) FROM workout_exercises
		 WHERE exercise_name = ? COLLATE NOCASE`,
		exerciseName,
	).Scan(&max)
	if err != nil {
		return nil, fmt.Errorf("previous max weight: %w", err)
	}
	if !max.Valid {
		return nil, nil
	}
	return &max.Float64, nil
}

// hydrateSession loads a session's exercises and their sets in stored order.
func (d *DB) hydrateSession(db *sql.DB, s *models.WorkoutSession) error {
	rows, err := db.Query(
		`SELECT id, session_id, exercise_id, exercise_name, body_part, max_weight, order_index
		 FROM workout_exercises WHERE session_id = ? ORDER BY order_index, id`,
		s.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("load exercises: %w", err)
	}
	defer rows.Close()

	s.Exercises = nil
	for rows.Next() {
		var e models.WorkoutExercise
		var idStr, sessionIDStr, bodyPart string
		var libRef sql.NullString
		var maxWeight sql.NullFloat64

		err := rows.Scan(&idStr, &sessionIDStr, &libRef, &e.ExerciseName,
			&bodyPart, &maxWeight, &e.OrderIndex)
		if err != nil {
			return fmt.Errorf("scan exercise: %w", err)
		}

		e.ID, _ = uuid.Parse(idStr)
		e.SessionID, _ = uuid.Parse(sessionIDStr)
		e.BodyPart = models.BodyPart(bodyPart)
		if libRef.Valid {
			ref, _ := uuid.Parse(libRef.String)
			e.ExerciseID = &ref
		}
		if maxWeight.Valid {
			e.MaxWeight = &maxWeight.Float64
		}

		s.Exercises = append(s.Exercises, e)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load exercises: %w", err)
	}

	for i := range s.Exercises {
		if err := d.loadSets(db, &s.Exercises[i]); err != nil {
			return err
		}
	}
	return nil
}

func (d *DB) loadSets(db *sql.DB, e *models.WorkoutExercise) error {
	rows, err := db.Query(
		`SELECT id, exercise_id, weight, reps, completed_at, order_index
		 FROM sets WHERE exercise_id = ? ORDER BY order_index, id`,
		e.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("load sets: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var st models.Set
		var idStr, exerciseIDStr, completedAt string

		err := rows.Scan(&idStr, &exerciseIDStr, &st.Weight, &st.Reps,
			&completedAt, &st.OrderIndex)
		if err != nil {
			return fmt.Errorf("scan set: %w", err)
		}

		st.ID, _ = uuid.Parse(idStr)
		st.ExerciseID, _ = uuid.Parse(exerciseIDStr)
		if st.CompletedAt, err = parseTime(completedAt); err != nil {
			return fmt.Errorf("scan set: %w", err)
		}

		e.Sets = append(e.Sets, st)
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (*models.WorkoutSession, error) {
	var s models.WorkoutSession
	var idStr, date, createdAt, updatedAt string
	var totalTime sql.NullInt64

	err := row.Scan(&idStr, &date, &totalTime, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	s.ID, _ = uuid.Parse(idStr)
	if s.Date, err = parseTime(date); err != nil {
		return nil, err
	}
	if s.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if s.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if totalTime.Valid {
		t := int(totalTime.Int64)
		s.TotalTime = &t
	}
	return &s, nil
}
