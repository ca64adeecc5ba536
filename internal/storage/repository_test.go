// ABOUTME: Tests for session repository CRUD over SQLite.
// ABOUTME: Verifies hydration, ordering, cascade delete, and derived max weight.
package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/gymlog/internal/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "gymlog.db")
	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

// benchSession builds a session with one Bench Press exercise and the given
// set weights, each for 8 reps.
func benchSession(date time.Time, weights ...float64) *models.WorkoutSession {
	s := models.NewWorkoutSession(date)
	e := models.NewWorkoutExercise("Bench Press", models.BodyPartChest)
	for _, w := range weights {
		e.AddSet(w, 8)
	}
	s.AddExercise(*e)
	return s
}

func TestCreateAndGetSession(t *testing.T) {
	db := setupTestDB(t)

	s := models.NewWorkoutSession(time.Date(2025, 11, 27, 9, 0, 0, 0, time.UTC))
	s.WithTotalTime(3600)
	e := models.NewWorkoutExercise("Squat", models.BodyPartLegs)
	e.AddSet(100, 5)
	e.AddSet(110, 3)
	s.AddExercise(*e)

	if err := db.CreateSession(s); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	got, err := db.GetSession(s.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected session, got nil")
	}

	if got.ID != s.ID {
		t.Errorf("ID mismatch: got %v, want %v", got.ID, s.ID)
	}
	if got.TotalTime == nil || *got.TotalTime != 3600 {
		t.Errorf("TotalTime mismatch: got %v, want 3600", got.TotalTime)
	}
	if !got.CreatedAt.Equal(got.UpdatedAt) {
		t.Errorf("expected CreatedAt == UpdatedAt on create, got %v and %v",
			got.CreatedAt, got.UpdatedAt)
	}
	if len(got.Exercises) != 1 {
		t.Fatalf("expected 1 exercise, got %d", len(got.Exercises))
	}

	ex := got.Exercises[0]
	if ex.ExerciseName != "Squat" {
		t.Errorf("ExerciseName = %s, want Squat", ex.ExerciseName)
	}
	if ex.MaxWeight == nil || *ex.MaxWeight != 110 {
		t.Errorf("MaxWeight = %v, want 110", ex.MaxWeight)
	}
	if len(ex.Sets) != 2 {
		t.Fatalf("expected 2 sets, got %d", len(ex.Sets))
	}
	if ex.Sets[0].Weight != 100 || ex.Sets[1].Weight != 110 {
		t.Errorf("sets out of order: got %v then %v", ex.Sets[0].Weight, ex.Sets[1].Weight)
	}
}

func TestGetSessionMissing(t *testing.T) {
	db := setupTestDB(t)

	got, err := db.GetSession(uuid.New())
	if err != nil {
		t.Fatalf("GetSession on unknown id should not error, got: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil session, got %v", got)
	}
}

func TestCreateSessionWithoutExercises(t *testing.T) {
	db := setupTestDB(t)

	s := models.NewWorkoutSession(time.Now())
	if err := db.CreateSession(s); err != nil {
		t.Fatalf("CreateSession with zero exercises should succeed: %v", err)
	}

	got, err := db.GetSession(s.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got == nil || len(got.Exercises) != 0 {
		t.Errorf("expected empty session, got %v", got)
	}
}

func TestCreateSessionRejectsInvalidSet(t *testing.T) {
	db := setupTestDB(t)

	s := benchSession(time.Now(), 80)
	s.Exercises[0].Sets[0].Reps = 0

	err := db.CreateSession(s)
	if !errors.Is(err, ErrConstraint) {
		t.Fatalf("expected ErrConstraint for zero reps, got: %v", err)
	}

	// The whole unit rolls back; no session row survives.
	sessions, err := db.ListSessions()
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("expected empty store after failed create, got %d sessions", len(sessions))
	}
}

func TestListSessionsOrdering(t *testing.T) {
	db := setupTestDB(t)

	s1 := benchSession(time.Date(2025, 11, 26, 0, 0, 0, 0, time.UTC), 60)
	s2 := benchSession(time.Date(2025, 11, 28, 0, 0, 0, 0, time.UTC), 70)
	s3 := benchSession(time.Date(2025, 11, 27, 0, 0, 0, 0, time.UTC), 65)

	for _, s := range []*models.WorkoutSession{s1, s2, s3} {
		if err := db.CreateSession(s); err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}
	}

	sessions, err := db.ListSessions()
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(sessions))
	}

	if sessions[0].ID != s2.ID || sessions[1].ID != s3.ID || sessions[2].ID != s1.ID {
		t.Errorf("expected most recent date first, got %v, %v, %v",
			sessions[0].Date, sessions[1].Date, sessions[2].Date)
	}
}

func TestListSessionsSameDateTieBreak(t *testing.T) {
	db := setupTestDB(t)

	date := time.Date(2025, 11, 27, 0, 0, 0, 0, time.UTC)
	first := benchSession(date, 60)
	second := benchSession(date, 70)

	if err := db.CreateSession(first); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	if err := db.CreateSession(second); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	sessions, err := db.ListSessions()
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}

	// Same date: the later-created session sorts first.
	if sessions[0].ID != second.ID {
		t.Errorf("expected later-created session first, got %v", sessions[0].ID)
	}
}

func TestListSessionsByDateRange(t *testing.T) {
	db := setupTestDB(t)

	dates := []time.Time{
		time.Date(2025, 11, 25, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 11, 26, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 11, 27, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 11, 28, 0, 0, 0, 0, time.UTC),
	}
	for _, d := range dates {
		if err := db.CreateSession(benchSession(d, 60)); err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}
	}

	// Bounds are inclusive on both ends.
	got, err := db.ListSessionsByDateRange(dates[1], dates[2])
	if err != nil {
		t.Fatalf("ListSessionsByDateRange failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 sessions in range, got %d", len(got))
	}
	if !got[0].Date.Equal(dates[2]) || !got[1].Date.Equal(dates[1]) {
		t.Errorf("unexpected range contents: %v, %v", got[0].Date, got[1].Date)
	}
}

func TestUpdateSessionFields(t *testing.T) {
	db := setupTestDB(t)

	s := benchSession(time.Date(2025, 11, 27, 0, 0, 0, 0, time.UTC), 60)
	if err := db.CreateSession(s); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	newDate := time.Date(2025, 11, 28, 0, 0, 0, 0, time.UTC)
	total := 2700
	got, err := db.UpdateSession(s.ID, SessionUpdate{Date: &newDate, TotalTime: &total})
	if err != nil {
		t.Fatalf("UpdateSession failed: %v", err)
	}

	if !got.Date.Equal(newDate) {
		t.Errorf("Date = %v, want %v", got.Date, newDate)
	}
	if got.TotalTime == nil || *got.TotalTime != 2700 {
		t.Errorf("TotalTime = %v, want 2700", got.TotalTime)
	}
	// Untouched fields survive.
	if len(got.Exercises) != 1 {
		t.Errorf("expected exercises untouched, got %d", len(got.Exercises))
	}
}

func TestUpdateSessionAdvancesUpdatedAt(t *testing.T) {
	db := setupTestDB(t)

	s := benchSession(time.Now(), 60)
	if err := db.CreateSession(s); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	before, err := db.GetSession(s.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}

	total := 100
	after, err := db.UpdateSession(s.ID, SessionUpdate{TotalTime: &total})
	if err != nil {
		t.Fatalf("UpdateSession failed: %v", err)
	}

	if !after.UpdatedAt.After(before.UpdatedAt) {
		t.Errorf("UpdatedAt did not advance: before %v, after %v",
			before.UpdatedAt, after.UpdatedAt)
	}
}

func TestUpdateSessionReplacesExercises(t *testing.T) {
	db := setupTestDB(t)

	s := benchSession(time.Now(), 60, 65)
	if err := db.CreateSession(s); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	replacement := models.NewWorkoutExercise("Deadlift", models.BodyPartBack)
	replacement.AddSet(140, 5)

	got, err := db.UpdateSession(s.ID, SessionUpdate{
		Exercises: []models.WorkoutExercise{*replacement},
	})
	if err != nil {
		t.Fatalf("UpdateSession failed: %v", err)
	}

	if len(got.Exercises) != 1 || got.Exercises[0].ExerciseName != "Deadlift" {
		t.Fatalf("expected only Deadlift after replace, got %+v", got.Exercises)
	}

	// The old exercise's sets are gone, not orphaned.
	if n := countRows(t, db, "sets"); n != 1 {
		t.Errorf("expected 1 set row after replace, got %d", n)
	}
	if n := countRows(t, db, "workout_exercises"); n != 1 {
		t.Errorf("expected 1 exercise row after replace, got %d", n)
	}
}

func TestUpdateSessionNotFound(t *testing.T) {
	db := setupTestDB(t)

	total := 100
	_, err := db.UpdateSession(uuid.New(), SessionUpdate{TotalTime: &total})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
}

func TestDeleteSessionCascades(t *testing.T) {
	db := setupTestDB(t)

	s := models.NewWorkoutSession(time.Now())
	for i := 0; i < 3; i++ {
		e := models.NewWorkoutExercise("Row", models.BodyPartBack)
		e.AddSet(50, 10)
		e.AddSet(55, 8)
		s.AddExercise(*e)
	}
	if err := db.CreateSession(s); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	if err := db.DeleteSession(s.ID); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}

	if n := countRows(t, db, "workout_sessions"); n != 0 {
		t.Errorf("expected 0 session rows, got %d", n)
	}
	if n := countRows(t, db, "workout_exercises"); n != 0 {
		t.Errorf("expected 0 exercise rows, got %d", n)
	}
	if n := countRows(t, db, "sets"); n != 0 {
		t.Errorf("expected 0 set rows, got %d", n)
	}
}

func TestDeleteSessionNotFound(t *testing.T) {
	db := setupTestDB(t)

	s := benchSession(time.Now(), 60)
	if err := db.CreateSession(s); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	err := db.DeleteSession(uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}

	// Store unchanged.
	if n := countRows(t, db, "workout_sessions"); n != 1 {
		t.Errorf("expected 1 session row, got %d", n)
	}
}

func TestPreviousMaxWeight(t *testing.T) {
	db := setupTestDB(t)

	max, err := db.PreviousMaxWeight("Bench Press")
	if err != nil {
		t.Fatalf("PreviousMaxWeight failed: %v", err)
	}
	if max != nil {
		t.Errorf("expected nil without history, got %v", *max)
	}

	first := models.NewWorkoutSession(time.Date(2025, 11, 27, 0, 0, 0, 0, time.UTC))
	e1 := models.NewWorkoutExercise("Bench Press", models.BodyPartChest)
	e1.AddSet(70, 10)
	e1.AddSet(75, 8)
	first.AddExercise(*e1)

	second := models.NewWorkoutSession(time.Date(2025, 11, 28, 0, 0, 0, 0, time.UTC))
	e2 := models.NewWorkoutExercise("Bench Press", models.BodyPartChest)
	e2.AddSet(80, 10)
	e2.AddSet(82.5, 6)
	second.AddExercise(*e2)

	for _, s := range []*models.WorkoutSession{first, second} {
		if err := db.CreateSession(s); err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}
	}

	max, err = db.PreviousMaxWeight("Bench Press")
	if err != nil {
		t.Fatalf("PreviousMaxWeight failed: %v", err)
	}
	if max == nil || *max != 82.5 {
		t.Errorf("expected 82.5, got %v", max)
	}
}

func TestPreviousMaxWeightCaseInsensitive(t *testing.T) {
	db := setupTestDB(t)

	if err := db.CreateSession(benchSession(time.Now(), 90)); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	max, err := db.PreviousMaxWeight("bench press")
	if err != nil {
		t.Fatalf("PreviousMaxWeight failed: %v", err)
	}
	if max == nil || *max != 90 {
		t.Errorf("expected 90 for lowercased name, got %v", max)
	}
}

func TestGetSessionMalformedTimestamp(t *testing.T) {
	db := setupTestDB(t)

	s := benchSession(time.Now(), 60)
	if err := db.CreateSession(s); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	raw, err := db.conn()
	if err != nil {
		t.Fatalf("conn failed: %v", err)
	}
	if _, err := raw.Exec(
		`UPDATE workout_sessions SET created_at = 'garbage' WHERE id = ?`,
		s.ID.String(),
	); err != nil {
		t.Fatalf("corrupt timestamp: %v", err)
	}

	// Damage surfaces as an error, not a zero-valued timestamp.
	if _, err := db.GetSession(s.ID); err == nil {
		t.Error("expected an error reading a row with a malformed timestamp")
	}
}

func countRows(t *testing.T, d *DB, table string) int {
	t.Helper()

	db, err := d.conn()
	if err != nil {
		t.Fatalf("conn failed: %v", err)
	}
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("count %s failed: %v", table, err)
	}
	return n
}
