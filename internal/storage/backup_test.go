// ABOUTME: Tests for backup export and atomic import.
// ABOUTME: Verifies lossless round-trips, format validation, and import atomicity.
package storage

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/harperreed/gymlog/internal/models"
)

func seedStore(t *testing.T, db *DB) (*models.WorkoutSession, *models.Exercise) {
	t.Helper()

	lib := models.NewExercise("Bench Press", models.BodyPartChest)
	lib.WithVideoURL("https://example.com/bench")
	if err := db.CreateExercise(lib); err != nil {
		t.Fatalf("CreateExercise failed: %v", err)
	}
	if err := db.MarkExerciseUsed("Bench Press"); err != nil {
		t.Fatalf("MarkExerciseUsed failed: %v", err)
	}

	s := models.NewWorkoutSession(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	s.WithTotalTime(55)
	e := models.NewWorkoutExercise("Bench Press", models.BodyPartChest).WithLibraryRef(lib.ID)
	e.AddSet(80, 8)
	e.AddSet(85, 5)
	s.AddExercise(*e)
	if err := db.CreateSession(s); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	return s, lib
}

func TestExportJSONShape(t *testing.T) {
	db := setupTestDB(t)
	seedStore(t, db)

	doc, err := db.ExportJSON()
	if err != nil {
		t.Fatalf("ExportJSON failed: %v", err)
	}

	var data BackupData
	if err := json.Unmarshal(doc, &data); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if data.Tool != "gymlog" || data.FormatVersion != 1 {
		t.Errorf("unexpected markers: tool=%q format=%d", data.Tool, data.FormatVersion)
	}
	if data.SchemaVersion != schemaVersion {
		t.Errorf("SchemaVersion = %d, want %d", data.SchemaVersion, schemaVersion)
	}
	if data.ExportedAt.IsZero() {
		t.Error("ExportedAt not stamped")
	}
	if len(data.Sessions) != 1 || len(data.Library) != 1 {
		t.Errorf("expected 1 session and 1 exercise, got %d/%d", len(data.Sessions), len(data.Library))
	}
}

func TestImportRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	s, lib := seedStore(t, db)

	doc, err := db.ExportJSON()
	if err != nil {
		t.Fatalf("ExportJSON failed: %v", err)
	}

	if err := db.ClearAllData(); err != nil {
		t.Fatalf("ClearAllData failed: %v", err)
	}
	if err := db.ImportJSON(doc); err != nil {
		t.Fatalf("ImportJSON failed: %v", err)
	}

	gotSession, err := db.GetSession(s.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if gotSession == nil {
		t.Fatal("session not restored under its original id")
	}
	if len(gotSession.Exercises) != 1 || len(gotSession.Exercises[0].Sets) != 2 {
		t.Fatalf("session shape lost: %d exercises", len(gotSession.Exercises))
	}
	ex := gotSession.Exercises[0]
	if ex.ExerciseID == nil || *ex.ExerciseID != lib.ID {
		t.Errorf("library reference lost: %v", ex.ExerciseID)
	}
	if ex.MaxWeight == nil || *ex.MaxWeight != 85 {
		t.Errorf("MaxWeight lost: %v", ex.MaxWeight)
	}

	gotLib, err := db.GetExercise(lib.ID)
	if err != nil {
		t.Fatalf("GetExercise failed: %v", err)
	}
	if gotLib == nil {
		t.Fatal("exercise not restored under its original id")
	}
	if gotLib.VideoURL == nil || *gotLib.VideoURL != "https://example.com/bench" {
		t.Errorf("VideoURL lost: %v", gotLib.VideoURL)
	}
	if gotLib.LastUsed == nil {
		t.Error("LastUsed lost in round trip")
	}
}

func TestImportReplacesExistingData(t *testing.T) {
	db := setupTestDB(t)
	seedStore(t, db)

	doc, err := db.ExportJSON()
	if err != nil {
		t.Fatalf("ExportJSON failed: %v", err)
	}

	// Data added after the export must be gone after import.
	extra := models.NewWorkoutSession(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
	if err := db.CreateSession(extra); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	if err := db.ImportJSON(doc); err != nil {
		t.Fatalf("ImportJSON failed: %v", err)
	}

	got, err := db.GetSession(extra.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got != nil {
		t.Error("import should replace store contents, extra session survived")
	}
}

func TestImportRejectsGarbage(t *testing.T) {
	db := setupTestDB(t)
	seedStore(t, db)

	err := db.ImportJSON([]byte("not json"))
	if !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat, got: %v", err)
	}

	// A rejected import leaves the store untouched.
	sessions, err := db.ListSessions()
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 1 {
		t.Errorf("store changed after rejected import: %d sessions", len(sessions))
	}
}

func TestImportRejectsForeignDocument(t *testing.T) {
	db := setupTestDB(t)

	err := db.ImportJSON([]byte(`{"tool":"otherapp","format_version":1,"sessions":[],"library":[]}`))
	if !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("expected ErrInvalidFormat for foreign tool marker, got: %v", err)
	}

	err = db.ImportJSON([]byte(`{"tool":"gymlog","format_version":99,"sessions":[],"library":[]}`))
	if !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("expected ErrInvalidFormat for unknown format version, got: %v", err)
	}
}

func TestImportRejectsNullEntries(t *testing.T) {
	db := setupTestDB(t)
	seedStore(t, db)

	docs := [][]byte{
		[]byte(`{"tool":"gymlog","format_version":1,"sessions":[null],"library":[]}`),
		[]byte(`{"tool":"gymlog","format_version":1,"sessions":[],"library":[null]}`),
	}
	for _, doc := range docs {
		err := db.ImportJSON(doc)
		if !errors.Is(err, ErrInvalidFormat) {
			t.Fatalf("expected ErrInvalidFormat for null entry, got: %v", err)
		}
	}

	// Rejected before the transaction opens; the store is untouched.
	sessions, err := db.ListSessions()
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 1 {
		t.Errorf("store changed after rejected import: %d sessions", len(sessions))
	}
}

func TestImportRejectsSchemaMismatch(t *testing.T) {
	db := setupTestDB(t)
	seedStore(t, db)

	doc := []byte(`{"tool":"gymlog","format_version":1,"schema_version":42,"sessions":[],"library":[]}`)
	err := db.ImportJSON(doc)
	if !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat on schema mismatch, got: %v", err)
	}

	sessions, err := db.ListSessions()
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 1 {
		t.Errorf("store changed after rejected import: %d sessions", len(sessions))
	}
}

func TestExportYAML(t *testing.T) {
	db := setupTestDB(t)
	seedStore(t, db)

	doc, err := db.ExportYAML()
	if err != nil {
		t.Fatalf("ExportYAML failed: %v", err)
	}
	if len(doc) == 0 {
		t.Fatal("empty YAML export")
	}
}
