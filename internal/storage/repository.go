// ABOUTME: Repository interface for workout log storage.
// ABOUTME: The only surface the CLI and MCP layers are allowed to depend on.
package storage

import (
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/gymlog/internal/models"
)

// Repository defines the storage contract for the workout log.
// *DB is the canonical implementation.
type Repository interface {
	// Session operations
	CreateSession(s *models.WorkoutSession) error
	GetSession(id uuid.UUID) (*models.WorkoutSession, error)
	ListSessions() ([]*models.WorkoutSession, error)
	ListSessionsByDateRange(start, end time.Time) ([]*models.WorkoutSession, error)
	UpdateSession(id uuid.UUID, upd SessionUpdate) (*models.WorkoutSession, error)
	DeleteSession(id uuid.UUID) error
	PreviousMaxWeight(exerciseName string) (*float64, error)

	// Library operations
	CreateExercise(e *models.Exercise) error
	GetExercise(id uuid.UUID) (*models.Exercise, error)
	ListExercises() ([]*models.Exercise, error)
	ListExercisesByBodyPart(bp models.BodyPart) ([]*models.Exercise, error)
	SearchExercises(query string) ([]*models.Exercise, error)
	UpdateExercise(id uuid.UUID, upd ExerciseUpdate) (*models.Exercise, error)
	DeleteExercise(id uuid.UUID) error
	MarkExerciseUsed(name string) error

	// Backup
	GetAllData() (*BackupData, error)
	ExportJSON() ([]byte, error)
	ExportYAML() ([]byte, error)
	ImportJSON(doc []byte) error

	// Lifecycle and health
	SchemaVersion() (int, error)
	VerifySchemaIntegrity() (bool, error)
	ClearAllData() error
	Close() error
}

var _ Repository = (*DB)(nil)
