// ABOUTME: WorkoutSession, WorkoutExercise, and Set models for the training log.
// ABOUTME: Sessions own exercises which own sets; MaxWeight is derived from set weights.
package models

import (
	"time"

	"github.com/google/uuid"
)

// WorkoutSession is one recorded training session. It owns an ordered
// collection of exercises, each with its ordered sets.
type WorkoutSession struct {
	ID        uuid.UUID         `json:"id" yaml:"id"`
	Date      time.Time         `json:"date" yaml:"date"`
	TotalTime *int              `json:"total_time,omitempty" yaml:"total_time,omitempty"` // seconds
	CreatedAt time.Time         `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time         `json:"updated_at" yaml:"updated_at"`
	Exercises []WorkoutExercise `json:"exercises" yaml:"exercises"`
}

// NewWorkoutSession creates a session dated at the given time with matching
// created/updated timestamps.
func NewWorkoutSession(date time.Time) *WorkoutSession {
	now := time.Now()
	return &WorkoutSession{
		ID:        uuid.New(),
		Date:      date,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// WithTotalTime sets the elapsed workout time in seconds.
func (s *WorkoutSession) WithTotalTime(seconds int) *WorkoutSession {
	s.TotalTime = &seconds
	return s
}

// AddExercise appends an exercise with the next order index.
func (s *WorkoutSession) AddExercise(e WorkoutExercise) *WorkoutSession {
	e.SessionID = s.ID
	e.OrderIndex = len(s.Exercises)
	s.Exercises = append(s.Exercises, e)
	return s
}

// WorkoutExercise is an exercise performed within a session. ExerciseName and
// BodyPart are denormalized from the library at creation time so history
// survives library edits. ExerciseID is the optional library reference.
type WorkoutExercise struct {
	ID           uuid.UUID  `json:"id" yaml:"id"`
	SessionID    uuid.UUID  `json:"session_id" yaml:"session_id"`
	ExerciseID   *uuid.UUID `json:"exercise_id,omitempty" yaml:"exercise_id,omitempty"`
	ExerciseName string     `json:"exercise_name" yaml:"exercise_name"`
	BodyPart     BodyPart   `json:"body_part" yaml:"body_part"`
	MaxWeight    *float64   `json:"max_weight,omitempty" yaml:"max_weight,omitempty"`
	OrderIndex   int        `json:"order_index" yaml:"order_index"`
	Sets         []Set      `json:"sets" yaml:"sets"`
}

// NewWorkoutExercise creates a workout exercise with a generated UUID.
func NewWorkoutExercise(name string, bodyPart BodyPart) *WorkoutExercise {
	return &WorkoutExercise{
		ID:           uuid.New(),
		ExerciseName: name,
		BodyPart:     bodyPart,
	}
}

// WithLibraryRef links this exercise to a library entry.
func (e *WorkoutExercise) WithLibraryRef(id uuid.UUID) *WorkoutExercise {
	e.ExerciseID = &id
	return e
}

// AddSet appends a set with the next order index.
func (e *WorkoutExercise) AddSet(weight float64, reps int) *WorkoutExercise {
	e.Sets = append(e.Sets, Set{
		ID:          uuid.New(),
		ExerciseID:  e.ID,
		Weight:      weight,
		Reps:        reps,
		CompletedAt: time.Now(),
		OrderIndex:  len(e.Sets),
	})
	return e
}

// ComputeMaxWeight returns the maximum set weight, or nil when there are no sets.
func (e *WorkoutExercise) ComputeMaxWeight() *float64 {
	if len(e.Sets) == 0 {
		return nil
	}
	max := e.Sets[0].Weight
	for _, st := range e.Sets[1:] {
		if st.Weight > max {
			max = st.Weight
		}
	}
	return &max
}

// Set is a single completed set: weight lifted and repetitions performed.
type Set struct {
	ID          uuid.UUID `json:"id" yaml:"id"`
	ExerciseID  uuid.UUID `json:"exercise_id" yaml:"exercise_id"`
	Weight      float64   `json:"weight" yaml:"weight"`
	Reps        int       `json:"reps" yaml:"reps"`
	CompletedAt time.Time `json:"completed_at" yaml:"completed_at"`
	OrderIndex  int       `json:"order_index" yaml:"order_index"`
}
