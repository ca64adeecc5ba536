// ABOUTME: Library Exercise model and BodyPart enum for the exercise catalog.
// ABOUTME: Library entries are reusable templates referenced by workout exercises.
package models

import (
	"time"

	"github.com/google/uuid"
)

// BodyPart tags an exercise with the muscle group it targets.
type BodyPart string

const (
	BodyPartChest     BodyPart = "chest"
	BodyPartBack      BodyPart = "back"
	BodyPartLegs      BodyPart = "legs"
	BodyPartShoulders BodyPart = "shoulders"
	BodyPartArms      BodyPart = "arms"
	BodyPartAbs       BodyPart = "abs"
	BodyPartOther     BodyPart = "other"
)

// AllBodyParts returns all valid body part tags.
var AllBodyParts = []BodyPart{
	BodyPartChest, BodyPartBack, BodyPartLegs, BodyPartShoulders,
	BodyPartArms, BodyPartAbs, BodyPartOther,
}

// IsValidBodyPart checks if a string is a valid body part tag.
func IsValidBodyPart(s string) bool {
	for _, bp := range AllBodyParts {
		if string(bp) == s {
			return true
		}
	}
	return false
}

// Exercise is a reusable library entry. The (Name, BodyPart) pair is unique
// across the library. Deleting a library entry never alters historical
// workout exercises, which carry their own denormalized copy of the name.
type Exercise struct {
	ID        uuid.UUID  `json:"id" yaml:"id"`
	Name      string     `json:"name" yaml:"name"`
	BodyPart  BodyPart   `json:"body_part" yaml:"body_part"`
	VideoURL  *string    `json:"video_url,omitempty" yaml:"video_url,omitempty"`
	CreatedAt time.Time  `json:"created_at" yaml:"created_at"`
	LastUsed  *time.Time `json:"last_used,omitempty" yaml:"last_used,omitempty"`
}

// NewExercise creates a library Exercise with generated UUID and current timestamp.
func NewExercise(name string, bodyPart BodyPart) *Exercise {
	return &Exercise{
		ID:        uuid.New(),
		Name:      name,
		BodyPart:  bodyPart,
		CreatedAt: time.Now(),
	}
}

// WithVideoURL sets a reference video URL.
func (e *Exercise) WithVideoURL(url string) *Exercise {
	e.VideoURL = &url
	return e
}
