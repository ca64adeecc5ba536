// ABOUTME: Tests for the library Exercise model and BodyPart enum.
package models

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewExercise(t *testing.T) {
	e := NewExercise("Bench Press", BodyPartChest)

	if e.ID == uuid.Nil {
		t.Error("expected generated ID")
	}
	if e.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be stamped")
	}
	if e.VideoURL != nil || e.LastUsed != nil {
		t.Error("optional fields should default to nil")
	}

	e.WithVideoURL("https://example.com/demo")
	if e.VideoURL == nil || *e.VideoURL != "https://example.com/demo" {
		t.Errorf("WithVideoURL not applied: %v", e.VideoURL)
	}
}

func TestIsValidBodyPart(t *testing.T) {
	for _, bp := range AllBodyParts {
		if !IsValidBodyPart(string(bp)) {
			t.Errorf("%s should be valid", bp)
		}
	}
	for _, s := range []string{"", "cardio", "Chest", "LEGS"} {
		if IsValidBodyPart(s) {
			t.Errorf("%q should be invalid", s)
		}
	}
}
