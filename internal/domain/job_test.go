package domain

import (
	"errors"
	"strings"
	"testing"
)

func validSpec() GenerationSpec {
	return GenerationSpec{
		ReferenceURL: "https://example.com/me.jpg",
		ImageCount:   4,
		AspectRatio:  "portrait",
		Prompt:       "streetwear look in downtown Tokyo",
	}
}

func TestGenerationSpecValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*GenerationSpec)
		wantErr bool
	}{
		{"valid", func(s *GenerationSpec) {}, false},
		{"missing reference", func(s *GenerationSpec) { s.ReferenceURL = "" }, true},
		{"non http reference", func(s *GenerationSpec) { s.ReferenceURL = "ftp://example.com/a.jpg" }, true},
		{"zero images", func(s *GenerationSpec) { s.ImageCount = 0 }, true},
		{"too many images", func(s *GenerationSpec) { s.ImageCount = 9 }, true},
		{"max images", func(s *GenerationSpec) { s.ImageCount = 8 }, false},
		{"missing prompt", func(s *GenerationSpec) { s.Prompt = "" }, true},
		{"long prompt", func(s *GenerationSpec) { s.Prompt = strings.Repeat("x", 501) }, true},
		{"prompt at limit", func(s *GenerationSpec) { s.Prompt = strings.Repeat("x", 500) }, false},
		{"bad aspect", func(s *GenerationSpec) { s.AspectRatio = "panorama" }, true},
		{"known style any case", func(s *GenerationSpec) { s.Style = "eDiToRiAl" }, false},
		{"unknown style", func(s *GenerationSpec) { s.Style = "brutalist" }, true},
		{"known camera angle", func(s *GenerationSpec) { s.CameraAngle = "low angle" }, false},
		{"unknown camera angle", func(s *GenerationSpec) { s.CameraAngle = "drone" }, true},
		{"known lighting", func(s *GenerationSpec) { s.Lighting = "golden hour" }, false},
		{"unknown lighting", func(s *GenerationSpec) { s.Lighting = "strobe" }, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			spec := validSpec()
			tc.mutate(&spec)
			err := spec.Validate()
			if tc.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("expected ErrValidation, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestGenerationSpecNormalizeDefaultsAspect(t *testing.T) {
	spec := GenerationSpec{
		ReferenceURL: "  https://example.com/me.jpg ",
		ImageCount:   1,
		Prompt:       " evening gown ",
		AspectRatio:  "",
	}
	spec.Normalize()
	if spec.AspectRatio != DefaultAspectRatio {
		t.Fatalf("aspect ratio = %q, want %q", spec.AspectRatio, DefaultAspectRatio)
	}
	if spec.ReferenceURL != "https://example.com/me.jpg" {
		t.Fatalf("reference url not trimmed: %q", spec.ReferenceURL)
	}
	if spec.Prompt != "evening gown" {
		t.Fatalf("prompt not trimmed: %q", spec.Prompt)
	}

	spec.AspectRatio = "LANDSCAPE"
	spec.Normalize()
	if spec.AspectRatio != "landscape" {
		t.Fatalf("aspect ratio = %q, want lowercased", spec.AspectRatio)
	}
}

func TestJobStatusTerminal(t *testing.T) {
	terminal := []JobStatus{JobStatusCompleted, JobStatusFailed, JobStatusCancelled}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Fatalf("%s should be terminal", s)
		}
	}
	for _, s := range []JobStatus{JobStatusPending, JobStatusProcessing} {
		if s.Terminal() {
			t.Fatalf("%s should not be terminal", s)
		}
	}
}

func TestEntryKindValid(t *testing.T) {
	for _, k := range []EntryKind{EntryKindPurchase, EntryKindSubscription, EntryKindGeneration, EntryKindRefund, EntryKindBonus} {
		if !k.Valid() {
			t.Fatalf("%s should be valid", k)
		}
	}
	if EntryKind("chargeback").Valid() {
		t.Fatal("unknown kind should be invalid")
	}
}
