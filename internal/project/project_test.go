package project

import (
	"encoding/json"
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/google/uuid"
)

func fixedNow() time.Time {
	return time.Date(2024, time.March, 14, 9, 0, 0, 0, time.UTC)
}

func TestNewProject(t *testing.T) {
	const exampleUUID = "2c173903-3b1c-4967-9a70-8f3a4607c06c"

	tests := []struct {
		name    string
		opts    Options
		wantErr error
	}{
		{
			name:    "neither user ID nor ID",
			opts:    Options{Name: "RNA-seq analysis"},
			wantErr: ErrAmbiguousConstruction,
		},
		{
			name:    "both user ID and ID",
			opts:    Options{UserID: "RST", ID: "P2024-RST-ABCD"},
			wantErr: ErrAmbiguousConstruction,
		},
		{
			name:    "both with mismatched user",
			opts:    Options{UserID: "JAS", ID: "P2024-RST-ABCD"},
			wantErr: ErrAmbiguousConstruction,
		},
		{
			name:    "lowercase user ID",
			opts:    Options{UserID: "rst"},
			wantErr: ErrInvalidUserID,
		},
		{
			name:    "malformed ID",
			opts:    Options{ID: "P2024_RST_ABCD"},
			wantErr: ErrMalformedProjectID,
		},
		{
			name:    "truncated UUID",
			opts:    Options{UserID: "RST", UUID: "99a832b1-7c6d-4d06-96ac-a67a68f4a2b"},
			wantErr: ErrInvalidUUID,
		},
		{
			name:    "overlong UUID",
			opts:    Options{UserID: "RST", UUID: "271d761d-d0c8-4e1d-8ef9-99dad705453cd"},
			wantErr: ErrInvalidUUID,
		},
		{
			name:    "version 1 UUID",
			opts:    Options{UserID: "RST", UUID: "2c173903-3b1c-1967-9a70-8f3a4607c06c"},
			wantErr: ErrInvalidUUID,
		},
		{
			name: "valid from user ID",
			opts: Options{UserID: "RST", UUID: exampleUUID, Now: fixedNow},
		},
		{
			name: "valid from ID",
			opts: Options{ID: "P2024-RT1-ABCD", UUID: exampleUUID},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProject(tt.opts)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("NewProject() error = %v, want %v", err, tt.wantErr)
				}
				if !p.IsZero() {
					t.Errorf("NewProject() returned non-zero identifier on error: %v", p)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewProject() unexpected error: %v", err)
			}
			if p.UUID() != exampleUUID {
				t.Errorf("p.UUID() = %q, want %q", p.UUID(), exampleUUID)
			}
			if !CheckProjectID(p.ID()) {
				t.Errorf("p.ID() = %q is not a valid project ID", p.ID())
			}
		})
	}
}

func TestNewProject_FromUserID(t *testing.T) {
	p, err := NewProject(Options{
		UserID:    "RST",
		Name:      "Mouse long-read RNA-seq analysis",
		GrantCode: "R12345",
		Rand:      rand.New(rand.NewPCG(1, 2)),
		Now:       fixedNow,
	})
	if err != nil {
		t.Fatalf("NewProject() error = %v", err)
	}

	if p.Year() != 2024 {
		t.Errorf("p.Year() = %d, want 2024", p.Year())
	}
	if p.UserID() != "RST" {
		t.Errorf("p.UserID() = %q, want RST", p.UserID())
	}
	if !ValidateSuffix(p.Suffix()) {
		t.Errorf("p.Suffix() = %q is not 4 uppercase letters", p.Suffix())
	}
	if want := "P2024-RST-" + p.Suffix(); p.ID() != want {
		t.Errorf("p.ID() = %q, want %q", p.ID(), want)
	}
	if p.Name() != "Mouse long-read RNA-seq analysis" || p.GrantCode() != "R12345" {
		t.Errorf("metadata not carried: name=%q grant=%q", p.Name(), p.GrantCode())
	}
	u, err := uuid.Parse(p.UUID())
	if err != nil {
		t.Fatalf("p.UUID() should be a valid UUID: %v", err)
	}
	if u.Version() != 4 {
		t.Errorf("p.UUID() version = %d, want 4", u.Version())
	}
}

func TestNewProject_ExplicitYear(t *testing.T) {
	p, err := NewProject(Options{UserID: "JS1", Year: 1999, Now: fixedNow})
	if err != nil {
		t.Fatalf("NewProject() error = %v", err)
	}
	if p.Year() != 1999 {
		t.Errorf("p.Year() = %d, want 1999", p.Year())
	}

	if _, err := NewProject(Options{UserID: "JS1", Year: 12345}); !errors.Is(err, ErrMalformedProjectID) {
		t.Errorf("NewProject() with 5-digit year error = %v, want ErrMalformedProjectID", err)
	}
}

func TestNewProject_FromID(t *testing.T) {
	p, err := NewProject(Options{ID: "P2024-RST-ABCD", Name: "Assembly"})
	if err != nil {
		t.Fatalf("NewProject() error = %v", err)
	}
	if p.ID() != "P2024-RST-ABCD" {
		t.Errorf("p.ID() = %q, want P2024-RST-ABCD", p.ID())
	}
	if p.Year() != 2024 || p.UserID() != "RST" || p.Suffix() != "ABCD" {
		t.Errorf("components = (%d, %q, %q), want (2024, RST, ABCD)", p.Year(), p.UserID(), p.Suffix())
	}
	if !ValidateUUID(p.UUID()) {
		t.Errorf("generated UUID %q is not a canonical v4 UUID", p.UUID())
	}
}

func TestNewProject_UniqueUUIDs(t *testing.T) {
	a, err := NewProject(Options{ID: "P2024-RST-ABCD"})
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewProject(Options{ID: "P2024-RST-ABCD"})
	if err != nil {
		t.Fatal(err)
	}
	if a.UUID() == b.UUID() {
		t.Errorf("two instances share UUID %q", a.UUID())
	}
}

func TestIdentifier_WithMethodsCopy(t *testing.T) {
	p, err := NewProject(Options{ID: "P2024-RST-ABCD"})
	if err != nil {
		t.Fatal(err)
	}

	named := p.WithName("Variant calling").WithGrantCode("R999")
	if p.Name() != "" || p.GrantCode() != "" {
		t.Errorf("original mutated: name=%q grant=%q", p.Name(), p.GrantCode())
	}
	if named.Name() != "Variant calling" || named.GrantCode() != "R999" {
		t.Errorf("copy missing metadata: name=%q grant=%q", named.Name(), named.GrantCode())
	}
	if named.ID() != p.ID() || named.UUID() != p.UUID() {
		t.Error("With* must not change ID or UUID")
	}
}

func TestIdentifier_String(t *testing.T) {
	p, err := ParseProjectID("P2024-RST-ABCD")
	if err != nil {
		t.Fatal(err)
	}
	if p.String() != "P2024-RST-ABCD" {
		t.Errorf("String() = %q", p.String())
	}
	if (Identifier{}).String() != "" {
		t.Error("zero Identifier should render empty")
	}
}

func TestIdentifier_JSON(t *testing.T) {
	p, err := NewProject(Options{
		ID:        "P2024-RST-ABCD",
		UUID:      "2c173903-3b1c-4967-9a70-8f3a4607c06c",
		Name:      "Assembly",
		GrantCode: "R12345",
	})
	if err != nil {
		t.Fatal(err)
	}

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatal(err)
	}
	if fields["id"] != "P2024-RST-ABCD" || fields["user_id"] != "RST" || fields["suffix"] != "ABCD" {
		t.Errorf("unexpected JSON: %s", data)
	}

	var back Identifier
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if back != p {
		t.Errorf("Unmarshal() = %+v, want %+v", back, p)
	}

	if err := json.Unmarshal([]byte(`{"id":"P2024-RST-1234"}`), &back); !errors.Is(err, ErrMalformedProjectID) {
		t.Errorf("Unmarshal() of bad id error = %v, want ErrMalformedProjectID", err)
	}
}

func TestValidateUUID(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{uuid.NewString(), true},
		{"2c173903-3b1c-4967-9a70-8f3a4607c06c", true},
		{"2C173903-3B1C-4967-9A70-8F3A4607C06C", false},
		{"{2c173903-3b1c-4967-9a70-8f3a4607c06c}", false},
		{"urn:uuid:2c173903-3b1c-4967-9a70-8f3a4607c06c", false},
		{"99a832b1-7c6d-4d06-96ac-a67a68f4a2b", false},
		{"2c173903-3b1c-1967-9a70-8f3a4607c06c", false},
		{"2c173903-3b1c-4967-c a70-8f3a4607c06c", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ValidateUUID(tt.input); got != tt.want {
				t.Errorf("ValidateUUID(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
