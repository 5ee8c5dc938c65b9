package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

// Common errors.
var (
	ErrInvalidName           = errors.New("invalid person name")
	ErrInvalidUserID         = errors.New("invalid user ID")
	ErrInvalidSuffix         = errors.New("invalid project suffix")
	ErrMalformedProjectID    = errors.New("malformed project ID")
	ErrAmbiguousConstruction = errors.New("exactly one of user ID or project ID must be supplied")
	ErrInvalidUUID           = errors.New("invalid version 4 UUID")
)

// Identifier is a parsed or generated project identifier with its metadata.
// Values are immutable; use the With* methods to derive amended copies.
type Identifier struct {
	year      int
	userID    string
	suffix    string
	uuid      string
	grantCode string
	name      string
}

// Year is the calendar year the project was created in.
func (p Identifier) Year() int { return p.year }

// UserID is the 3-character user segment.
func (p Identifier) UserID() string { return p.userID }

// Suffix is the 4-letter random disambiguator.
func (p Identifier) Suffix() string { return p.suffix }

// UUID is the version 4 UUID carried alongside the ID. Empty for values
// returned by ParseProjectID.
func (p Identifier) UUID() string { return p.uuid }

// GrantCode is optional free text, e.g. "R12345".
func (p Identifier) GrantCode() string { return p.grantCode }

// Name is the optional short project name.
func (p Identifier) Name() string { return p.name }

// ID returns the canonical form P<year>-<user_id>-<suffix>.
func (p Identifier) ID() string {
	if p.userID == "" {
		return ""
	}
	return formatProjectID(p.year, p.userID, p.suffix)
}

// IsZero reports whether p is the zero value.
func (p Identifier) IsZero() bool { return p.userID == "" }

// String returns the canonical ID.
func (p Identifier) String() string { return p.ID() }

// WithName returns a copy of p with the given name.
func (p Identifier) WithName(name string) Identifier {
	p.name = name
	return p
}

// WithGrantCode returns a copy of p with the given grant code.
func (p Identifier) WithGrantCode(code string) Identifier {
	p.grantCode = code
	return p
}

// identifierJSON is the wire form used by the CLI.
type identifierJSON struct {
	ID        string `json:"id"`
	Year      int    `json:"year"`
	UserID    string `json:"user_id"`
	Suffix    string `json:"suffix"`
	UUID      string `json:"uuid,omitempty"`
	Name      string `json:"name,omitempty"`
	GrantCode string `json:"grant_code,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (p Identifier) MarshalJSON() ([]byte, error) {
	return json.Marshal(identifierJSON{
		ID:        p.ID(),
		Year:      p.year,
		UserID:    p.userID,
		Suffix:    p.suffix,
		UUID:      p.uuid,
		Name:      p.name,
		GrantCode: p.grantCode,
	})
}

// UnmarshalJSON implements json.Unmarshaler. The id field is authoritative
// and is validated the same way as ParseProjectID.
func (p *Identifier) UnmarshalJSON(data []byte) error {
	var raw identifierJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseProjectID(raw.ID)
	if err != nil {
		return err
	}
	if raw.UUID != "" && !ValidateUUID(raw.UUID) {
		return fmt.Errorf("%w: %q", ErrInvalidUUID, raw.UUID)
	}
	parsed.uuid = raw.UUID
	parsed.name = raw.Name
	parsed.grantCode = raw.GrantCode
	*p = parsed
	return nil
}

// Options configures NewProject. Exactly one of UserID or ID must be set.
type Options struct {
	// UserID generates a fresh ID for this user in Year with a random suffix.
	UserID string

	// ID is a fully formed project ID to parse.
	ID string

	GrantCode string
	Name      string

	// UUID is validated when set, generated otherwise.
	UUID string

	// Year overrides the current year when generating from UserID.
	Year int

	// Rand drives suffix generation. Nil uses the package-level source.
	Rand *rand.Rand

	// Now supplies the current time. Defaults to time.Now.
	Now func() time.Time
}

// NewProject constructs a project identifier from either a user ID or a
// fully formed project ID.
func NewProject(opts Options) (Identifier, error) {
	if (opts.UserID == "") == (opts.ID == "") {
		return Identifier{}, ErrAmbiguousConstruction
	}

	var p Identifier
	if opts.ID != "" {
		parsed, err := ParseProjectID(opts.ID)
		if err != nil {
			return Identifier{}, err
		}
		p = parsed
	} else {
		if !ValidateUserID(opts.UserID) {
			return Identifier{}, fmt.Errorf("%w: %q", ErrInvalidUserID, opts.UserID)
		}
		year := opts.Year
		if year == 0 {
			now := time.Now
			if opts.Now != nil {
				now = opts.Now
			}
			year = now().Year()
		}
		if year < 0 || year > maxYear {
			return Identifier{}, fmt.Errorf("%w: year %d is not 4 digits", ErrMalformedProjectID, year)
		}
		p = Identifier{
			year:   year,
			userID: opts.UserID,
			suffix: GenerateSuffix(opts.Rand),
		}
	}

	if opts.UUID != "" {
		if !ValidateUUID(opts.UUID) {
			return Identifier{}, fmt.Errorf("%w: %q", ErrInvalidUUID, opts.UUID)
		}
		p.uuid = opts.UUID
	} else {
		p.uuid = uuid.NewString()
	}

	p.grantCode = opts.GrantCode
	p.name = opts.Name
	return p, nil
}

// ValidateUUID reports whether s is a canonical (lowercase, hyphenated)
// RFC 4122 version 4 UUID.
func ValidateUUID(s string) bool {
	u, err := uuid.Parse(s)
	if err != nil {
		return false
	}
	if u.Version() != 4 || u.Variant() != uuid.RFC4122 {
		return false
	}
	return u.String() == s
}
