// Package registry maps people to their short user IDs.
//
// The registry is a single file, loaded whole on open and rewritten through
// a temp file and rename on every mutation:
//
//	~/.config/projctl/users.json
//	{
//	  "version": 1,
//	  "users": {
//	    "CRD": {"user_id": "CRD", "user_name": "Charles Robert Darwin", ...},
//	    "CD1": {"user_id": "CD1", "user_name": "Christopher Ray Dodd", ...}
//	  }
//	}
//
// A .toml path stores the same layout as TOML.
//
// The mutex only serializes callers inside one process. Two processes
// resolving colliding names against the same file can hand out the same ID.
package registry

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/projctl/internal/config"
	"github.com/fyrsmithlabs/projctl/internal/logging"
	"github.com/fyrsmithlabs/projctl/internal/project"
)

// Errors for registry operations.
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUnknownUser          = errors.New("unknown user")
	ErrUserIDSpaceExhausted = errors.New("all numbered user IDs for these initials are taken")
	ErrInvalidEmail         = errors.New("invalid email address")
	ErrEmptyUserName        = errors.New("user name cannot be empty")
	ErrRegistryCorrupted    = errors.New("registry file corrupted")
	ErrUnsupportedFormat    = errors.New("unsupported registry format")
)

const registryVersion = 1

// emailPattern catches obvious typos only.
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)

// User is one registered person.
type User struct {
	UserID    string    `json:"user_id" toml:"user_id"`
	UserName  string    `json:"user_name" toml:"user_name"`
	Email     string    `json:"email,omitempty" toml:"email,omitempty"`
	CreatedAt time.Time `json:"created_at" toml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" toml:"updated_at"`
}

// RegistryData is the persisted registry structure.
type RegistryData struct {
	Version int              `json:"version" toml:"version"`
	Users   map[string]*User `json:"users" toml:"users"` // key: user ID
}

// Registry resolves names to user IDs and stores user records.
type Registry struct {
	mu       sync.RWMutex
	filePath string
	codec    codec
	data     *RegistryData
	now      func() time.Time
}

// NewRegistry opens the registry at filePath. An empty path selects
// ~/.config/projctl/users.json. A missing file is an empty registry; the
// file and its directory are created on the first write.
func NewRegistry(filePath string) (*Registry, error) {
	if filePath == "" {
		dir, err := config.DefaultDir()
		if err != nil {
			return nil, err
		}
		filePath = filepath.Join(dir, "users.json")
	}
	filePath, err := config.ExpandHome(filePath)
	if err != nil {
		return nil, err
	}

	c, err := codecFor(filePath)
	if err != nil {
		return nil, err
	}

	r := &Registry{
		filePath: filePath,
		codec:    c,
		data: &RegistryData{
			Version: registryVersion,
			Users:   make(map[string]*User),
		},
		now: func() time.Time { return time.Now().UTC() },
	}

	if err := r.load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}

	return r, nil
}

// Resolve returns the user ID for fullName, registering the person if they
// are new. Names are compared after collapsing whitespace.
//
// The initials-derived ID is used when free or already held by the same
// name. On a collision the two-letter stem is numbered 1 through 9 and the
// first free or matching slot wins. Nothing is written on failure.
func (r *Registry) Resolve(ctx context.Context, fullName string) (string, error) {
	name := normalizeName(fullName)
	candidate, err := project.DeriveUserID(name)
	if err != nil {
		return "", err
	}

	log := logging.FromContext(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	if !project.IsNumbered(candidate) {
		existing, ok := r.data.Users[candidate]
		if !ok {
			return r.insert(ctx, candidate, name)
		}
		if existing.UserName == name {
			return candidate, nil
		}
		log.Debug(ctx, "user ID taken, numbering",
			zap.String("candidate", candidate),
			zap.String("held_by", existing.UserName))
	}

	base := stem(name, candidate)
	for d := byte('1'); d <= '9'; d++ {
		id := base + string(d)
		existing, ok := r.data.Users[id]
		if !ok {
			return r.insert(ctx, id, name)
		}
		if existing.UserName == name {
			return id, nil
		}
	}

	log.Warn(ctx, "user ID space exhausted", zap.String("base", base), zap.String("user_name", name))
	return "", fmt.Errorf("%w: %s1 to %s9 are held by other people", ErrUserIDSpaceExhausted, base, base)
}

// stem returns the two letters that numbered IDs are built from. A numbered
// candidate keeps its own letters. Otherwise the stem comes from the name:
// first and last initial (Charles Robert Darwin -> CD, Andrew Baxter -> AB),
// or the candidate's leading letters for a single-token name.
func stem(name, candidate string) string {
	if project.IsNumbered(candidate) {
		return candidate[:2]
	}
	initials := project.Initials(name)
	if len(initials) < 2 {
		return candidate[:2]
	}
	return initials[:1] + initials[len(initials)-1:]
}

// insert adds a record and persists it. Caller holds the write lock.
func (r *Registry) insert(ctx context.Context, userID, name string) (string, error) {
	now := r.now()
	r.data.Users[userID] = &User{
		UserID:    userID,
		UserName:  name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.save(); err != nil {
		delete(r.data.Users, userID)
		return "", err
	}

	logging.FromContext(ctx).Info(ctx, "user registered",
		zap.String("user_id", userID),
		zap.String("user_name", name))
	return userID, nil
}

// Get returns a copy of the record for userID.
func (r *Registry) Get(_ context.Context, userID string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.data.Users[userID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}
	cp := *u
	return &cp, nil
}

// UpsertEmail sets or, when email is empty, clears the user's email.
func (r *Registry) UpsertEmail(ctx context.Context, userID, email string) (*User, error) {
	email = strings.TrimSpace(email)
	if email != "" && !emailPattern.MatchString(email) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}

	return r.update(ctx, userID, func(u *User) {
		u.Email = email
	})
}

// Rename replaces the stored user name. The user ID is unchanged.
func (r *Registry) Rename(ctx context.Context, userID, userName string) (*User, error) {
	name := normalizeName(userName)
	if name == "" {
		return nil, ErrEmptyUserName
	}

	return r.update(ctx, userID, func(u *User) {
		u.UserName = name
	})
}

// update applies fn to the record and persists it, restoring the previous
// record if the write fails.
func (r *Registry) update(ctx context.Context, userID string, fn func(*User)) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.data.Users[userID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownUser, userID)
	}

	prev := *u
	fn(u)
	u.UpdatedAt = r.now()
	if err := r.save(); err != nil {
		*u = prev
		return nil, err
	}

	logging.FromContext(ctx).Info(ctx, "user updated", zap.String("user_id", userID))
	cp := *u
	return &cp, nil
}

// List returns copies of every record sorted by user ID.
func (r *Registry) List(_ context.Context) []User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]User, 0, len(r.data.Users))
	for _, u := range r.data.Users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].UserID < users[j].UserID })
	return users
}

// FindByName returns every record whose name equals name, sorted by user ID.
func (r *Registry) FindByName(ctx context.Context, name string) []User {
	name = normalizeName(name)
	var matches []User
	for _, u := range r.List(ctx) {
		if u.UserName == name {
			matches = append(matches, u)
		}
	}
	return matches
}

// Len returns the number of registered users.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.data.Users)
}

// Path returns the registry file path.
func (r *Registry) Path() string {
	return r.filePath
}

func normalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// load reads the registry from disk.
func (r *Registry) load() error {
	data, err := os.ReadFile(r.filePath)
	if err != nil {
		return err
	}

	var rd RegistryData
	if err := r.codec.unmarshal(data, &rd); err != nil {
		return fmt.Errorf("%w: %v", ErrRegistryCorrupted, err)
	}

	if rd.Users == nil {
		rd.Users = make(map[string]*User)
	}
	if rd.Version == 0 {
		rd.Version = registryVersion
	}
	for key, u := range rd.Users {
		if u == nil || u.UserID != key || !project.ValidateUserID(key) {
			return fmt.Errorf("%w: bad record under key %q", ErrRegistryCorrupted, key)
		}
	}

	r.data = &rd
	return nil
}

// save writes the registry to disk.
func (r *Registry) save() error {
	data, err := r.codec.marshal(r.data)
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(r.filePath), 0700); err != nil {
		return fmt.Errorf("failed to create registry directory: %w", err)
	}

	// Write atomically
	tmpPath := r.filePath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write registry: %w", err)
	}

	if err := os.Rename(tmpPath, r.filePath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename registry: %w", err)
	}

	return nil
}
