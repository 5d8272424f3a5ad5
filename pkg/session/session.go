// Package session persists interaction sessions between requests.
//
// A [Session] holds the report being explored and the serializable
// interaction state (expansion, dragged positions, view settings). Store
// backends:
//   - memory: in-process storage for a single server or tests
//   - file: JSON files, for the CLI
//   - redis: shared storage for multi-instance servers
//   - mongo: durable storage with a TTL index
//
// # Usage
//
//	store := session.NewMemoryStore()
//
//	sess, err := session.New(reportJSON, session.DefaultTTL)
//	if err != nil {
//	    return err
//	}
//	store.Set(ctx, sess)
//
//	sess, err = store.Get(ctx, id)
//	if err != nil {
//	    return err
//	}
//	if sess == nil {
//	    // Session not found or expired
//	}
package session

import (
	"context"
	"encoding/json"
	"errors"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/lineagescope/pkg/cache"
	"github.com/matzehuels/lineagescope/pkg/interact"
)

// ErrInvalidSession is returned when a session cannot be stored.
var ErrInvalidSession = errors.New("invalid session")

// DefaultTTL is the default session duration.
const DefaultTTL = 24 * time.Hour

// Session is one user's exploration of one report.
type Session struct {
	ID         string          `json:"id" bson:"_id"`
	ReportHash string          `json:"report_hash" bson:"report_hash"`
	Report     json.RawMessage `json:"report" bson:"report"`
	State      interact.State  `json:"state" bson:"state"`
	CreatedAt  time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at" bson:"updated_at"`
	ExpiresAt  time.Time       `json:"expires_at" bson:"expires_at"`
}

// New creates a session over the given report document with a fresh state.
func New(reportData []byte, ttl time.Duration) (*Session, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	return &Session{
		ID:         id.String(),
		ReportHash: cache.Hash(reportData),
		Report:     slices.Clone(reportData),
		State:      interact.NewState(),
		CreatedAt:  now,
		UpdatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}, nil
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Touch records an update and extends the expiry by ttl.
func (s *Session) Touch(ttl time.Duration) {
	s.UpdatedAt = time.Now()
	s.ExpiresAt = s.UpdatedAt.Add(ttl)
}

// Clone returns a deep copy of s.
func (s *Session) Clone() *Session {
	c := *s
	c.Report = slices.Clone(s.Report)
	c.State.ExpandedPackages = slices.Clone(s.State.ExpandedPackages)
	c.State.ExpandedProcedures = slices.Clone(s.State.ExpandedProcedures)
	c.State.Positions = maps.Clone(s.State.Positions)
	return &c
}

func validate(sess *Session) error {
	if sess == nil || sess.ID == "" {
		return ErrInvalidSession
	}
	return nil
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist or has expired.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Set stores a session, replacing any session with the same ID.
	Set(ctx context.Context, session *Session) error

	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, sessionID string) error

	// Cleanup removes expired sessions (may be a no-op for backends with
	// native expiry).
	Cleanup(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}
