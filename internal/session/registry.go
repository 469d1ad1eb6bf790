package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"ascendbot/internal/voice"
)

var (
	// ErrAlreadyRecording is returned when a guild already has a live
	// recording session.
	ErrAlreadyRecording = errors.New("already recording in this guild")
	// ErrNotRecording is returned when a stop is requested for a guild
	// with no live session.
	ErrNotRecording = errors.New("not recording in this guild")
)

// Session is the live association between a guild and its active voice
// recording: the connection plus the text channel the summary goes to.
type Session struct {
	ID        string
	GuildID   string
	Conn      voice.Connection
	ChannelID string // destination for the summary message
	StartedAt time.Time
}

// Registry owns all active sessions, keyed by guild ID. At most one
// session exists per guild; check-and-insert is a single critical
// section so racing starts cannot both succeed.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Start registers a new session for the guild. The existing session is
// untouched when one is already live.
func (r *Registry) Start(guildID string, conn voice.Connection, channelID string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[guildID]; ok {
		return nil, ErrAlreadyRecording
	}

	sess := &Session{
		ID:        uuid.NewString(),
		GuildID:   guildID,
		Conn:      conn,
		ChannelID: channelID,
		StartedAt: time.Now(),
	}
	r.sessions[guildID] = sess
	return sess, nil
}

// Stop removes and returns the guild's session. The caller owns
// finalization (stopping capture, disconnecting).
func (r *Registry) Stop(guildID string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[guildID]
	if !ok {
		return nil, ErrNotRecording
	}
	delete(r.sessions, guildID)
	return sess, nil
}

// Active reports whether the guild has a live session.
func (r *Registry) Active(guildID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[guildID]
	return ok
}
