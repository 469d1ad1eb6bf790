package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
)

// ErrInvalidChannelID is returned when a channel ID token does not
// parse as a Discord snowflake.
var ErrInvalidChannelID = errors.New("invalid channel ID")

// placeholderChannelID is written into a freshly created config file so
// operators see the expected shape before configuring real channels.
const placeholderChannelID uint64 = 123456789012345678

// File is the JSON document persisted on disk. Channel IDs are stored
// numerically; key names match the original config file format.
type File struct {
	AllowedVoiceChannels []uint64 `json:"allowed_voice_channels"`
	SummaryChannelID     uint64   `json:"SUMMARY_CHANNEL_ID"`
	TranscriptChannelID  uint64   `json:"TRANSCRIPT_CHANNEL_ID"`
}

// Store holds the in-memory copy of the config file. Every setter
// validates its input, mutates the copy and synchronously rewrites the
// whole file, so memory and disk never drift.
type Store struct {
	mu   sync.Mutex
	path string
	cfg  File
}

// Load reads the config file at path, creating it with placeholder
// defaults when absent.
func Load(path string) (*Store, error) {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &s.cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		s.cfg = File{
			AllowedVoiceChannels: []uint64{},
			SummaryChannelID:     placeholderChannelID,
			TranscriptChannelID:  placeholderChannelID,
		}
		if err := s.persist(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	return s, nil
}

// SetAllowedChannels replaces the auto-record channel list. Any token
// that is not a valid snowflake rejects the whole call and leaves the
// stored list unchanged.
func (s *Store) SetAllowedChannels(tokens []string) error {
	ids := make([]uint64, 0, len(tokens))
	for _, tok := range tokens {
		id, err := parseChannelID(tok)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.cfg.AllowedVoiceChannels
	s.cfg.AllowedVoiceChannels = ids
	if err := s.persist(); err != nil {
		s.cfg.AllowedVoiceChannels = prev
		return err
	}
	return nil
}

func (s *Store) SetSummaryChannel(token string) error {
	id, err := parseChannelID(token)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.cfg.SummaryChannelID
	s.cfg.SummaryChannelID = id
	if err := s.persist(); err != nil {
		s.cfg.SummaryChannelID = prev
		return err
	}
	return nil
}

func (s *Store) SetTranscriptChannel(token string) error {
	id, err := parseChannelID(token)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.cfg.TranscriptChannelID
	s.cfg.TranscriptChannelID = id
	if err := s.persist(); err != nil {
		s.cfg.TranscriptChannelID = prev
		return err
	}
	return nil
}

// AllowedContains reports whether channelID is in the auto-record set.
func (s *Store) AllowedContains(channelID string) bool {
	id, err := parseChannelID(channelID)
	if err != nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, allowed := range s.cfg.AllowedVoiceChannels {
		if allowed == id {
			return true
		}
	}
	return false
}

// AllowedChannels returns the auto-record channel IDs as discordgo
// string IDs.
func (s *Store) AllowedChannels() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.cfg.AllowedVoiceChannels))
	for i, id := range s.cfg.AllowedVoiceChannels {
		out[i] = strconv.FormatUint(id, 10)
	}
	return out
}

func (s *Store) SummaryChannel() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return strconv.FormatUint(s.cfg.SummaryChannelID, 10)
}

func (s *Store) TranscriptChannel() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return strconv.FormatUint(s.cfg.TranscriptChannelID, 10)
}

// Snapshot returns a copy of the current configuration.
func (s *Store) Snapshot() File {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := s.cfg
	cp.AllowedVoiceChannels = append([]uint64(nil), s.cfg.AllowedVoiceChannels...)
	return cp
}

// persist rewrites the whole file. Callers hold s.mu (except Load,
// which has exclusive access to a store nobody else has seen yet).
func (s *Store) persist() error {
	data, err := json.MarshalIndent(&s.cfg, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", s.path, err)
	}
	return nil
}

func parseChannelID(token string) (uint64, error) {
	id, err := strconv.ParseUint(token, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidChannelID, token)
	}
	return id, nil
}
