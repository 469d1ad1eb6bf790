package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"ascendbot/pkg/util"
)

func tempConfig(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "config.json")
}

func TestLoadCreatesDefaults(t *testing.T) {
	path := tempConfig(t)

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not created: %v", err)
	}
	if got := s.SummaryChannel(); got != "123456789012345678" {
		t.Errorf("default summary channel = %s", got)
	}
	if n := len(s.AllowedChannels()); n != 0 {
		t.Errorf("default allowed channels = %d, want 0", n)
	}
}

func TestSetAllowedChannelsWriteThrough(t *testing.T) {
	path := tempConfig(t)

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := s.SetAllowedChannels([]string{"111", "222"}); err != nil {
		t.Fatalf("SetAllowedChannels: %v", err)
	}

	// Reload from disk: the file must carry the same state.
	s2, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	want := []string{"111", "222"}
	got := s2.AllowedChannels()
	if !util.EqualSlices(got, want, func(x, y string) bool { return x == y }, false) {
		t.Errorf("reloaded allowed channels = %v, want %v", got, want)
	}
	if !s2.AllowedContains("222") {
		t.Error("AllowedContains(222) = false after reload")
	}
}

func TestSetAllowedChannelsRejectsWholeList(t *testing.T) {
	tests := []struct {
		name   string
		tokens []string
	}{
		{"non-numeric token", []string{"111", "general", "333"}},
		{"empty token", []string{""}},
		{"negative", []string{"-5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Load(tempConfig(t))
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if err := s.SetAllowedChannels([]string{"999"}); err != nil {
				t.Fatalf("seed: %v", err)
			}

			err = s.SetAllowedChannels(tt.tokens)
			if !errors.Is(err, ErrInvalidChannelID) {
				t.Fatalf("err = %v, want ErrInvalidChannelID", err)
			}

			// Previous list must be untouched.
			got := s.AllowedChannels()
			if len(got) != 1 || got[0] != "999" {
				t.Errorf("allowed channels after rejected update = %v, want [999]", got)
			}
		})
	}
}

func TestSetSummaryAndTranscriptChannels(t *testing.T) {
	path := tempConfig(t)
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := s.SetSummaryChannel("42"); err != nil {
		t.Fatalf("SetSummaryChannel: %v", err)
	}
	if err := s.SetTranscriptChannel("43"); err != nil {
		t.Fatalf("SetTranscriptChannel: %v", err)
	}
	if err := s.SetSummaryChannel("not-a-channel"); !errors.Is(err, ErrInvalidChannelID) {
		t.Errorf("err = %v, want ErrInvalidChannelID", err)
	}

	s2, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := s2.SummaryChannel(); got != "42" {
		t.Errorf("summary channel = %s, want 42", got)
	}
	if got := s2.TranscriptChannel(); got != "43" {
		t.Errorf("transcript channel = %s, want 43", got)
	}
}
