package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ascendbot/internal/config"
	"ascendbot/internal/voice"
)

type fakeTranscriber struct {
	texts map[string]string // keyed by first sample value, see pcmFor
	fail  map[string]bool
}

// pcmFor tags a buffer so the fake can tell speakers apart.
func pcmFor(tag int16) []int16 { return []int16{tag} }

func (f *fakeTranscriber) Transcribe(_ context.Context, pcm []int16) (string, error) {
	key := ""
	if len(pcm) > 0 {
		key = string(rune('A' + pcm[0]))
	}
	if f.fail[key] {
		return "", errors.New("stt unavailable")
	}
	return f.texts[key], nil
}

type fakeSummarizer struct {
	summary   string
	err       error
	gotInput  string
	callCount int
}

func (f *fakeSummarizer) Summarize(_ context.Context, transcript string) (string, error) {
	f.callCount++
	f.gotInput = transcript
	if f.err != nil {
		return "", f.err
	}
	return f.summary, nil
}

type fakePoster struct {
	posts   map[string][]string
	missing map[string]bool
}

func newFakePoster() *fakePoster {
	return &fakePoster{posts: make(map[string][]string), missing: make(map[string]bool)}
}

func (f *fakePoster) Post(channelID, content string) error {
	f.posts[channelID] = append(f.posts[channelID], content)
	return nil
}

func (f *fakePoster) HasChannel(channelID string) bool { return !f.missing[channelID] }

type fakeConn struct{ disconnected bool }

func (c *fakeConn) StartCapture(voice.CompletionFunc, string) {}
func (c *fakeConn) StopCapture()                              {}
func (c *fakeConn) Disconnect() error                         { c.disconnected = true; return nil }
func (c *fakeConn) ChannelID() string                         { return "vc" }

func testStore(t *testing.T, transcriptChannel string) *config.Store {
	t.Helper()
	s, err := config.Load(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := s.SetTranscriptChannel(transcriptChannel); err != nil {
		t.Fatalf("SetTranscriptChannel: %v", err)
	}
	return s
}

func newTestPipeline(tr *fakeTranscriber, sum *fakeSummarizer, poster *fakePoster, cfg *config.Store) *Pipeline {
	p := New(tr, sum, poster, cfg)
	p.now = func() time.Time { return time.Date(2026, 3, 3, 16, 5, 0, 0, time.UTC) }
	return p
}

func TestRunSubstitutesSentinelAndContinues(t *testing.T) {
	tr := &fakeTranscriber{
		texts: map[string]string{"A": "hello from A"},
		fail:  map[string]bool{"B": true},
	}
	sum := &fakeSummarizer{summary: "the summary"}
	poster := newFakePoster()
	cfg := testStore(t, "900")
	conn := &fakeConn{}

	captured := voice.Capture{"userA": pcmFor(0), "userB": pcmFor(1)}
	p := newTestPipeline(tr, sum, poster, cfg)
	if err := p.Run(context.Background(), captured, conn, "dest"); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !conn.disconnected {
		t.Error("connection not disconnected")
	}
	if !strings.Contains(sum.gotInput, "hello from A") {
		t.Errorf("transcript missing A's text: %q", sum.gotInput)
	}
	if !strings.Contains(sum.gotInput, "[Error transcribing audio]") {
		t.Errorf("transcript missing sentinel: %q", sum.gotInput)
	}
	if sum.callCount != 1 {
		t.Errorf("summarizer called %d times, want 1", sum.callCount)
	}
	if len(poster.posts["dest"]) != 1 {
		t.Fatalf("summary posts = %d, want 1", len(poster.posts["dest"]))
	}
	if len(poster.posts["900"]) != 1 {
		t.Fatalf("transcript posts = %d, want 1", len(poster.posts["900"]))
	}
}

func TestRunSummarizationFailurePostsNothing(t *testing.T) {
	tr := &fakeTranscriber{texts: map[string]string{"A": "text"}}
	sum := &fakeSummarizer{err: errors.New("model overloaded")}
	poster := newFakePoster()
	cfg := testStore(t, "900")

	p := newTestPipeline(tr, sum, poster, cfg)
	err := p.Run(context.Background(), voice.Capture{"userA": pcmFor(0)}, &fakeConn{}, "dest")
	if err == nil {
		t.Fatal("Run succeeded, want error")
	}
	if len(poster.posts) != 0 {
		t.Errorf("posts = %v, want none", poster.posts)
	}
}

func TestRunMissingTranscriptChannelStillPostsSummary(t *testing.T) {
	tr := &fakeTranscriber{texts: map[string]string{"A": "text"}}
	sum := &fakeSummarizer{summary: "the summary"}
	poster := newFakePoster()
	poster.missing["900"] = true
	cfg := testStore(t, "900")

	p := newTestPipeline(tr, sum, poster, cfg)
	if err := p.Run(context.Background(), voice.Capture{"userA": pcmFor(0)}, &fakeConn{}, "dest"); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(poster.posts["dest"]) != 1 {
		t.Errorf("summary posts = %d, want 1", len(poster.posts["dest"]))
	}
	if len(poster.posts["900"]) != 0 {
		t.Errorf("transcript posted despite unresolvable channel")
	}
}

func TestRunSummaryMessageFormat(t *testing.T) {
	tr := &fakeTranscriber{texts: map[string]string{"A": "text"}}
	sum := &fakeSummarizer{summary: "the summary"}
	poster := newFakePoster()
	cfg := testStore(t, "900")

	p := newTestPipeline(tr, sum, poster, cfg)
	if err := p.Run(context.Background(), voice.Capture{"userA": pcmFor(0)}, &fakeConn{}, "dest"); err != nil {
		t.Fatalf("Run: %v", err)
	}

	msg := poster.posts["dest"][0]
	for _, want := range []string{
		"**Meeting Date & Time:** 3rd Mar, 2026 | 04:05 PM",
		"**Participants:** <@userA>",
		"**Summary:**\nthe summary",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("summary message missing %q:\n%s", want, msg)
		}
	}

	transcriptMsg := poster.posts["900"][0]
	if !strings.Contains(transcriptMsg, "**Transcript:**\nSpeaker <@userA>: text") {
		t.Errorf("transcript message malformed:\n%s", transcriptMsg)
	}
}

func TestFormatMeetingTimeOrdinals(t *testing.T) {
	tests := []struct {
		day  int
		want string
	}{
		{1, "1st"}, {2, "2nd"}, {3, "3rd"}, {4, "4th"},
		{11, "11th"}, {12, "12th"}, {13, "13th"},
		{21, "21st"}, {22, "22nd"}, {23, "23rd"}, {31, "31st"},
	}
	for _, tt := range tests {
		ts := time.Date(2026, 1, tt.day, 9, 0, 0, 0, time.UTC)
		if got := formatMeetingTime(ts); !strings.HasPrefix(got, tt.want) {
			t.Errorf("day %d: got %q, want prefix %q", tt.day, got, tt.want)
		}
	}
}
