// Package pipeline runs the post-recording sequence: disconnect,
// transcribe per speaker, summarize, post summary and transcript.
package pipeline

import (
	"context"
	"fmt"
	log "log/slog"
	"strings"
	"time"

	"ascendbot/internal/config"
	"ascendbot/internal/stt"
	"ascendbot/internal/summarize"
	"ascendbot/internal/voice"
)

// transcribeErrSentinel stands in for a speaker whose audio could not
// be transcribed; one speaker failing never aborts the others.
const transcribeErrSentinel = "[Error transcribing audio]"

// Poster posts messages to text channels and resolves channel IDs.
type Poster interface {
	Post(channelID, content string) error
	HasChannel(channelID string) bool
}

type Pipeline struct {
	transcriber stt.Transcriber
	summarizer  summarize.Summarizer
	poster      Poster
	cfg         *config.Store
	now         func() time.Time
}

func New(transcriber stt.Transcriber, summarizer summarize.Summarizer, poster Poster, cfg *config.Store) *Pipeline {
	return &Pipeline{
		transcriber: transcriber,
		summarizer:  summarizer,
		poster:      poster,
		cfg:         cfg,
		now:         time.Now,
	}
}

// Run consumes the capture and posts the summary to destChannelID and
// the transcript to the configured transcript channel. Once started it
// runs to conclusion; there is no cancellation of an in-flight
// completion. A summarization failure fails the whole run and nothing
// is posted.
func (p *Pipeline) Run(ctx context.Context, captured voice.Capture, conn voice.Connection, destChannelID string) error {
	if conn != nil {
		if err := conn.Disconnect(); err != nil {
			log.Error("Failed to disconnect voice", "err", err)
		}
	}

	var (
		participants []string
		transcript   strings.Builder
	)
	for userID, pcm := range captured {
		participants = append(participants, mention(userID))

		text, err := p.transcriber.Transcribe(ctx, pcm)
		if err != nil {
			log.Error("Failed to transcribe speaker", "user", userID, "err", err)
			text = transcribeErrSentinel
		}

		if transcript.Len() > 0 {
			transcript.WriteString("\n\n")
		}
		fmt.Fprintf(&transcript, "Speaker %s: %s", mention(userID), text)
	}
	finalTranscript := transcript.String()

	summary, err := p.summarizer.Summarize(ctx, finalTranscript)
	if err != nil {
		return fmt.Errorf("summarize: %w", err)
	}

	meetingTime := formatMeetingTime(p.now())
	header := fmt.Sprintf("**Meeting Date & Time:** %s\n**Participants:** %s\n",
		meetingTime, strings.Join(participants, ", "))

	summaryMsg := fmt.Sprintf("%s**Summary:**\n%s\n", header, summary)
	if err := p.poster.Post(destChannelID, summaryMsg); err != nil {
		return fmt.Errorf("post summary: %w", err)
	}

	// The transcript channel is resolved fresh at post time; losing it
	// degrades to a log line, the summary is already out.
	transcriptChannel := p.cfg.TranscriptChannel()
	if !p.poster.HasChannel(transcriptChannel) {
		log.Error("Transcript channel not found", "channel", transcriptChannel)
		return nil
	}

	transcriptMsg := fmt.Sprintf("%s**Transcript:**\n%s", header, finalTranscript)
	if err := p.poster.Post(transcriptChannel, transcriptMsg); err != nil {
		log.Error("Failed to post transcript", "channel", transcriptChannel, "err", err)
	}
	return nil
}

func mention(userID string) string {
	return fmt.Sprintf("<@%s>", userID)
}

// formatMeetingTime renders e.g. "3rd Mar, 2026 | 04:05 PM".
func formatMeetingTime(t time.Time) string {
	return fmt.Sprintf("%d%s %s", t.Day(), ordinalSuffix(t.Day()), t.Format("Jan, 2006 | 03:04 PM"))
}

func ordinalSuffix(day int) string {
	if day >= 11 && day <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}
