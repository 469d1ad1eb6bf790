// Package bot implements the command surface and presence trigger of
// the meeting recorder over the Discord gateway.
package bot

import (
	"context"
	"fmt"
	log "log/slog"

	"ascendbot/internal/config"
	"ascendbot/internal/session"
	"ascendbot/internal/voice"
)

// Member is a voice-channel occupant.
type Member struct {
	ID  string
	Bot bool
}

// Gateway is the slice of the messaging transport the handlers need.
type Gateway interface {
	SendMessage(channelID, content string) error
	UserVoiceChannel(guildID, userID string) (string, bool)
	ChannelMembers(guildID, channelID string) []Member
	BotUserID() string
}

// Completer runs the post-recording pipeline on a finished capture.
type Completer interface {
	Run(ctx context.Context, captured voice.Capture, conn voice.Connection, destChannelID string) error
}

type Bot struct {
	prefix    string
	gw        Gateway
	dialer    voice.Dialer
	cfg       *config.Store
	registry  *session.Registry
	completer Completer
}

func New(prefix string, gw Gateway, dialer voice.Dialer, cfg *config.Store, registry *session.Registry, completer Completer) *Bot {
	return &Bot{
		prefix:    prefix,
		gw:        gw,
		dialer:    dialer,
		cfg:       cfg,
		registry:  registry,
		completer: completer,
	}
}

// finishCapture is the completion callback handed to every capture; it
// runs on the capture goroutine after the recording stopped.
func (b *Bot) finishCapture(captured voice.Capture, conn voice.Connection, destChannelID string) {
	if err := b.completer.Run(context.Background(), captured, conn, destChannelID); err != nil {
		log.Error("Completion pipeline failed", "channel", destChannelID, "err", err)
	}
}

func (b *Bot) reply(channelID, content string) {
	if err := b.gw.SendMessage(channelID, content); err != nil {
		log.Error("Failed to send reply", "channel", channelID, "err", err)
	}
}

func (b *Bot) helpMessage() string {
	return fmt.Sprintf(
		"**Bot Help & Configuration Instructions:**\n\n"+
			"**Commands:**\n"+
			"• `%[1]srecord` - Start recording in your current voice channel. (Manual mode sends summary to this text channel.)\n"+
			"• `%[1]sstop_recording` - Stop the ongoing manual recording.\n"+
			"• `%[1]sset_auto_record_channels [channel_id1] [channel_id2] ...` - Set voice channels that trigger auto-recording.\n"+
			"• `%[1]sset_summary_channel [channel_id]` - Set the text channel for auto-recording summaries.\n"+
			"• `%[1]sset_transcript_channel [channel_id]` - Set the text channel for auto-recording transcripts.\n"+
			"• `%[1]show_to_configure` - Show these instructions.\n"+
			"• `%[1]sshow_config` - List the currently configured auto-record channels, summary channel, and transcript channel.\n\n"+
			"**Usage:**\n"+
			"• In manual mode, the transcript and summary are sent to the configured channels.\n"+
			"• In auto mode, when a user joins an allowed voice channel, recording starts automatically; "+
			"the summary is sent to the summary channel and the transcript to the transcript channel.\n"+
			"• Settings are persisted in a configuration file.\n\n"+
			"AscendBot v1.0.0",
		b.prefix)
}
