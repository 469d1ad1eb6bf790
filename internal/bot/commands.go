package bot

import (
	"fmt"
	log "log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// HandleMessage is the discordgo MessageCreate handler.
func (b *Bot) HandleMessage(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	b.dispatchCommand(m.GuildID, m.ChannelID, m.Author.ID, m.Content)
}

func (b *Bot) dispatchCommand(guildID, channelID, authorID, content string) {
	if !strings.HasPrefix(content, b.prefix) {
		return
	}
	fields := strings.Fields(strings.TrimPrefix(content, b.prefix))
	if len(fields) == 0 {
		return
	}
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "record":
		b.cmdRecord(guildID, channelID, authorID)
	case "stop_recording":
		b.cmdStopRecording(guildID, channelID, authorID)
	case "set_auto_record_channels":
		b.cmdSetAutoRecordChannels(channelID, authorID, args)
	case "set_summary_channel":
		b.cmdSetSummaryChannel(channelID, authorID, args)
	case "set_transcript_channel":
		b.cmdSetTranscriptChannel(channelID, authorID, args)
	case "how_to_configure":
		log.Info("how_to_configure command called", "author", authorID)
		b.reply(channelID, b.helpMessage())
	case "show_config":
		b.cmdShowConfig(channelID, authorID)
	}
}

func (b *Bot) cmdRecord(guildID, channelID, authorID string) {
	log.Info("Record command called", "author", authorID)

	voiceChannel, ok := b.gw.UserVoiceChannel(guildID, authorID)
	if !ok {
		b.reply(channelID, "⚠️ You aren't in a voice channel!")
		return
	}

	log.Info("Connecting to voice channel", "channel", voiceChannel)
	conn, err := b.dialer.Connect(guildID, voiceChannel)
	if err != nil {
		log.Error("Failed to connect to voice channel", "channel", voiceChannel, "err", err)
		b.reply(channelID, "⚠️ Failed to connect to the voice channel.")
		return
	}

	// Manual mode: the summary goes to the invoking text channel.
	if _, err := b.registry.Start(guildID, conn, channelID); err != nil {
		log.Warn("Record refused", "guild", guildID, "err", err)
		if derr := conn.Disconnect(); derr != nil {
			log.Error("Failed to disconnect refused connection", "err", derr)
		}
		b.reply(channelID, "🚫 Already recording in this server.")
		return
	}

	log.Info("Starting manual recording", "guild", guildID, "channel", voiceChannel)
	conn.StartCapture(b.finishCapture, channelID)
	b.reply(channelID, "🔴 Listening to this conversation.")
}

func (b *Bot) cmdStopRecording(guildID, channelID, authorID string) {
	log.Info("Stop recording command called", "author", authorID)

	sess, err := b.registry.Stop(guildID)
	if err != nil {
		b.reply(channelID, "🚫 Not recording here.")
		return
	}

	log.Info("Stopping recording", "guild", guildID, "channel", sess.Conn.ChannelID(), "session", sess.ID)
	sess.Conn.StopCapture()
	b.reply(channelID, "🛑 Stopped recording.")
}

func (b *Bot) cmdSetAutoRecordChannels(channelID, authorID string, args []string) {
	log.Info("set_auto_record_channels command called", "author", authorID, "inputs", args)

	if err := b.cfg.SetAllowedChannels(args); err != nil {
		log.Error("Invalid channel ID provided", "err", err)
		b.reply(channelID, "Invalid channel ID provided in one or more inputs!")
		return
	}
	b.reply(channelID, "Auto record channels updated to: "+strings.Join(b.cfg.AllowedChannels(), ", "))
}

func (b *Bot) cmdSetSummaryChannel(channelID, authorID string, args []string) {
	log.Info("set_summary_channel command called", "author", authorID, "inputs", args)

	if len(args) != 1 {
		b.reply(channelID, "Invalid channel ID provided!")
		return
	}
	if err := b.cfg.SetSummaryChannel(args[0]); err != nil {
		log.Error("Invalid channel ID provided", "err", err)
		b.reply(channelID, "Invalid channel ID provided!")
		return
	}
	b.reply(channelID, "Summary channel set to: "+b.cfg.SummaryChannel())
}

func (b *Bot) cmdSetTranscriptChannel(channelID, authorID string, args []string) {
	log.Info("set_transcript_channel command called", "author", authorID, "inputs", args)

	if len(args) != 1 {
		b.reply(channelID, "Invalid channel ID provided!")
		return
	}
	if err := b.cfg.SetTranscriptChannel(args[0]); err != nil {
		log.Error("Invalid channel ID provided", "err", err)
		b.reply(channelID, "Invalid channel ID provided!")
		return
	}
	b.reply(channelID, "Transcript channel set to: "+b.cfg.TranscriptChannel())
}

func (b *Bot) cmdShowConfig(channelID, authorID string) {
	log.Info("show_config command called", "author", authorID)

	auto := strings.Join(b.cfg.AllowedChannels(), ", ")
	if auto == "" {
		auto = "None"
	}
	b.reply(channelID, fmt.Sprintf(
		"**Configured Auto-Record Channels:** %s\n"+
			"**Configured Summary Channel:** %s\n"+
			"**Configured Transcript Channel:** %s",
		auto, b.cfg.SummaryChannel(), b.cfg.TranscriptChannel()))
}
