package bot

import (
	log "log/slog"

	"github.com/bwmarrin/discordgo"
)

// HandleVoiceState is the discordgo VoiceStateUpdate handler driving
// auto-recording.
func (b *Bot) HandleVoiceState(_ *discordgo.Session, v *discordgo.VoiceStateUpdate) {
	before := ""
	if v.BeforeUpdate != nil {
		before = v.BeforeUpdate.ChannelID
	}
	b.handlePresence(v.GuildID, v.UserID, before, v.ChannelID)
}

// handlePresence reacts to the two transitions that matter: a join into
// an allowed channel and a leave that empties an allowed channel down
// to just the bot. Whatever goes wrong in here is logged; the event
// loop must keep running.
func (b *Bot) handlePresence(guildID, userID, beforeChannel, afterChannel string) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("Panic in voice state handler", "guild", guildID, "panic", r)
		}
	}()

	if beforeChannel == "" && afterChannel != "" &&
		b.cfg.AllowedContains(afterChannel) && !b.registry.Active(guildID) {
		if hasHuman(b.gw.ChannelMembers(guildID, afterChannel)) {
			log.Info("Auto-record: user joined allowed channel", "user", userID, "channel", afterChannel)
			b.autoStart(guildID, afterChannel)
		}
	}

	if beforeChannel != "" && b.cfg.AllowedContains(beforeChannel) {
		members := b.gw.ChannelMembers(guildID, beforeChannel)
		if len(members) == 1 && members[0].ID == b.gw.BotUserID() {
			b.autoStop(guildID, beforeChannel)
		}
	}
}

func (b *Bot) autoStart(guildID, channelID string) {
	conn, err := b.dialer.Connect(guildID, channelID)
	if err != nil {
		log.Error("Auto-record failed to connect", "channel", channelID, "err", err)
		return
	}

	dest := b.cfg.SummaryChannel()
	sess, err := b.registry.Start(guildID, conn, dest)
	if err != nil {
		// Lost the race against another start; keep the winner.
		if derr := conn.Disconnect(); derr != nil {
			log.Error("Failed to disconnect refused connection", "err", derr)
		}
		return
	}

	conn.StartCapture(b.finishCapture, dest)
	log.Info("Auto-recording started", "guild", guildID, "channel", channelID, "session", sess.ID)
}

func (b *Bot) autoStop(guildID, channelID string) {
	sess, err := b.registry.Stop(guildID)
	if err != nil {
		// No active session (or a second spurious leave): nothing to do.
		return
	}
	log.Info("Auto-stop: only bot left, stopping recording", "guild", guildID, "channel", channelID, "session", sess.ID)
	sess.Conn.StopCapture()
}

func hasHuman(members []Member) bool {
	for _, m := range members {
		if !m.Bot {
			return true
		}
	}
	return false
}
