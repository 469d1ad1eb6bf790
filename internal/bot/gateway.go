package bot

import (
	log "log/slog"

	"github.com/bwmarrin/discordgo"

	"ascendbot/internal/pipeline"
)

// DiscordGateway adapts a discordgo session to the Gateway the
// handlers use and the Poster the completion pipeline posts through.
type DiscordGateway struct {
	s *discordgo.Session
}

var (
	_ Gateway         = (*DiscordGateway)(nil)
	_ pipeline.Poster = (*DiscordGateway)(nil)
)

func NewDiscordGateway(s *discordgo.Session) *DiscordGateway {
	return &DiscordGateway{s: s}
}

func (g *DiscordGateway) SendMessage(channelID, content string) error {
	_, err := g.s.ChannelMessageSend(channelID, content)
	return err
}

// Post satisfies pipeline.Poster.
func (g *DiscordGateway) Post(channelID, content string) error {
	return g.SendMessage(channelID, content)
}

// HasChannel checks the state cache first and falls back to the API.
func (g *DiscordGateway) HasChannel(channelID string) bool {
	if _, err := g.s.State.Channel(channelID); err == nil {
		return true
	}
	_, err := g.s.Channel(channelID)
	return err == nil
}

func (g *DiscordGateway) BotUserID() string {
	return g.s.State.User.ID
}

// UserVoiceChannel returns the voice channel the user currently sits
// in, if any.
func (g *DiscordGateway) UserVoiceChannel(guildID, userID string) (string, bool) {
	guild, err := g.s.State.Guild(guildID)
	if err != nil {
		log.Warn("Guild not in state cache", "guild", guildID, "err", err)
		return "", false
	}
	for _, vs := range guild.VoiceStates {
		if vs.UserID == userID && vs.ChannelID != "" {
			return vs.ChannelID, true
		}
	}
	return "", false
}

// ChannelMembers lists the occupants of a voice channel from the
// guild's voice states.
func (g *DiscordGateway) ChannelMembers(guildID, channelID string) []Member {
	guild, err := g.s.State.Guild(guildID)
	if err != nil {
		log.Warn("Guild not in state cache", "guild", guildID, "err", err)
		return nil
	}

	var out []Member
	for _, vs := range guild.VoiceStates {
		if vs.ChannelID != channelID {
			continue
		}
		out = append(out, Member{ID: vs.UserID, Bot: g.isBot(guildID, vs.UserID)})
	}
	return out
}

func (g *DiscordGateway) isBot(guildID, userID string) bool {
	if userID == g.BotUserID() {
		return true
	}
	m, err := g.s.State.Member(guildID, userID)
	if err != nil {
		m, err = g.s.GuildMember(guildID, userID)
		if err != nil {
			log.Warn("Failed to resolve member", "guild", guildID, "user", userID, "err", err)
			return false
		}
	}
	return m.User != nil && m.User.Bot
}
