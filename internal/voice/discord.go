package voice

import (
	"fmt"
	log "log/slog"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// GatewayDialer joins voice channels over a discordgo session.
type GatewayDialer struct {
	session *discordgo.Session
}

func NewGatewayDialer(s *discordgo.Session) *GatewayDialer {
	return &GatewayDialer{session: s}
}

func (d *GatewayDialer) Connect(guildID, channelID string) (Connection, error) {
	// Muted but not deafened: the bot never speaks, it only listens.
	vc, err := d.session.ChannelVoiceJoin(guildID, channelID, true, false)
	if err != nil {
		return nil, fmt.Errorf("join voice channel %s: %w", channelID, err)
	}
	return &gatewayConn{
		vc:        vc,
		channelID: channelID,
		sink:      NewSink(),
		stop:      make(chan struct{}),
	}, nil
}

type gatewayConn struct {
	vc        *discordgo.VoiceConnection
	channelID string
	sink      *Sink
	stop      chan struct{}
	stopOnce  sync.Once
}

func (c *gatewayConn) ChannelID() string { return c.channelID }

func (c *gatewayConn) StartCapture(onDone CompletionFunc, destChannelID string) {
	c.vc.AddHandler(func(_ *discordgo.VoiceConnection, su *discordgo.VoiceSpeakingUpdate) {
		c.sink.MapSSRC(uint32(su.SSRC), su.UserID)
	})
	go c.loop(onDone, destChannelID)
}

// loop drains OpusRecv until capture stops, then hands the drained
// buffers to the completion callback. onDone fires exactly once.
func (c *gatewayConn) loop(onDone CompletionFunc, destChannelID string) {
	for {
		select {
		case <-c.stop:
			onDone(c.sink.Drain(), c, destChannelID)
			return
		case p, ok := <-c.vc.OpusRecv:
			if !ok {
				log.Warn("Voice receive stream closed", "channel", c.channelID)
				onDone(c.sink.Drain(), c, destChannelID)
				return
			}
			c.sink.Write(p)
		}
	}
}

func (c *gatewayConn) StopCapture() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *gatewayConn) Disconnect() error {
	return c.vc.Disconnect()
}
