// Package voice wraps the Discord voice transport: joining a channel,
// capturing per-speaker audio and tearing the connection down.
package voice

// Capture maps a speaker's Discord user ID to their recorded PCM,
// 48 kHz stereo interleaved int16. It is read-once: the completion
// pipeline consumes it and drops it.
type Capture map[string][]int16

// Audio format delivered by the Discord voice gateway.
const (
	SampleRate = 48000
	Channels   = 2
	FrameSize  = 960 // samples per channel per 20ms opus frame
)

// CompletionFunc receives the drained capture once recording stops,
// along with the connection to disconnect and the destination text
// channel for the summary.
type CompletionFunc func(captured Capture, conn Connection, destChannelID string)

// Connection is a live voice-channel connection.
type Connection interface {
	// StartCapture begins draining audio into the sink. onDone fires
	// exactly once, after StopCapture or the underlying stream closing.
	StartCapture(onDone CompletionFunc, destChannelID string)
	// StopCapture ends capture. Safe to call more than once.
	StopCapture()
	Disconnect() error
	ChannelID() string
}

// Dialer joins voice channels.
type Dialer interface {
	Connect(guildID, channelID string) (Connection, error)
}
