package voice

import (
	log "log/slog"
	"sync"

	"github.com/bwmarrin/discordgo"
	opus "gopkg.in/hraban/opus.v2"
)

// Sink accumulates decoded PCM per speaker. Voice packets arrive keyed
// by SSRC; speaking updates map SSRCs to user IDs. Buffers whose SSRC
// was never mapped cannot be attributed and are dropped at drain time.
type Sink struct {
	mu       sync.Mutex
	users    map[uint32]string
	decoders map[uint32]*opus.Decoder
	buffers  map[uint32][]int16
}

func NewSink() *Sink {
	return &Sink{
		users:    make(map[uint32]string),
		decoders: make(map[uint32]*opus.Decoder),
		buffers:  make(map[uint32][]int16),
	}
}

// MapSSRC records which user a voice stream belongs to.
func (s *Sink) MapSSRC(ssrc uint32, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[ssrc] = userID
}

// Write decodes one opus packet and appends the PCM to the stream's
// buffer. Decode errors skip the packet; one bad frame should not end
// the recording.
func (s *Sink) Write(p *discordgo.Packet) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dec, ok := s.decoders[p.SSRC]
	if !ok {
		var err error
		dec, err = opus.NewDecoder(SampleRate, Channels)
		if err != nil {
			log.Error("Failed to create opus decoder", "ssrc", p.SSRC, "err", err)
			return
		}
		s.decoders[p.SSRC] = dec
	}

	pcm := make([]int16, FrameSize*Channels)
	n, err := dec.Decode(p.Opus, pcm)
	if err != nil {
		log.Warn("Failed to decode opus frame", "ssrc", p.SSRC, "err", err)
		return
	}
	s.buffers[p.SSRC] = append(s.buffers[p.SSRC], pcm[:n*Channels]...)
}

// Drain returns everything captured so far keyed by user ID and resets
// the sink.
func (s *Sink) Drain() Capture {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(Capture, len(s.buffers))
	for ssrc, pcm := range s.buffers {
		userID, ok := s.users[ssrc]
		if !ok {
			log.Warn("Dropping audio for unmapped SSRC", "ssrc", ssrc, "samples", len(pcm))
			continue
		}
		out[userID] = append(out[userID], pcm...)
	}

	s.buffers = make(map[uint32][]int16)
	s.decoders = make(map[uint32]*opus.Decoder)
	return out
}
