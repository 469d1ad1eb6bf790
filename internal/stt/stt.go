// Package stt turns captured speaker audio into text.
package stt

import "context"

// Transcriber converts one speaker's recording to text. Input is
// 48 kHz stereo interleaved PCM as delivered by the voice sink.
type Transcriber interface {
	Transcribe(ctx context.Context, pcm []int16) (string, error)
}
