package stt

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	openai "github.com/openai/openai-go/v3"

	"ascendbot/internal/voice"
	"ascendbot/pkg/audioconv"
)

// OpenAI transcribes through the hosted Whisper API. Buffers are
// wrapped into a temporary WAV file for the upload and removed after.
type OpenAI struct {
	client openai.Client
	model  openai.AudioModel
}

func NewOpenAI(client openai.Client) *OpenAI {
	return &OpenAI{
		client: client,
		model:  openai.AudioModelWhisper1,
	}
}

func (o *OpenAI) Transcribe(ctx context.Context, pcm []int16) (string, error) {
	tmp, err := os.CreateTemp("", "ascendbot-*.wav")
	if err != nil {
		return "", fmt.Errorf("temp wav: %w", err)
	}
	path := tmp.Name()
	tmp.Close()
	defer os.Remove(path)

	if err := audioconv.WriteWAVFile(path, pcm, voice.SampleRate, voice.Channels); err != nil {
		return "", err
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open wav: %w", err)
	}
	defer f.Close()

	resp, err := o.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		Model: o.model,
		File:  openai.File(f, filepath.Base(path), "audio/wav"),
	})
	if err != nil {
		return "", fmt.Errorf("transcription request: %w", err)
	}

	return resp.Text, nil
}
