package stt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"ascendbot/internal/voice"
	"ascendbot/pkg/audioconv"
)

// WhisperOptions tunes the local whisper.cpp run.
type WhisperOptions struct {
	Language string // e.g. "auto", "en", "ru"
	Threads  int    // <=0 => NumCPU()
}

// Whisper runs transcription against a local whisper.cpp model, for
// deployments that keep audio off third-party services.
type Whisper struct {
	model whisper.Model
	opt   WhisperOptions
}

func NewWhisper(modelPath string, opt WhisperOptions) (*Whisper, error) {
	if modelPath == "" {
		return nil, errors.New("empty model path")
	}
	m, err := whisper.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	return &Whisper{model: m, opt: opt}, nil
}

func (w *Whisper) Close() error {
	if w.model == nil {
		return nil
	}
	return w.model.Close()
}

func (w *Whisper) Transcribe(ctx context.Context, pcm []int16) (string, error) {
	if w.model == nil {
		return "", errors.New("nil model")
	}
	if len(pcm) == 0 {
		return "", errors.New("no audio samples provided")
	}

	samples := audioconv.To16kMono(pcm, voice.SampleRate, voice.Channels)

	wctx, err := w.model.NewContext()
	if err != nil {
		return "", fmt.Errorf("new context: %w", err)
	}

	lang := w.opt.Language
	if lang == "" {
		lang = "auto"
	}
	if err := wctx.SetLanguage(lang); err != nil {
		return "", fmt.Errorf("set language: %w", err)
	}

	threads := w.opt.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	wctx.SetThreads(uint(threads))

	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return "", fmt.Errorf("process: %w", err)
	}

	var text string
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		s, err := wctx.NextSegment()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("next segment: %w", err)
		}
		if text == "" {
			text = s.Text
		} else {
			text += " " + s.Text
		}
	}

	return text, nil
}
