package audioconv

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestDownmixInterleaved(t *testing.T) {
	in := []float32{1, 0, 0.5, 0.5, -1, 1}
	out := DownmixInterleaved(in, 2)
	want := []float32{0.5, 0.5, 0}
	if len(out) != len(want) {
		t.Fatalf("got %d frames, want %d", len(out), len(want))
	}
	for i := range want {
		if math.Abs(float64(out[i]-want[i])) > 1e-6 {
			t.Errorf("frame %d: got %f, want %f", i, out[i], want[i])
		}
	}
}

func TestResampleLinearHalvesRate(t *testing.T) {
	in := make([]float32, 48000)
	out := ResampleLinear(in, 48000, 16000)
	if len(out) != 16000 {
		t.Fatalf("got %d samples, want 16000", len(out))
	}
}

func TestTo16kMono(t *testing.T) {
	// 20ms of 48kHz stereo
	pcm := make([]int16, 960*2)
	for i := range pcm {
		pcm[i] = 16384
	}
	out := To16kMono(pcm, 48000, 2)
	if len(out) != 320 {
		t.Fatalf("got %d samples, want 320", len(out))
	}
	for i, v := range out {
		if math.Abs(float64(v)-0.5) > 1e-3 {
			t.Fatalf("sample %d: got %f, want ~0.5", i, v)
		}
	}
}

func TestWriteWAVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	pcm := make([]int16, 48000*2) // 1s stereo silence
	if err := WriteWAVFile(path, pcm, 48000, 2); err != nil {
		t.Fatalf("WriteWAVFile: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	// 44-byte header + 2 bytes per sample
	if info.Size() < int64(len(pcm)*2) {
		t.Errorf("wav too small: %d bytes", info.Size())
	}
}
