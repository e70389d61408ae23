package wavio

import (
	"testing"
	"time"
)

func TestFramesDuration(t *testing.T) {
	tests := []struct {
		name       string
		frames     int64
		sampleRate int
		want       time.Duration
	}{
		{"one second", 44100, 44100, time.Second},
		{"half second", 24000, 48000, 500 * time.Millisecond},
		{"one frame", 1, 48000, time.Second / 48000},
		{"zero rate", 100, 0, 0},
		{"negative rate", 100, -48000, 0},
		{"no frames", 0, 48000, 0},
		{"long take", 48000 * 3600, 48000, time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := framesDuration(tt.frames, tt.sampleRate)
			if got != tt.want {
				t.Fatalf("framesDuration(%d, %d)=%v, want %v", tt.frames, tt.sampleRate, got, tt.want)
			}
		})
	}
}

func TestFramesFromDuration(t *testing.T) {
	tests := []struct {
		name       string
		dur        time.Duration
		sampleRate int
		want       int64
	}{
		{"one second", time.Second, 48000, 48000},
		{"quarter second", 250 * time.Millisecond, 1000, 250},
		{"rounds down", time.Millisecond, 44100, 44},
		{"negative", -time.Second, 48000, 0},
		{"zero rate", time.Second, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := framesFromDuration(tt.dur, tt.sampleRate)
			if got != tt.want {
				t.Fatalf("framesFromDuration(%v, %d)=%d, want %d", tt.dur, tt.sampleRate, got, tt.want)
			}
		})
	}
}

func TestHeaderDuration(t *testing.T) {
	h := Header{Channels: 2, SampleRate: 48000, BitDepth: 16, AudioLength: 48000 * 4 / 2}

	if got := h.Frames(); got != 24000 {
		t.Fatalf("Frames()=%d, want 24000", got)
	}

	if got := h.Duration(); got != 500*time.Millisecond {
		t.Fatalf("Duration()=%v, want 500ms", got)
	}

	var empty Header
	if got := empty.Frames(); got != 0 {
		t.Fatalf("Frames() on an empty header=%d, want 0", got)
	}
}
