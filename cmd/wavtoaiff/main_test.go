package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cwbudde/wavio"
	"github.com/cwbudde/wavio/sample"
	"github.com/go-audio/aiff"
	"github.com/go-audio/audio"
)

func writeFixture(t *testing.T, h wavio.Header, channels ...sample.Buffer[float64]) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fixture.wav")

	c, err := wavio.Create(path, h)
	if err != nil {
		t.Fatalf("create fixture: %v", err)
	}

	for i, s := range c.Channels() {
		if err := wavio.Write(s, channels[i]); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
	}

	if err := c.Close(); err != nil {
		t.Fatalf("close fixture: %v", err)
	}

	return path
}

func decodeAiff(t *testing.T, path string) (*aiff.Decoder, *audio.IntBuffer) {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open aiff: %v", err)
	}

	t.Cleanup(func() { f.Close() })

	d := aiff.NewDecoder(f)
	if !d.IsValidFile() {
		t.Fatalf("%s is not a valid aiff file", path)
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		t.Fatalf("decode aiff: %v", err)
	}

	return d, buf
}

func TestRunRequiresPath(t *testing.T) {
	if _, err := run(nil); err == nil {
		t.Fatal("expected error without -path")
	}
}

func TestRunConvertsStereo(t *testing.T) {
	const frames = 20000

	left := make(sample.Buffer[float64], frames)
	right := make(sample.Buffer[float64], frames)

	for i := range left {
		left[i] = 0.5
		right[i] = -0.25
	}

	path := writeFixture(t,
		wavio.Header{SampleFormat: wavio.PCM, Channels: 2, SampleRate: 44100, BitDepth: 16},
		left, right)

	outPath, err := run([]string{"-path", path})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if filepath.Ext(outPath) != ".aif" {
		t.Fatalf("unexpected output path %s", outPath)
	}

	d, buf := decodeAiff(t, outPath)
	if d.NumChans != 2 || d.BitDepth != 16 || d.SampleRate != 44100 {
		t.Fatalf("format=%d ch / %d bit / %d Hz, want 2 / 16 / 44100", d.NumChans, d.BitDepth, d.SampleRate)
	}

	if len(buf.Data) != 2*frames {
		t.Fatalf("got %d samples, want %d", len(buf.Data), 2*frames)
	}

	for i := 0; i < len(buf.Data); i += 2 {
		if buf.Data[i] != 16384 || buf.Data[i+1] != -8192 {
			t.Fatalf("frame %d=(%d,%d), want (16384,-8192)", i/2, buf.Data[i], buf.Data[i+1])
		}
	}
}

func TestRunWidensEightBit(t *testing.T) {
	mono := sample.Buffer[float64]{0, 0.5, -0.5}

	path := writeFixture(t,
		wavio.Header{SampleFormat: wavio.PCM, Channels: 1, SampleRate: 8000, BitDepth: 8},
		mono)

	outPath, err := run([]string{"-path", path})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	d, buf := decodeAiff(t, outPath)
	if d.BitDepth != 16 {
		t.Fatalf("bit depth=%d, want 16", d.BitDepth)
	}

	want := []int{0, 16384, -16384}
	for i, v := range want {
		if buf.Data[i] != v {
			t.Fatalf("sample %d=%d, want %d", i, buf.Data[i], v)
		}
	}
}

func TestRunExplicitBitDepth(t *testing.T) {
	path := writeFixture(t,
		wavio.Header{SampleFormat: wavio.IEEEFloat, Channels: 1, SampleRate: 48000, BitDepth: 32},
		sample.Buffer[float64]{0.25})

	outPath, err := run([]string{"-path", path, "-bits", "32"})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	d, buf := decodeAiff(t, outPath)
	if d.BitDepth != 32 {
		t.Fatalf("bit depth=%d, want 32", d.BitDepth)
	}

	if buf.Data[0] != 1<<29 {
		t.Fatalf("sample=%d, want %d", buf.Data[0], 1<<29)
	}

	if _, err := run([]string{"-path", path, "-bits", "12"}); !errors.Is(err, wavio.ErrArgumentRange) {
		t.Fatalf("expected ErrArgumentRange for 12-bit output, got %v", err)
	}
}

func TestAiffBitDepth(t *testing.T) {
	tests := []struct {
		name string
		h    wavio.Header
		want int
	}{
		{name: "8bit", h: wavio.Header{SampleFormat: wavio.PCM, BitDepth: 8}, want: 16},
		{name: "16bit", h: wavio.Header{SampleFormat: wavio.PCM, BitDepth: 16}, want: 16},
		{name: "24bit", h: wavio.Header{SampleFormat: wavio.PCM, BitDepth: 24}, want: 24},
		{name: "32bit", h: wavio.Header{SampleFormat: wavio.PCM, BitDepth: 32}, want: 32},
		{name: "64bit", h: wavio.Header{SampleFormat: wavio.PCM, BitDepth: 64}, want: 24},
		{name: "float", h: wavio.Header{SampleFormat: wavio.IEEEFloat, BitDepth: 32}, want: 24},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := aiffBitDepth(tt.h); got != tt.want {
				t.Fatalf("aiffBitDepth=%d, want %d", got, tt.want)
			}
		})
	}
}

func TestRunInvalidPath(t *testing.T) {
	_, err := run([]string{"-path", "/nonexistent/file.wav"})
	if !errors.Is(err, wavio.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
