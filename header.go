package wavio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/go-audio/riff"
)

// HeaderProbeSize is the number of leading bytes ParseHeader inspects. The
// fmt and data chunk markers must both start inside this window.
const HeaderProbeSize = 1024

// Offsets of the fmt fields, relative to the end of the "fmt " marker.
const (
	fmtOffFormatTag  = 4
	fmtOffChannels   = 6
	fmtOffSampleRate = 8
	fmtOffBitDepth   = 18
	fmtOffExtraSize  = 20
	fmtOffValidBits  = 22
	fmtOffMask       = 24
	fmtOffSubFormat  = 28
	fmtBaseSize      = 20
	fmtExtendedSize  = 44
)

// Header holds the decoded fmt fields of a container.
type Header struct {
	SampleFormat SampleFormat
	Channels     uint16
	SampleRate   uint32
	// BitDepth is the container size of one sample in bits.
	BitDepth uint16
	// ValidBits is the number of meaningful bits per sample, left-justified
	// inside BitDepth.
	ValidBits uint16
	// AudioLength is the payload size in bytes.
	AudioLength uint32
	// ChannelMask is the declared mask, or the inferred one when the
	// container does not declare it.
	ChannelMask ChannelPosition

	// FormatTag is the tag found on disk (0xFFFE for extensible containers).
	FormatTag uint16
	// DataOffset is the byte offset of the first payload byte.
	DataOffset int
	// Extensible reports whether a recognised extension block was parsed.
	Extensible bool
}

// ParseHeader decodes and validates the container header found in probe,
// which should hold the first HeaderProbeSize bytes of the stream.
//
// AudioLength is set to the payload bytes present in probe; callers that know
// the full stream length should overwrite it. The declared data chunk size is
// ignored.
func ParseHeader(probe []byte) (*Header, error) {
	if len(probe) > HeaderProbeSize {
		probe = probe[:HeaderProbeSize]
	}

	if len(probe) < 4 || !bytes.Equal(probe[:4], riff.RiffID[:]) {
		return nil, fmt.Errorf("%w: missing RIFF marker: %w", ErrUnrecognisedFormat, riff.ErrFmtNotSupported)
	}

	fmtAt := bytes.Index(probe, riff.FmtID[:])
	if fmtAt < 0 {
		return nil, fmt.Errorf("%w: fmt chunk not found", ErrUnrecognisedFormat)
	}

	fmtBody := probe[fmtAt+4:]
	if len(fmtBody) < fmtBaseSize {
		return nil, fmt.Errorf("%w: fmt chunk truncated", ErrUnrecognisedFormat)
	}

	h := &Header{
		FormatTag:  binary.LittleEndian.Uint16(fmtBody[fmtOffFormatTag:]),
		Channels:   binary.LittleEndian.Uint16(fmtBody[fmtOffChannels:]),
		SampleRate: binary.LittleEndian.Uint32(fmtBody[fmtOffSampleRate:]),
		BitDepth:   binary.LittleEndian.Uint16(fmtBody[fmtOffBitDepth:]),
	}

	var explicitMask uint32

	fieldsEnd := fmtBaseSize

	if h.FormatTag == formatTagExtensible {
		if len(fmtBody) < fmtOffValidBits {
			return nil, fmt.Errorf("%w: fmt extension truncated", ErrUnrecognisedFormat)
		}

		extraSize := binary.LittleEndian.Uint16(fmtBody[fmtOffExtraSize:])
		if extraSize == extensibleExtraSize {
			if len(fmtBody) < fmtExtendedSize {
				return nil, fmt.Errorf("%w: fmt extension truncated", ErrUnrecognisedFormat)
			}

			h.Extensible = true
			fieldsEnd = fmtExtendedSize
			h.ValidBits = binary.LittleEndian.Uint16(fmtBody[fmtOffValidBits:])
			explicitMask = binary.LittleEndian.Uint32(fmtBody[fmtOffMask:])
			h.SampleFormat = sampleFormatFromTag(subFormatTag(fmtBody[fmtOffSubFormat:fmtExtendedSize]))
		}
	} else {
		h.SampleFormat = sampleFormatFromTag(h.FormatTag)
	}

	if h.ValidBits == 0 {
		h.ValidBits = h.BitDepth
	}

	h.ChannelMask = ResolveMask(h.Channels, explicitMask)

	dataAt := bytes.Index(fmtBody[fieldsEnd:], riff.DataFormatID[:])
	if dataAt < 0 {
		return nil, fmt.Errorf("%w: data chunk not found in the first %d bytes", ErrUnrecognisedFormat, HeaderProbeSize)
	}

	h.DataOffset = fmtAt + 4 + fieldsEnd + dataAt + 8
	if h.DataOffset <= len(probe) {
		h.AudioLength = uint32(len(probe) - h.DataOffset)
	}

	if err := h.Validate(); err != nil {
		return nil, err
	}

	return h, nil
}

// Validate reports whether h describes a usable container.
func (h *Header) Validate() error {
	if h == nil {
		return fmt.Errorf("%w: nil header", ErrUnrecognisedFormat)
	}

	switch h.BitDepth {
	case 8, 16, 24, 32, 64, 128:
	case 0:
		return fmt.Errorf("%w: bit depth is zero", ErrUnrecognisedFormat)
	default:
		return fmt.Errorf("%w: unsupported bit depth %d", ErrUnrecognisedFormat, h.BitDepth)
	}

	if h.ValidBits == 0 {
		return fmt.Errorf("%w: valid bits per sample is zero", ErrUnrecognisedFormat)
	}

	if h.ValidBits > h.BitDepth {
		return fmt.Errorf("%w: valid bits %d exceed bit depth %d", ErrUnrecognisedFormat, h.ValidBits, h.BitDepth)
	}

	if h.SampleRate == 0 {
		return fmt.Errorf("%w: sample rate is zero", ErrUnrecognisedFormat)
	}

	if h.Channels == 0 {
		return fmt.Errorf("%w: channel count is zero", ErrUnrecognisedFormat)
	}

	if h.SampleFormat == Unknown {
		return fmt.Errorf("%w: unknown sample format (tag 0x%04X)", ErrUnrecognisedFormat, h.FormatTag)
	}

	return nil
}

// BytesPerSample returns the container size of one sample in bytes.
func (h *Header) BytesPerSample() int {
	return int(h.BitDepth) / 8
}

// BlockAlign returns the size of one interleaved frame in bytes.
func (h *Header) BlockAlign() int {
	return int(h.Channels) * h.BytesPerSample()
}

// Frames returns the number of complete frames in the payload.
func (h *Header) Frames() int64 {
	if h.BlockAlign() == 0 {
		return 0
	}

	return int64(h.AudioLength) / int64(h.BlockAlign())
}

// Duration returns the playback length of the payload.
func (h *Header) Duration() time.Duration {
	return framesDuration(h.Frames(), int(h.SampleRate))
}

// needsExtension reports whether writing h requires the extensible fmt
// block to preserve its valid bits or channel mask.
func (h *Header) needsExtension() bool {
	if h.ValidBits != 0 && h.ValidBits != h.BitDepth {
		return true
	}

	return h.ChannelMask != 0 && h.ChannelMask != DefaultMask(h.Channels)
}
