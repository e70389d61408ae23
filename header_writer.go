package wavio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/go-audio/riff"
)

// headerEncoder serialises a Header into the RIFF/WAVE preamble that precedes
// the payload.
type headerEncoder struct {
	buf *bytes.Buffer
	err error
}

func (e *headerEncoder) addLE(src any) {
	if e.err != nil {
		return
	}

	if err := binary.Write(e.buf, binary.LittleEndian, src); err != nil {
		e.err = fmt.Errorf("failed to write little endian: %w", err)
	}
}

// EncodeHeader returns the bytes of a RIFF/WAVE header for h, ending with the
// data chunk header. The RIFF and data sizes describe a payload of
// h.AudioLength bytes.
//
// The extensible fmt block is written when h.ValidBits differs from
// h.BitDepth or h.ChannelMask is not the mask a reader would infer.
func EncodeHeader(h *Header) ([]byte, error) {
	if err := h.Validate(); err != nil {
		return nil, err
	}

	enc := &headerEncoder{buf: bytes.NewBuffer(make([]byte, 0, 12+8+40+8))}
	extensible := h.needsExtension()

	fmtSize := uint32(16)
	if extensible {
		fmtSize = 16 + 2 + extensibleExtraSize
	}

	headerLen := 12 + 8 + fmtSize + 8

	enc.addLE(riff.RiffID)
	enc.addLE(riffSize(int(headerLen), int64(h.AudioLength)))
	enc.addLE(riff.WavFormatID)

	enc.addLE(riff.FmtID)
	enc.addLE(fmtSize)

	formatTag := h.SampleFormat.Tag()
	if extensible {
		formatTag = formatTagExtensible
	}

	blockAlign := uint16(h.BlockAlign())

	enc.addLE(formatTag)
	enc.addLE(h.Channels)
	enc.addLE(h.SampleRate)
	enc.addLE(h.SampleRate * uint32(blockAlign))
	enc.addLE(blockAlign)
	enc.addLE(h.BitDepth)

	if extensible {
		mask := h.ChannelMask
		if mask == Mono {
			mask = 0
		}

		enc.addLE(uint16(extensibleExtraSize))
		enc.addLE(h.ValidBits)
		enc.addLE(uint32(mask))
		enc.addLE(makeSubFormatGUID(h.SampleFormat.Tag()))
	}

	enc.addLE(riff.DataFormatID)
	enc.addLE(h.AudioLength)

	if enc.err != nil {
		return nil, enc.err
	}

	return enc.buf.Bytes(), nil
}

// riffSize is the RIFF chunk size for a header of headerLen bytes followed by
// a payload of dataLen bytes.
func riffSize(headerLen int, dataLen int64) uint32 {
	return uint32(int64(headerLen) - 8 + dataLen)
}

// patchSizes rewrites the RIFF and data chunk sizes of a header already on
// disk. Odd payloads are not padded: readers derive the payload length from
// the stream length, so a pad byte would read back as an extra sample.
func patchSizes(w io.WriterAt, dataOffset int, dataLen int64) error {
	var size [4]byte

	binary.LittleEndian.PutUint32(size[:], riffSize(dataOffset, dataLen))

	if _, err := w.WriteAt(size[:], 4); err != nil {
		return fmt.Errorf("failed to write the RIFF chunk size: %w", err)
	}

	binary.LittleEndian.PutUint32(size[:], uint32(dataLen))

	if _, err := w.WriteAt(size[:], int64(dataOffset-4)); err != nil {
		return fmt.Errorf("failed to write the data chunk size: %w", err)
	}

	return nil
}
