package wavio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testChunk struct {
	id   string
	size uint32
	data []byte
}

var (
	errFileTooSmall         = errors.New("file too small")
	errInvalidRiffWaveHdr   = errors.New("invalid riff/wave header")
	errChunkExceedsFileSize = errors.New("chunk exceeds file size")
)

func parseWavChunks(data []byte) ([]testChunk, error) {
	if len(data) < 12 {
		return nil, errFileTooSmall
	}

	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, errInvalidRiffWaveHdr
	}

	chunks := make([]testChunk, 0)

	offset := 12
	for offset+8 <= len(data) {
		id := string(data[offset : offset+4])
		size := binary.LittleEndian.Uint32(data[offset+4 : offset+8])
		offset += 8

		end := offset + int(size)
		if end > len(data) {
			return nil, fmt.Errorf("%w: %q", errChunkExceedsFileSize, id)
		}

		payload := append([]byte(nil), data[offset:end]...)
		chunks = append(chunks, testChunk{id: id, size: size, data: payload})

		offset = end
		if size%2 == 1 && id != "data" {
			offset++
		}
	}

	return chunks, nil
}

func findChunk(chunks []testChunk, id string) *testChunk {
	for i := range chunks {
		if chunks[i].id == id {
			return &chunks[i]
		}
	}

	return nil
}

// fmtFields describes a fmt chunk to build by hand.
type fmtFields struct {
	tag        uint16
	channels   uint16
	sampleRate uint32
	bitDepth   uint16
	// extension is written when extraSize is non-zero
	extraSize uint16
	validBits uint16
	mask      uint32
	subFormat uint16
}

// buildWav assembles a RIFF/WAVE file with an optional chunk between fmt and
// data.
func buildWav(f fmtFields, extra []byte, payload []byte) []byte {
	fmtBody := make([]byte, 16)
	binary.LittleEndian.PutUint16(fmtBody[0:], f.tag)
	binary.LittleEndian.PutUint16(fmtBody[2:], f.channels)
	binary.LittleEndian.PutUint32(fmtBody[4:], f.sampleRate)
	blockAlign := uint32(f.channels) * uint32(f.bitDepth) / 8
	binary.LittleEndian.PutUint32(fmtBody[8:], f.sampleRate*blockAlign)
	binary.LittleEndian.PutUint16(fmtBody[12:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(fmtBody[14:], f.bitDepth)

	if f.extraSize != 0 {
		ext := make([]byte, 2+int(f.extraSize))
		binary.LittleEndian.PutUint16(ext[0:], f.extraSize)

		if f.extraSize >= 22 {
			binary.LittleEndian.PutUint16(ext[2:], f.validBits)
			binary.LittleEndian.PutUint32(ext[4:], f.mask)
			guid := makeSubFormatGUID(f.subFormat)
			copy(ext[8:24], guid[:])
		}

		fmtBody = append(fmtBody, ext...)
	}

	var out []byte
	out = append(out, "RIFF"...)
	out = binary.LittleEndian.AppendUint32(out, 0)
	out = append(out, "WAVE"...)
	out = append(out, "fmt "...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(fmtBody)))
	out = append(out, fmtBody...)
	out = append(out, extra...)
	out = append(out, "data"...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(payload)))
	out = append(out, payload...)
	binary.LittleEndian.PutUint32(out[4:], uint32(len(out)-8))

	return out
}

func pcmFields(channels uint16, sampleRate uint32, bitDepth uint16) fmtFields {
	return fmtFields{tag: formatTagPCM, channels: channels, sampleRate: sampleRate, bitDepth: bitDepth}
}

func writeTempWav(t *testing.T, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.wav")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	return path
}

// memStream is an in-memory io.ReadWriteSeeker.
type memStream struct {
	data []byte
	pos  int64
}

func newMemStream(data []byte) *memStream {
	return &memStream{data: append([]byte(nil), data...)}
}

func (m *memStream) Read(p []byte) (int, error) {
	if m.pos >= int64(len(m.data)) {
		return 0, io.EOF
	}

	n := copy(p, m.data[m.pos:])
	m.pos += int64(n)

	return n, nil
}

func (m *memStream) Write(p []byte) (int, error) {
	end := m.pos + int64(len(p))
	if end > int64(len(m.data)) {
		m.data = append(m.data, make([]byte, end-int64(len(m.data)))...)
	}

	copy(m.data[m.pos:], p)
	m.pos = end

	return len(p), nil
}

func (m *memStream) Seek(offset int64, whence int) (int64, error) {
	var next int64

	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = m.pos + offset
	case io.SeekEnd:
		next = int64(len(m.data)) + offset
	}

	if next < 0 {
		return 0, errors.New("negative position")
	}

	m.pos = next

	return next, nil
}

// readOnlyStream hides the Write method of a memStream.
type readOnlyStream struct {
	io.ReadSeeker
}

// hugeStream reports a size above the container limit.
type hugeStream struct {
	*memStream
}

func (h hugeStream) Seek(offset int64, whence int) (int64, error) {
	if whence == io.SeekEnd {
		return 1 << 31, nil
	}

	return h.memStream.Seek(offset, whence)
}
