package wavio

import "encoding/binary"

const (
	formatTagPCM        = 0x0001
	formatTagIEEEFloat  = 0x0003
	formatTagExtensible = 0xFFFE

	// extensibleExtraSize is the only cbSize accepted for the extension block.
	extensibleExtraSize = 22
)

// Tail of the KSDATAFORMAT_SUBTYPE_* GUIDs; the leading four bytes carry the
// format tag.
var ksSubFormatGUIDTail = [12]byte{0x00, 0x00, 0x10, 0x00, 0x80, 0x00, 0x00, 0xAA, 0x00, 0x38, 0x9B, 0x71}

// SampleFormat is the on-disk sample encoding.
type SampleFormat int

const (
	// Unknown marks a format tag this package cannot decode.
	Unknown SampleFormat = iota
	// PCM is linear integer samples.
	PCM
	// IEEEFloat is IEEE 754 floating-point samples.
	IEEEFloat
)

func (f SampleFormat) String() string {
	switch f {
	case PCM:
		return "PCM"
	case IEEEFloat:
		return "IEEE float"
	default:
		return "unknown"
	}
}

// Tag returns the WAVE format tag for f, or 0 for Unknown.
func (f SampleFormat) Tag() uint16 {
	switch f {
	case PCM:
		return formatTagPCM
	case IEEEFloat:
		return formatTagIEEEFloat
	default:
		return 0
	}
}

func sampleFormatFromTag(tag uint16) SampleFormat {
	switch tag {
	case formatTagPCM:
		return PCM
	case formatTagIEEEFloat:
		return IEEEFloat
	default:
		return Unknown
	}
}

// subFormatTag returns the format tag embedded in an extensible sub-format
// GUID.
func subFormatTag(guid []byte) uint16 {
	return binary.LittleEndian.Uint16(guid[:2])
}

func makeSubFormatGUID(formatTag uint16) [16]byte {
	var guid [16]byte
	binary.LittleEndian.PutUint32(guid[:4], uint32(formatTag))
	copy(guid[4:], ksSubFormatGUIDTail[:])

	return guid
}
