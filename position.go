package wavio

import (
	"math/bits"
	"strings"
)

// ChannelPosition is a speaker position flag. Values combine into a channel
// mask using the WAVE_FORMAT_EXTENSIBLE bit layout.
type ChannelPosition uint32

const (
	FrontLeft          ChannelPosition = 0x1
	FrontRight         ChannelPosition = 0x2
	FrontCenter        ChannelPosition = 0x4
	LowFrequency       ChannelPosition = 0x8
	BackLeft           ChannelPosition = 0x10
	BackRight          ChannelPosition = 0x20
	FrontLeftOfCenter  ChannelPosition = 0x40
	FrontRightOfCenter ChannelPosition = 0x80
	BackCenter         ChannelPosition = 0x100
	SideLeft           ChannelPosition = 0x200
	SideRight          ChannelPosition = 0x400
	TopCenter          ChannelPosition = 0x800
	TopFrontLeft       ChannelPosition = 0x1000
	TopFrontCenter     ChannelPosition = 0x2000
	TopFrontRight      ChannelPosition = 0x4000
	TopBackLeft        ChannelPosition = 0x8000
	TopBackCenter      ChannelPosition = 0x10000
	TopBackRight       ChannelPosition = 0x20000

	// Mono marks a single-channel container without a speaker mask. It never
	// combines with the speaker flags and is never written to disk.
	Mono ChannelPosition = 1 << 31

	// EightChannelMask is the mask assumed for 8-channel containers that do
	// not declare one.
	EightChannelMask ChannelPosition = 0x33F
)

// speakerPositions lists every speaker flag in declaration order.
var speakerPositions = [...]ChannelPosition{
	FrontLeft,
	FrontRight,
	FrontCenter,
	LowFrequency,
	BackLeft,
	BackRight,
	FrontLeftOfCenter,
	FrontRightOfCenter,
	BackCenter,
	SideLeft,
	SideRight,
	TopCenter,
	TopFrontLeft,
	TopFrontCenter,
	TopFrontRight,
	TopBackLeft,
	TopBackCenter,
	TopBackRight,
}

var positionNames = map[ChannelPosition]string{
	FrontLeft:          "FrontLeft",
	FrontRight:         "FrontRight",
	FrontCenter:        "FrontCenter",
	LowFrequency:       "LowFrequency",
	BackLeft:           "BackLeft",
	BackRight:          "BackRight",
	FrontLeftOfCenter:  "FrontLeftOfCenter",
	FrontRightOfCenter: "FrontRightOfCenter",
	BackCenter:         "BackCenter",
	SideLeft:           "SideLeft",
	SideRight:          "SideRight",
	TopCenter:          "TopCenter",
	TopFrontLeft:       "TopFrontLeft",
	TopFrontCenter:     "TopFrontCenter",
	TopFrontRight:      "TopFrontRight",
	TopBackLeft:        "TopBackLeft",
	TopBackCenter:      "TopBackCenter",
	TopBackRight:       "TopBackRight",
	Mono:               "Mono",
}

// ResolveMask returns the channel mask for a container. A non-zero explicit
// mask is used verbatim, even when its population does not match channels.
// Otherwise the mask is inferred: Mono for one channel, EightChannelMask for
// eight, and the first channels speaker flags in declaration order for
// anything else.
func ResolveMask(channels uint16, explicit uint32) ChannelPosition {
	if explicit != 0 {
		return ChannelPosition(explicit)
	}

	return DefaultMask(channels)
}

// DefaultMask is the mask inferred for a container that does not declare one.
func DefaultMask(channels uint16) ChannelPosition {
	switch channels {
	case 0:
		return 0
	case 1:
		return Mono
	case 8:
		return EightChannelMask
	}

	var mask ChannelPosition
	for i := 0; i < int(channels) && i < len(speakerPositions); i++ {
		mask |= speakerPositions[i]
	}

	return mask
}

// Positions expands the mask into single positions in ascending bit order.
func (p ChannelPosition) Positions() []ChannelPosition {
	if p == Mono {
		return []ChannelPosition{Mono}
	}

	out := make([]ChannelPosition, 0, bits.OnesCount32(uint32(p)))
	for rest := uint32(p); rest != 0; rest &= rest - 1 {
		out = append(out, ChannelPosition(rest&-rest))
	}

	return out
}

// Count returns the number of positions in the mask.
func (p ChannelPosition) Count() int {
	if p == Mono {
		return 1
	}

	return bits.OnesCount32(uint32(p))
}

// Has reports whether every position in q is part of p.
func (p ChannelPosition) Has(q ChannelPosition) bool {
	return q != 0 && p&q == q
}

func (p ChannelPosition) String() string {
	if name, ok := positionNames[p]; ok {
		return name
	}

	if p == 0 {
		return "None"
	}

	names := make([]string, 0, p.Count())
	for _, pos := range p.Positions() {
		if name, ok := positionNames[pos]; ok {
			names = append(names, name)
		} else {
			names = append(names, "Reserved")
		}
	}

	return strings.Join(names, "|")
}
