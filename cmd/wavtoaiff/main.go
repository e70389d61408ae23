// This tool converts a wav file into an aiff file and stores it in the same
// folder as the source.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/cwbudde/wavio"
	"github.com/go-audio/aiff"
	"github.com/go-audio/audio"
)

func main() {
	outPath, err := run(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Wav file converted to %s\n", outPath)
}

func run(args []string) (string, error) {
	flagSet := flag.NewFlagSet("wavtoaiff", flag.ContinueOnError)

	flagPath := flagSet.String("path", "", "The path to the wav file to convert to aiff")
	flagBits := flagSet.Int("bits", 0, "bit depth of the aiff file (16, 24 or 32); defaults to the closest match of the source")

	if err := flagSet.Parse(args); err != nil {
		return "", err
	}

	if *flagPath == "" {
		return "", fmt.Errorf("you must set the -path flag")
	}

	sourcePath := *flagPath
	if strings.HasPrefix(sourcePath, "~/") {
		usr, err := user.Current()
		if err != nil {
			return "", fmt.Errorf("failed to get the user home directory: %w", err)
		}

		sourcePath = strings.Replace(sourcePath, "~", usr.HomeDir, 1)
	}

	c, err := wavio.Open(sourcePath)
	if err != nil {
		return "", fmt.Errorf("invalid path %s: %w", sourcePath, err)
	}
	defer c.Close()

	bitDepth := *flagBits
	if bitDepth == 0 {
		bitDepth = aiffBitDepth(c.Header())
	}

	switch bitDepth {
	case 16, 24, 32:
	default:
		return "", fmt.Errorf("%w: unsupported aiff bit depth %d", wavio.ErrArgumentRange, bitDepth)
	}

	outPath := sourcePath[:len(sourcePath)-len(filepath.Ext(sourcePath))] + ".aif"

	outFile, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", outPath, err)
	}
	defer outFile.Close()

	format := c.Format()
	encoder := aiff.NewEncoder(outFile, format.SampleRate, bitDepth, format.NumChannels)

	const bufferSize = 16384

	for c.Channels()[0].Remaining() > 0 {
		intBuf, err := interleave(c, bufferSize, bitDepth)
		if err != nil {
			return "", err
		}

		if err := encoder.Write(intBuf); err != nil {
			return "", fmt.Errorf("failed to write %s: %w", outPath, err)
		}
	}

	if err := encoder.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", outPath, err)
	}

	return outPath, nil
}

// aiffBitDepth picks the aiff resolution for a wav header. 8-bit sources are
// widened since aiff stores them signed.
func aiffBitDepth(h wavio.Header) int {
	switch {
	case h.SampleFormat == wavio.PCM && h.BitDepth > 8 && h.BitDepth <= 32:
		return int(h.BitDepth)
	case h.BitDepth == 8:
		return 16
	default:
		return 24
	}
}

// interleave reads up to frames frames from every channel and packs them
// into one interleaved buffer. Slots without a stream are silent.
func interleave(c *wavio.Container, frames, bitDepth int) (*audio.IntBuffer, error) {
	format := c.Format()
	channels := c.Channels()

	n := int(min(int64(frames), channels[0].Remaining()))
	out := &audio.IntBuffer{
		Format:         format,
		SourceBitDepth: bitDepth,
		Data:           make([]int, n*format.NumChannels),
	}

	for _, s := range channels {
		buf, err := wavio.Read[float64](s, n)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", s.Position(), err)
		}

		for i, v := range buf.AsIntBuffer(format.SampleRate, bitDepth).Data {
			out.Data[i*format.NumChannels+s.Slot()] = v
		}
	}

	return out, nil
}
