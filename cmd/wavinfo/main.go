// This tool prints the format of a wav file and, optionally, the level of
// each of its channels.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"

	"github.com/cwbudde/wavio"
	"gonum.org/v1/gonum/floats"
)

const missingPathMessage = "You must pass the path of the file to inspect"

func main() {
	err := run(os.Args[1:], os.Stdout)
	if err == nil {
		return
	}

	if errors.Is(err, errMissingPath) {
		fmt.Println(missingPathMessage)
		os.Exit(1)
	}

	log.Fatal(err)
}

var errMissingPath = errors.New("missing path argument")

func run(args []string, out io.Writer) error {
	flagSet := flag.NewFlagSet("wavinfo", flag.ContinueOnError)
	flagSet.SetOutput(out)

	levels := flagSet.Bool("levels", false, "scan the payload and print the peak and RMS level of every channel")

	if err := flagSet.Parse(args); err != nil {
		return err
	}

	if flagSet.NArg() < 1 {
		return errMissingPath
	}

	c, err := wavio.Open(flagSet.Arg(0))
	if err != nil {
		return err
	}
	defer c.Close()

	h := c.Header()

	fmt.Fprintf(out, "Format: %s\n", h.SampleFormat)
	fmt.Fprintf(out, "Channels: %d\n", h.Channels)
	fmt.Fprintf(out, "SampleRate: %d\n", h.SampleRate)
	fmt.Fprintf(out, "BitDepth: %d\n", h.BitDepth)
	fmt.Fprintf(out, "ValidBits: %d\n", h.ValidBits)
	fmt.Fprintf(out, "Extensible: %t\n", h.Extensible)
	fmt.Fprintf(out, "ChannelMask: 0x%X (%s)\n", uint32(h.ChannelMask), h.ChannelMask)
	fmt.Fprintf(out, "DataOffset: %d\n", h.DataOffset)
	fmt.Fprintf(out, "AudioLength: %d\n", h.AudioLength)
	fmt.Fprintf(out, "Frames: %d\n", c.Frames())
	fmt.Fprintf(out, "Duration: %s\n", c.Duration())

	for _, s := range c.Channels() {
		if !*levels {
			fmt.Fprintf(out, "\tchannel [%d]:\t%s\n", s.Slot(), s.Position())
			continue
		}

		peak, rms, err := measure(s)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "\tchannel [%d]:\t%s\tpeak %.1f dBFS\trms %.1f dBFS\n", s.Slot(), s.Position(), dbfs(peak), dbfs(rms))
	}

	return nil
}

const blockSize = 8192

// measure returns the linear peak and RMS of a channel.
func measure(s *wavio.ChannelStream) (peak, rms float64, err error) {
	var (
		sumSquares float64
		n          int
	)

	for s.Remaining() > 0 {
		buf, err := wavio.ReadAvailable[float64](s, blockSize)
		if err != nil {
			return 0, 0, err
		}

		peak = max(peak, floats.Max(buf), -floats.Min(buf))

		norm := floats.Norm(buf, 2)
		sumSquares += norm * norm
		n += len(buf)
	}

	if n == 0 {
		return 0, 0, nil
	}

	return peak, math.Sqrt(sumSquares / float64(n)), nil
}

func dbfs(v float64) float64 {
	if v == 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(v)
}
