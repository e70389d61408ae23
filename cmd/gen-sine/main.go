package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"github.com/cwbudde/wavio"
	"github.com/cwbudde/wavio/sample"
)

func main() {
	err := run(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	flagSet := flag.NewFlagSet("gen-sine", flag.ContinueOnError)

	output := flagSet.String("output", "output.wav", "filename to write to")
	frequency := flagSet.Float64("frequency", 440, "frequency in hertz to generate")
	length := flagSet.Float64("length", 5, "length in seconds of output file")
	sampleRate := flagSet.Uint("rate", 48000, "sample rate in hertz")
	channels := flagSet.Uint("channels", 1, "number of channels, each carrying the same tone")
	bitDepth := flagSet.Uint("bits", 16, "bit depth of the output")
	float := flagSet.Bool("float", false, "write IEEE float samples instead of PCM")
	gain := flagSet.Float64("gain", 1, "linear amplitude of the tone")

	err := flagSet.Parse(args)
	if err != nil {
		return err
	}

	if *channels == 0 || *channels > math.MaxUint16 || *bitDepth > math.MaxUint16 || *sampleRate > math.MaxUint32 {
		return fmt.Errorf("%w: channels=%d bits=%d rate=%d", wavio.ErrArgumentRange, *channels, *bitDepth, *sampleRate)
	}

	log.Printf("generating a %f sec sine wav at %f hz", *length, *frequency)

	format := wavio.PCM
	if *float {
		format = wavio.IEEEFloat
	}

	c, err := wavio.Create(*output, wavio.Header{
		SampleFormat: format,
		Channels:     uint16(*channels),
		SampleRate:   uint32(*sampleRate),
		BitDepth:     uint16(*bitDepth),
	})
	if err != nil {
		return fmt.Errorf("error creating %s: %w", *output, err)
	}

	numSamples := int(float64(*sampleRate) * *length)
	step := *frequency * 2 * math.Pi / float64(*sampleRate)

	const blockSize = 4096

	block := sample.New[float64](blockSize)

	for off := 0; off < numSamples; off += blockSize {
		n := min(blockSize, numSamples-off)
		for i := range n {
			block[i] = math.Sin(float64(off+i) * step)
		}

		tone := block[:n].Scaled(*gain)
		for _, s := range c.Channels() {
			if err := wavio.Write(s, tone); err != nil {
				c.Close()
				return err
			}
		}
	}

	return c.Close()
}
