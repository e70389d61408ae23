// This command line tool splits wav files into a low and a high band with a
// Linkwitz-Riley crossover. Summing both bands gives back the source with a
// flat magnitude response.
// All bands are stored in the wavsplit folder by the original files.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/wavio"
	"github.com/cwbudde/wavio/filter"
)

var errNothingToSplit = errors.New("nothing to split")

func main() {
	err := run(os.Args[1:], os.Stdout)
	if errors.Is(err, errNothingToSplit) {
		fmt.Println("You need to pass -file or -dir to indicate what file or folder content to split.")
		os.Exit(1)
	}

	if err != nil {
		log.Fatal(err)
	}
}

func run(args []string, out io.Writer) error {
	flagSet := flag.NewFlagSet("wavsplit", flag.ContinueOnError)
	flagSet.SetOutput(out)

	flagFile := flagSet.String("file", "", "Path to the wave file to split")
	flagDir := flagSet.String("dir", "", "Directory containing all the wav files to split")
	flagCutoff := flagSet.Float64("cutoff", 1000, "crossover frequency in hertz")

	if err := flagSet.Parse(args); err != nil {
		return err
	}

	if *flagFile == "" && *flagDir == "" {
		return errNothingToSplit
	}

	if *flagFile != "" {
		if err := splitFile(*flagFile, *flagCutoff, out); err != nil {
			return fmt.Errorf("something went wrong when splitting %s: %w", *flagFile, err)
		}
	}

	if *flagDir != "" {
		entries, err := os.ReadDir(*flagDir)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", *flagDir, err)
		}

		for _, e := range entries {
			if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".wav") {
				continue
			}

			filePath := filepath.Join(*flagDir, e.Name())
			if err := splitFile(filePath, *flagCutoff, out); err != nil {
				log.Printf("something went wrong splitting %s: %v", filePath, err)
			}
		}
	}

	return nil
}

// band is one output file of a split together with a crossover per channel.
type band struct {
	kind      filter.Kind
	path      string
	container *wavio.Container
	filters   []*filter.Crossover
	energy    []float64
}

const blockSize = 4096

func splitFile(path string, cutoff float64, out io.Writer) (err error) {
	in, err := wavio.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	h := in.Header()
	if cutoff >= float64(h.SampleRate)/2 {
		return fmt.Errorf("%w: cutoff %g Hz is not below the Nyquist frequency", wavio.ErrArgumentRange, cutoff)
	}

	outputDir := filepath.Join(filepath.Dir(path), "wavsplit")
	if err := os.MkdirAll(outputDir, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	var bands []*band

	defer func() {
		for _, b := range bands {
			if cerr := b.container.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("failed to close %s: %w", b.path, cerr)
			}
		}
	}()

	for _, kind := range []filter.Kind{filter.LowPass, filter.HighPass} {
		b, err := newBand(in, filepath.Join(outputDir, name+"-"+suffix(kind)+".wav"), kind)
		if err != nil {
			return err
		}

		bands = append(bands, b)
	}

	for i, s := range in.Channels() {
		for s.Remaining() > 0 {
			block, err := wavio.ReadAvailable[float64](s, blockSize)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", s.Position(), err)
			}

			for _, b := range bands {
				filtered, err := filter.Apply(b.filters[i], block, cutoff)
				if err != nil {
					return err
				}

				b.energy[i] += filter.Energy(filtered)

				dst := b.container.Channels()[i]
				if err := wavio.Write(dst, filtered); err != nil {
					return fmt.Errorf("failed to write %s: %w", b.path, err)
				}
			}
		}
	}

	frames := float64(in.Frames())
	for _, b := range bands {
		fmt.Fprintf(out, "%s band available at %s\n", b.kind, b.path)

		for i, s := range b.container.Channels() {
			rms := 0.0
			if frames > 0 {
				rms = math.Sqrt(b.energy[i] / frames)
			}

			fmt.Fprintf(out, "\t%s\trms %.1f dBFS\n", s.Position(), 20*math.Log10(rms))
		}
	}

	return nil
}

func newBand(in *wavio.Container, path string, kind filter.Kind) (*band, error) {
	h := in.Header()

	c, err := wavio.Create(path, h)
	if err != nil {
		return nil, err
	}

	b := &band{
		kind:      kind,
		path:      path,
		container: c,
		energy:    make([]float64, len(in.Channels())),
	}

	sampleRate := float64(h.SampleRate)

	for range in.Channels() {
		var f *filter.Crossover
		if kind == filter.LowPass {
			f, err = filter.NewLowPass(sampleRate)
		} else {
			f, err = filter.NewHighPass(sampleRate)
		}

		if err != nil {
			c.Close()
			return nil, err
		}

		b.filters = append(b.filters, f)
	}

	return b, nil
}

func suffix(kind filter.Kind) string {
	if kind == filter.HighPass {
		return "high"
	}

	return "low"
}
