package main

import (
	"flag"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/palantir/stacktrace"
	log "github.com/sirupsen/logrus"

	"rsm/handler"
	"rsm/pngDecoder"
	"rsm/utils"
)

func main() {
	output := flag.String("o", "", "output path (default: input path with the format's extension)")
	format := flag.String("format", "ppm", "output format: "+strings.Join(utils.Formats, ", "))
	maxBytes := flag.Uint64("max-bytes", pngDecoder.DefaultMaxDecodedBytes, "largest inflated image payload to accept")
	verbose := flag.Bool("v", false, "log every chunk and decode stage")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <image.png>\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	stacktrace.DefaultFormat = stacktrace.FormatBrief
	log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	opts := &pngDecoder.Options{MaxDecodedBytes: *maxBytes}
	handler.Register("png", func(data []byte) (image.Image, error) {
		img, err := pngDecoder.Decode(data, opts)
		if err != nil {
			return nil, err
		}
		return img, nil
	})

	inputPath := flag.Arg(0)
	img, err := handler.ReadFile(inputPath)
	if err != nil {
		entry := log.WithError(err).WithField("path", inputPath)
		if kind := pngDecoder.Kind(err); kind != 0 {
			entry = entry.WithField("kind", kind.String())
		}
		entry.Fatal("decode failed")
	}

	if p, ok := img.(*pngDecoder.Image); ok {
		log.WithFields(log.Fields{
			"width":      p.Width,
			"height":     p.Height,
			"bit_depth":  p.BitDepth,
			"color_type": p.ColorType.String(),
		}).Info("decoded")
		for el := p.Ancillary.Front(); el != nil; el = el.Next() {
			log.WithFields(log.Fields{"chunk": el.Key, "count": el.Value}).Debug("skipped ancillary chunk")
		}
	}

	outPath := *output
	if outPath == "" {
		outPath = strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + "." + strings.ToLower(*format)
	}
	if err := utils.WriteImage(outPath, *format, img); err != nil {
		log.WithError(err).WithField("path", outPath).Fatal("write failed")
	}
	log.WithField("path", outPath).Info("wrote image")
}
