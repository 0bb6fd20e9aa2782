package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/bubbleseg/internal/config"
	"github.com/ironsheep/bubbleseg/internal/detection"
	"github.com/ironsheep/bubbleseg/internal/imaging"
	"github.com/ironsheep/bubbleseg/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "bubbleseg - locate speech bubbles and segment their glyphs")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  bubbleseg [options] <image> <x> <y>   Print glyph boxes of the bubble at (x, y) as JSON")
	fmt.Fprintln(w, "  bubbleseg [options] <image>           Scan the page and write an overlay PNG")
	fmt.Fprintln(w, "  bubbleseg [options] serve             Run the MCP server on stdin/stdout")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fmt.Fprintln(w, "  --config <file>   YAML configuration file")
	fmt.Fprintln(w, "  --output <file>   Overlay path for page scans (default from config)")
	fmt.Fprintln(w, "  --json            Also print the scan report as JSON")
	fmt.Fprintln(w, "  --labels          Number bubbles on the overlay")
	fmt.Fprintln(w, "  --version, -v     Print version information")
	fmt.Fprintln(w, "  --help, -h        Print this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment variables:")
	fmt.Fprintf(w, "  %s=debug    Set the log level\n", config.EnvLogLevel)
	fmt.Fprintf(w, "  %s=<dir>    Dump every pipeline stage as PNG into <dir>\n", config.EnvDebugDir)
}

func run(args []string, stdout, stderr io.Writer) int {
	// Handle --version and -v flags
	if len(args) > 0 {
		switch args[0] {
		case "--version", "-v", "version":
			fmt.Fprintf(stdout, "bubbleseg %s\n", Version)
			fmt.Fprintf(stdout, "  Build time: %s\n", BuildTime)
			fmt.Fprintf(stdout, "  Git commit: %s\n", GitCommit)
			return 0
		case "--help", "-h", "help":
			printUsage(stdout)
			return 0
		}
	}

	fs := flag.NewFlagSet("bubbleseg", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { printUsage(stderr) }
	configPath := fs.String("config", "", "YAML configuration file")
	output := fs.String("output", "", "overlay output path")
	asJSON := fs.Bool("json", false, "print the scan report as JSON")
	labels := fs.Bool("labels", false, "number bubbles on the overlay")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "configuration error: %v\n", err)
		return 1
	}
	log := cfg.NewLogger()
	log.SetOutput(stderr)
	if *output != "" {
		cfg.Overlay.Output = *output
	}
	if *labels {
		cfg.Overlay.Labels = true
	}

	rest := fs.Args()
	if len(rest) == 1 && rest[0] == "serve" {
		log.Debugf("bubbleseg MCP server %s (built %s, commit %s)", Version, BuildTime, GitCommit)
		srv, err := server.New(cfg, log)
		if err != nil {
			log.WithError(err).Error("failed to start server")
			return 1
		}
		if err := srv.Run(); err != nil {
			log.WithError(err).Error("server error")
			return 1
		}
		return 0
	}

	if len(rest) != 1 && len(rest) != 3 {
		printUsage(stderr)
		return 2
	}

	opts := []detection.Option{detection.WithLogger(log)}
	if cfg.Debug.Enabled {
		dw, err := imaging.NewDebugWriter(cfg.Debug.Dir, cfg.Debug.Scale, cfg.Detection.CharMargin, log)
		if err != nil {
			log.WithError(err).Error("failed to enable debug output")
			return 1
		}
		opts = append(opts, detection.WithObserver(dw))
	}
	seg, err := detection.NewSegmenter(cfg.Detection, opts...)
	if err != nil {
		log.WithError(err).Error("invalid configuration")
		return 1
	}

	log.Debug("reading image file")
	cache := imaging.NewImageCache()
	grid, err := cache.LoadGrid(rest[0])
	if err != nil {
		log.WithError(err).WithField("path", rest[0]).Error("error in file name")
		return 1
	}

	if len(rest) == 3 {
		return findText(seg, grid, rest[1], rest[2], stdout, log)
	}
	return scanPage(seg, cache, grid, rest[0], cfg.Overlay, *asJSON, stdout, log)
}

// findText prints the seeded bubble's boxes as a JSON array. Nothing is
// printed when no bubble is found.
func findText(seg *detection.Segmenter, grid *detection.PixelGrid, xs, ys string, stdout io.Writer, log logrus.FieldLogger) int {
	x, errX := strconv.Atoi(xs)
	y, errY := strconv.Atoi(ys)
	if errX != nil || errY != nil {
		log.WithFields(logrus.Fields{"x": xs, "y": ys}).Error("coordinates must be integers")
		return 2
	}

	res, err := seg.FindText(grid, x, y)
	if err != nil {
		log.WithError(err).Error("search failed")
		return 1
	}
	if !res.Found {
		return 0
	}
	if err := json.NewEncoder(stdout).Encode(res.Boxes); err != nil {
		log.WithError(err).Error("failed to write result")
		return 1
	}
	return 0
}

// scanPage segments every bubble on the page and writes the overlay image.
func scanPage(seg *detection.Segmenter, cache *imaging.ImageCache, grid *detection.PixelGrid, path string,
	overlay config.OverlayConfig, asJSON bool, stdout io.Writer, log logrus.FieldLogger) int {
	report := seg.ScanPage(grid)

	page, err := cache.Load(path)
	if err != nil {
		log.WithError(err).Error("failed to reload page")
		return 1
	}
	canvas, res, err := imaging.RenderOverlay(page, report.Bubbles, imaging.OverlayOptions{
		BoxColor: overlay.Color,
		Margin:   seg.Params().CharMargin,
		Labels:   overlay.Labels,
	})
	if err != nil {
		log.WithError(err).Error("failed to render overlay")
		return 1
	}
	if err := imaging.SaveOverlay(overlay.Output, canvas); err != nil {
		log.WithError(err).Error("failed to write overlay")
		return 1
	}
	log.WithFields(logrus.Fields{
		"output":  overlay.Output,
		"bubbles": res.Bubbles,
		"boxes":   res.Boxes,
	}).Info("overlay written")

	if asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			log.WithError(err).Error("failed to write report")
			return 1
		}
	}
	return 0
}
