package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/anthonynsimon/bild/imgio"

	"github.com/ironsheep/scan-overlay-mcp/internal/config"
	"github.com/ironsheep/scan-overlay-mcp/internal/detection"
	"github.com/ironsheep/scan-overlay-mcp/internal/imaging"
	"github.com/ironsheep/scan-overlay-mcp/internal/pipeline"
	"github.com/ironsheep/scan-overlay-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("scan-overlay-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printHelp()
			return
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	if len(os.Args) > 1 && os.Args[1] == "render" {
		if err := render(cfg, os.Args[2:]); err != nil {
			log.Fatalf("Render failed: %v", err)
		}
		return
	}

	if cfg.Debug {
		log.Printf("Scan Overlay MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	srv := server.NewWithConfig(cfg)
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func printHelp() {
	fmt.Println("scan-overlay-mcp - MCP server for diagnostic scan overlays")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  scan-overlay-mcp [options]")
	fmt.Println("  scan-overlay-mcp render -in scan.png -out overlay.png [-positive] [-confidence 0.9]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  SCAN_OVERLAY_LOG_LEVEL=debug     Enable debug logging")
	fmt.Println("  SCAN_OVERLAY_BOX_COLOR=#FF4D4D   Region outline color")
	fmt.Println("  SCAN_OVERLAY_ANNOTATE=false      Do not outline regions on overlays")
	fmt.Println("  SCAN_OVERLAY_JITTER_SEED=42      Reproducible region confidence")
	fmt.Println("  SCAN_OVERLAY_MAX_CACHE=32        Number of decoded images to cache")
	fmt.Println()
	fmt.Println("Without a command the server communicates via MCP protocol over stdin/stdout.")
}

// render runs the pipeline once on a file, writes the overlay as PNG and
// prints the regions as JSON on stdout.
func render(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	in := fs.String("in", "", "input scan image")
	out := fs.String("out", "overlay.png", "output PNG path")
	positive := fs.Bool("positive", false, "classification result")
	confidence := fs.Float64("confidence", 0.5, "classifier confidence (0-1)")
	annotate := fs.Bool("annotate", cfg.Annotate, "outline detected regions")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		fs.Usage()
		return fmt.Errorf("-in is required")
	}

	data, err := os.ReadFile(*in)
	if err != nil {
		return fmt.Errorf("failed to open image: %w", err)
	}
	img, err := imaging.DecodeBytes(data)
	if err != nil {
		return err
	}

	var jitter detection.Jitter
	if cfg.JitterSeed != nil {
		jitter = detection.NewSeededJitter(*cfg.JitterSeed)
	}
	res, err := pipeline.New(detection.NewDetector(jitter)).Process(pipeline.Input{
		Image:           img.Buffer,
		Positive:        *positive,
		Confidence:      *confidence,
		ReferenceLength: img.EncodedLen,
	})
	if err != nil {
		return err
	}

	composite := res.Composite
	if *annotate {
		if composite, err = pipeline.Annotate(composite, res.Regions, cfg.BoxColor); err != nil {
			return err
		}
	}
	if err := imgio.Save(*out, composite.NRGBA(), imgio.PNGEncoder()); err != nil {
		return fmt.Errorf("failed to save overlay: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res.Regions)
}
