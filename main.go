package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/baselswaid/assembler/assembler"
	"github.com/baselswaid/assembler/browser"
	"github.com/baselswaid/assembler/config"
	"github.com/baselswaid/assembler/parser"
	"github.com/baselswaid/assembler/tools"
	"github.com/baselswaid/assembler/writer"
)

// Version information - can be overridden at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

const sourceSuffix = ".as"

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		showHelp    = flag.Bool("help", false, "Show help information")
		configPath  = flag.String("config", "", "Path to config.toml (default: platform config dir)")
		keepAM      = flag.Bool("keep-am", false, "Keep the expanded .am file instead of deleting it on success")
		outputDir   = flag.String("outdir", "", "Directory to write .ob/.ent/.ext files into (default: alongside source)")
		enableXref  = flag.Bool("xref", false, "Write a .xref cross-reference listing")
		enableLint  = flag.Bool("lint", true, "Run lint checks over each source file before assembling")
		enableFmt   = flag.Bool("fmt", false, "Write a column-aligned .fmt listing of the expanded source")
	)

	flag.Parse()

	if *showVersion {
		fmt.Printf("asmtool %s\n", Version)
		if Commit != "unknown" {
			fmt.Printf("Commit: %s\n", Commit)
		}
		if Date != "unknown" {
			fmt.Printf("Built: %s\n", Date)
		}
		os.Exit(0)
	}

	if *showHelp || flag.NArg() == 0 {
		printHelp()
		os.Exit(0)
	}

	if flag.Arg(0) == "browse" {
		if flag.NArg() < 2 {
			fmt.Fprintln(os.Stderr, "browse requires a file argument")
			os.Exit(1)
		}
		if err := browseFile(flag.Arg(1)); err != nil {
			fmt.Fprintf(os.Stderr, "browse: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *keepAM {
		cfg.Assembly.KeepAM = true
	}
	if *outputDir != "" {
		cfg.Assembly.OutputDir = *outputDir
	}
	if *enableXref {
		cfg.Listing.EnableXref = true
	}
	cfg.Listing.EnableLint = *enableLint
	cfg.Listing.EnableFormat = *enableFmt

	failures := 0
	for _, name := range flag.Args() {
		source := name + sourceSuffix
		if _, err := os.Stat(source); os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Skipping %s: file not found\n", source)
			failures++
			continue
		}

		if err := processFile(name, source, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", source, err)
			failures++
			continue
		}

		fmt.Printf("%s assembled successfully\n", source)
	}

	if failures > 0 {
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFrom(path)
}

// processFile runs the full pipeline for one source file: preprocess, first
// pass, second pass, then write whichever of .ob/.ent/.ext apply. Mirrors the
// reference assembler's per-file process_file loop: each stage's failure
// aborts only this file, leaving already-processed files' output intact.
func processFile(baseName, sourcePath string, cfg *config.Config) error {
	raw, err := os.ReadFile(sourcePath) // #nosec G304 -- CLI-provided source path
	if err != nil {
		return fmt.Errorf("reading source: %w", err)
	}
	lines := strings.Split(string(raw), "\n")

	pp := parser.NewPreprocessor()
	expanded, err := pp.Expand(lines, sourcePath)
	if err != nil {
		return fmt.Errorf("preprocessing: %w", err)
	}

	if cfg.Listing.EnableLint {
		if warnings := tools.Lint(expanded); len(warnings) > 0 {
			for _, w := range warnings {
				fmt.Fprintf(os.Stderr, "lint: %s\n", w)
			}
		}
	}

	outDir := cfg.Assembly.OutputDir
	if outDir == "" {
		outDir = filepath.Dir(sourcePath)
	}
	base := filepath.Join(outDir, filepath.Base(baseName))

	if cfg.Assembly.KeepAM {
		amPath := base + ".am"
		var sb strings.Builder
		for _, el := range expanded {
			sb.WriteString(el.Text)
			sb.WriteByte('\n')
		}
		if err := os.WriteFile(amPath, []byte(sb.String()), 0644); err != nil { //nolint:gosec
			return fmt.Errorf("writing .am file: %w", err)
		}
	}

	fp := assembler.NewFirstPass()
	icf, dcf, err := fp.Run(expanded)
	if err != nil {
		return fmt.Errorf("first pass: %w", err)
	}

	sp := assembler.NewSecondPass(fp.Symbols, icf)
	img, err := sp.Run(expanded)
	if err != nil {
		return fmt.Errorf("second pass: %w", err)
	}
	_ = dcf

	if err := writeOutputs(base, img, fp.Symbols); err != nil {
		cleanupOutputs(base)
		return err
	}

	if cfg.Listing.EnableXref {
		if err := tools.WriteXref(base+".xref", fp.Symbols, expanded); err != nil {
			return fmt.Errorf("writing xref: %w", err)
		}
	}

	if cfg.Listing.EnableFormat {
		formatted := tools.Format(expanded, nil)
		if err := os.WriteFile(base+".fmt", []byte(formatted), 0644); err != nil { //nolint:gosec
			return fmt.Errorf("writing fmt listing: %w", err)
		}
	}

	return nil
}

// browseFile assembles name+".as" far enough to build a complete symbol
// table, then opens a read-only TUI over its symbols and formatted listing.
// It never writes .ob/.ent/.ext output.
func browseFile(name string) error {
	source := name + sourceSuffix
	raw, err := os.ReadFile(source) // #nosec G304 -- CLI-provided source path
	if err != nil {
		return fmt.Errorf("reading source: %w", err)
	}
	lines := strings.Split(string(raw), "\n")

	pp := parser.NewPreprocessor()
	expanded, err := pp.Expand(lines, source)
	if err != nil {
		return fmt.Errorf("preprocessing: %w", err)
	}

	fp := assembler.NewFirstPass()
	if _, _, err := fp.Run(expanded); err != nil {
		return fmt.Errorf("first pass: %w", err)
	}

	listing := tools.Format(expanded, nil)
	return browser.New(fp.Symbols, listing).Run()
}

func writeOutputs(base string, img *assembler.Image, symbols *parser.SymbolTable) error {
	obFile, err := os.Create(base + ".ob") // #nosec G304 -- derived from CLI-provided path
	if err != nil {
		return fmt.Errorf("creating .ob file: %w", err)
	}
	defer obFile.Close()
	if err := writer.WriteOB(obFile, img); err != nil {
		return fmt.Errorf("writing .ob file: %w", err)
	}

	if writer.HasEntries(symbols) {
		entFile, err := os.Create(base + ".ent") // #nosec G304
		if err != nil {
			return fmt.Errorf("creating .ent file: %w", err)
		}
		defer entFile.Close()
		if err := writer.WriteEnt(entFile, symbols); err != nil {
			return fmt.Errorf("writing .ent file: %w", err)
		}
	}

	if writer.HasExterns(img) {
		extFile, err := os.Create(base + ".ext") // #nosec G304
		if err != nil {
			return fmt.Errorf("creating .ext file: %w", err)
		}
		defer extFile.Close()
		if err := writer.WriteExt(extFile, img); err != nil {
			return fmt.Errorf("writing .ext file: %w", err)
		}
	}

	return nil
}

// cleanupOutputs removes any .ob/.ent/.ext file left behind by a failed
// writeOutputs call, so a half-written object file never survives a failed
// assembly.
func cleanupOutputs(base string) {
	for _, ext := range []string{".ob", ".ent", ".ext"} {
		_ = os.Remove(base + ext)
	}
}

func printHelp() {
	fmt.Printf(`asmtool %s

Usage: asmtool [options] <file> [file...]
       asmtool browse <file>

Each <file> is given without its .as suffix; a missing source file is
skipped with a warning rather than aborting the whole batch.

"browse <file>" opens a read-only terminal viewer over the file's symbol
table and formatted listing. It writes no output files.

Options:
  -help         Show this help message
  -version      Show version information
  -config PATH  Load settings from a specific config.toml
  -keep-am      Keep the expanded .am file instead of deleting it
  -outdir DIR   Write .ob/.ent/.ext files into DIR (default: alongside source)
  -xref         Write a .xref cross-reference listing
  -lint         Run lint checks before assembling (default: true)

Examples:
  asmtool program
  asmtool -xref -outdir build prog1 prog2
`, Version)
}
