package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/mquill/marklint"
	"github.com/mquill/marklint/internal/cli"
)

func main() {
	var path string
	var debug bool
	flag.StringVar(&path, "path", ".", "Markdown file or directory to check")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))

	cfgDir := path
	if info, err := os.Stat(path); err != nil || !info.IsDir() {
		cfgDir = "."
	}
	cfg, err := marklint.LoadConfig(cfgDir)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	processor := cli.NewProcessor(cfg)
	results, err := processor.ProcessPath(path)
	if err != nil {
		fmt.Printf("Error checking path: %v\n", err)
		os.Exit(1)
	}

	clean := 0
	flagged := 0
	for _, r := range results {
		if len(r.Unused) == 0 {
			clean++
			color.Green("  ok %s", marklint.DisplayPath(r.Path))
			continue
		}
		flagged++
		color.Yellow("  !! %s (%d unused)", marklint.DisplayPath(r.Path), len(r.Unused))
	}

	fmt.Printf("Checked %d file(s): %d clean, %d with unused directives\n", len(results), clean, flagged)
}
