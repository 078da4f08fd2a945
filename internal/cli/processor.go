package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/mquill/marklint"
)

const (
	maxFiles   = 500
	maxWorkers = 4
)

// FileResult is the outcome of checking one markdown file.
type FileResult struct {
	// Absolute path of the checked file
	Path string
	// Unused directives found, in document order
	Unused []marklint.Unused
	// Per-file failure (I/O, internal formatting error). Never set for
	// documents that merely contain unused directives.
	Error error
}

type Processor struct {
	parser      *marklint.Parser
	admonitions *marklint.Admonitions
	checker     *marklint.Checker
	cfg         marklint.Config
}

func NewProcessor(cfg marklint.Config, opts ...marklint.CheckerOption) *Processor {
	checkerOpts := append([]marklint.CheckerOption{marklint.WithSupportURL(cfg.SupportURL)}, opts...)
	return &Processor{
		parser:      marklint.NewParser(),
		admonitions: marklint.NewAdmonitions(cfg.Admonitions...),
		checker:     marklint.NewChecker(checkerOpts...),
		cfg:         cfg,
	}
}

// ProcessPath checks a single markdown file, or every markdown file under a
// directory. Results are sorted by path for stable output.
func (p *Processor) ProcessPath(path string) ([]FileResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing path: %w", err)
	}

	if info.IsDir() {
		return p.processDirectory(path)
	}

	result := p.processFile(path)
	if result.Error != nil {
		return nil, result.Error
	}
	return []FileResult{result}, nil
}

// findFiles walks the directory tree starting at root and returns markdown
// files matching the configured extensions.
//
// If a .git directory is found, .gitignore patterns are honored.
func (p *Processor) findFiles(root string) ([]string, error) {
	var files []string
	var patterns []gitignore.Pattern

	if _, err := os.Stat(filepath.Join(root, ".git")); err == nil {
		patterns = append(patterns, gitignore.ParsePattern(".git/", nil))

		if data, err := os.ReadFile(filepath.Join(root, ".gitignore")); err == nil {
			for _, p := range strings.Split(string(data), "\n") {
				if p = strings.TrimSpace(p); p != "" && !strings.HasPrefix(p, "#") {
					patterns = append(patterns, gitignore.ParsePattern(p, nil))
				}
			}
		}
	}

	matcher := gitignore.NewMatcher(patterns)

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		if len(patterns) > 0 {
			pathComponents := strings.Split(relPath, string(os.PathSeparator))
			if matcher.Match(pathComponents, info.IsDir()) {
				if info.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}

		if !info.IsDir() && p.isMarkdown(path) {
			if len(files) >= maxFiles {
				return fmt.Errorf("max files limit reached (%d)", maxFiles)
			}
			files = append(files, path)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no markdown files (%s) found", strings.Join(p.cfg.Extensions, ", "))
	}

	return files, nil
}

func (p *Processor) isMarkdown(path string) bool {
	for _, ext := range p.cfg.Extensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

func (p *Processor) processDirectory(root string) ([]FileResult, error) {
	startTime := time.Now()
	slog.Debug("starting directory check", "path", root)

	files, err := p.findFiles(root)
	if err != nil {
		return nil, err
	}

	slog.Debug("found files to check", "count", len(files), "duration", time.Since(startTime))

	jobs := make(chan string, len(files))
	results := make(chan FileResult, len(files))

	var wg sync.WaitGroup
	for i := 0; i < maxWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				results <- p.processFile(path)
			}
		}()
	}

	for _, file := range files {
		jobs <- file
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	var failures int
	var fileResults []FileResult

	for result := range results {
		if result.Error != nil {
			failures++
			slog.Debug("failed to check file", "path", result.Path, "error", result.Error)
			continue
		}
		fileResults = append(fileResults, result)
	}

	if failures > 0 {
		return nil, fmt.Errorf("encountered %d errors during checking. Please rerun with -debug to see trace", failures)
	}

	sort.Slice(fileResults, func(i, j int) bool { return fileResults[i].Path < fileResults[j].Path })

	slog.Debug("check completed", "duration", time.Since(startTime), "checked", len(fileResults))
	return fileResults, nil
}

func (p *Processor) processFile(path string) FileResult {
	startTime := time.Now()
	var result FileResult

	absPath, err := filepath.Abs(path)
	if err != nil {
		result.Error = fmt.Errorf("failed to resolve absolute path: %w", err)
		return result
	}
	result.Path = absPath

	slog.Debug("checking file", "path", absPath)

	f, err := os.Open(absPath)
	if err != nil {
		result.Error = fmt.Errorf("error reading file: %w", err)
		return result
	}
	defer f.Close()

	doc, err := p.parser.ParseMarkdownDoc(f, marklint.MetaData{
		Source: path,
		Build:  marklint.BuildClient,
	})
	if err != nil {
		result.Error = fmt.Errorf("parse error: %w", err)
		return result
	}

	p.admonitions.Process(doc)

	unused, err := p.checker.Check(doc)
	if err != nil {
		result.Error = err
		return result
	}
	result.Unused = unused

	slog.Debug("file checked",
		"path", absPath,
		"unused", len(unused),
		"duration", time.Since(startTime))

	return result
}
