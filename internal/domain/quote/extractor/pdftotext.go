package extractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Runner lets tests stub external commands.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct {
	logger *slog.Logger
}

func (r execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	dur := time.Since(start)

	if err != nil {
		r.logger.Error("exec failed",
			"cmd", name,
			"args", strings.Join(args, " "),
			"duration_ms", dur.Milliseconds(),
			"error", err,
			"stderr", truncate(errb.String(), 8<<10),
		)
	} else {
		r.logger.Debug("exec ok",
			"cmd", name,
			"args", strings.Join(args, " "),
			"duration_ms", dur.Milliseconds(),
			"stdout_bytes", out.Len(),
			"stderr_bytes", errb.Len(),
		)
	}

	return out.Bytes(), errb.Bytes(), err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "...(truncated)"
}

// PdftotextExtractor shells out to poppler's pdftotext in layout mode, which
// keeps table columns apart with runs of spaces.
type PdftotextExtractor struct {
	bin    string
	runner Runner
	logger *slog.Logger
}

// NewPdftotextExtractor creates an extractor for the given binary name or path.
// An empty bin means "pdftotext" on PATH.
func NewPdftotextExtractor(bin string, logger *slog.Logger) *PdftotextExtractor {
	if bin == "" {
		bin = "pdftotext"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PdftotextExtractor{bin: bin, runner: execRunner{logger: logger}, logger: logger}
}

// WithRunner replaces the command runner.
func (e *PdftotextExtractor) WithRunner(r Runner) *PdftotextExtractor {
	e.runner = r
	return e
}

// Extract implements TextExtractor.
func (e *PdftotextExtractor) Extract(ctx context.Context, data []byte) (Extraction, error) {
	if Sniff(data) != FormatPDF {
		return Extraction{}, ErrInvalidSource
	}

	start := time.Now()

	tmp, err := os.CreateTemp("", "quote-*.pdf")
	if err != nil {
		return Extraction{}, fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return Extraction{}, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return Extraction{}, fmt.Errorf("close temp file: %w", err)
	}

	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	stdout, stderr, err := e.runner.Run(ctx, e.bin, "-layout", "-enc", "UTF-8", "-eol", "unix", tmp.Name(), "-")
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Extraction{}, ctxErr
		}
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return Extraction{}, fmt.Errorf("pdftotext unavailable: %w", err)
		}
		return Extraction{}, fmt.Errorf("%w: %s", ErrInvalidSource, strings.TrimSpace(truncate(string(stderr), 512)))
	}

	text := string(stdout)
	if strings.TrimSpace(text) == "" {
		return Extraction{}, ErrNoText
	}

	// pdftotext ends every page with a form feed.
	pages := strings.Count(text, "\f")
	if !strings.HasSuffix(text, "\f") {
		pages++
	}
	text = strings.TrimRight(text, "\f")

	return Extraction{
		Text:     strings.ReplaceAll(text, "\f", "\n"),
		Pages:    pages,
		Method:   MethodPdftotext,
		Duration: time.Since(start),
	}, nil
}
