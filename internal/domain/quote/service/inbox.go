package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/FACorreiaa/quote-ingest/pkg/storage"
)

// Inbox subdirectories. Processed sources are moved out of the inbox root so a
// sweep never sees the same file twice.
const (
	InboxProcessedDir = "processed"
	InboxFailedDir    = "failed"
	inboxNamespace    = "inbox"
)

var inboxExts = map[string]struct{}{".pdf": {}, ".txt": {}}

// InboxFile is the outcome for one swept file.
type InboxFile struct {
	Path         string `json:"path"`
	QuoteNumber  string `json:"quote_number,omitempty"`
	Success      bool   `json:"success"`
	RowsImported int    `json:"rows_imported"`
	StoredID     string `json:"stored_id,omitempty"`
	Err          string `json:"error,omitempty"`
}

// InboxStats aggregates a sweep.
type InboxStats struct {
	Scanned   int `json:"scanned"`
	Matched   int `json:"matched"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// InboxSweeper parses every quote dropped into a directory, persists it and
// moves it aside.
type InboxSweeper struct {
	svc     *QuoteService
	dir     string
	archive storage.Storage // Optional: copies sources before they are moved
	logger  *slog.Logger
}

// NewInboxSweeper creates a sweeper over dir.
func NewInboxSweeper(svc *QuoteService, dir string, logger *slog.Logger) *InboxSweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &InboxSweeper{svc: svc, dir: dir, logger: logger}
}

// WithArchive stores every swept source in archive.
func (w *InboxSweeper) WithArchive(archive storage.Storage) *InboxSweeper {
	w.archive = archive
	return w
}

// Sweep processes the files directly inside the inbox directory. Per-file
// failures are reported in the results and never stop the sweep.
func (w *InboxSweeper) Sweep(ctx context.Context) ([]InboxFile, InboxStats, error) {
	if strings.TrimSpace(w.dir) == "" {
		return nil, InboxStats{}, errors.New("inbox directory is required")
	}

	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return nil, InboxStats{}, fmt.Errorf("read inbox: %w", err)
	}

	var results []InboxFile
	var stats InboxStats

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return results, stats, err
		}

		stats.Scanned++
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if _, ok := inboxExts[strings.ToLower(filepath.Ext(entry.Name()))]; !ok {
			continue
		}
		stats.Matched++

		res := w.processFile(ctx, filepath.Join(w.dir, entry.Name()))
		results = append(results, res)
		if res.Success {
			stats.Succeeded++
		} else {
			stats.Failed++
		}
	}

	w.logger.Info("inbox sweep completed",
		"dir", w.dir,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
	)

	return results, stats, nil
}

func (w *InboxSweeper) processFile(ctx context.Context, path string) InboxFile {
	res := InboxFile{Path: path}
	name := filepath.Base(path)

	data, err := os.ReadFile(path)
	if err != nil {
		res.Err = err.Error()
		w.logger.Warn("failed to read inbox file", "path", path, slog.Any("error", err))
		return res
	}

	result, err := w.svc.ParseBytes(ctx, name, data)
	if err != nil {
		res.Err = err.Error()
		return res
	}
	if result.Metadata.QuoteNumber != nil {
		res.QuoteNumber = *result.Metadata.QuoteNumber
	}
	if !result.Success {
		res.Err = strings.Join(result.Errors, "; ")
	}

	if result.Success && w.svc.Persists() {
		imported, err := w.svc.Import(ctx, name, result)
		if err != nil {
			res.Err = err.Error()
		} else {
			res.RowsImported = imported.RowsImported
			if imported.RowsFailed > 0 {
				res.Err = strings.Join(imported.Errors, "; ")
			}
		}
	}
	res.Success = res.Err == ""

	if w.archive != nil {
		info, err := w.archive.Upload(ctx, inboxNamespace, name, contentType(name), bytes.NewReader(data))
		if err != nil {
			w.logger.Warn("failed to archive inbox file", "path", path, slog.Any("error", err))
		} else {
			res.StoredID = info.ID.String()
		}
	}

	target := InboxProcessedDir
	if !res.Success {
		target = InboxFailedDir
	}
	if err := moveInto(path, filepath.Join(w.dir, target)); err != nil {
		w.logger.Error("failed to move inbox file", "path", path, "target", target, slog.Any("error", err))
	}

	return res
}

func moveInto(path, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.Rename(path, filepath.Join(dir, filepath.Base(path)))
}

func contentType(name string) string {
	if strings.EqualFold(filepath.Ext(name), ".txt") {
		return "text/plain"
	}
	return "application/pdf"
}
