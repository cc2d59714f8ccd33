package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/FACorreiaa/quote-ingest/internal/domain/quote/extractor"
	"github.com/FACorreiaa/quote-ingest/internal/domain/quote/parser"
	"github.com/FACorreiaa/quote-ingest/internal/domain/quote/service"
	"github.com/FACorreiaa/quote-ingest/pkg/config"
)

// errParseFailed is returned after the parse errors were already printed.
var errParseFailed = errors.New("parse failed")

type options struct {
	xlsx         bool
	extractor    string
	pdftotextBin string
	maxPages     int
	verbose      bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "quoteparse <quote.pdf|quote.txt> [output_dir]",
		Short: "Extract line items from a WAGO quote PDF into CSV",
		Long: `Extract line items from a WAGO quote PDF into CSV.

The CSV is written as quote_<number>_parsed.csv next to the source, or into
output_dir when given. Plain-text dumps (.txt) skip PDF extraction.

Examples:
  quoteparse quote.pdf
  quoteparse quote.pdf ./out --xlsx
  quoteparse quote.pdf --extractor pdftotext`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, opts, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.Flags().BoolVar(&opts.xlsx, "xlsx", false, "also write quote_<number>_parsed.xlsx")
	cmd.Flags().StringVarP(&opts.extractor, "extractor", "e", config.ExtractorPDF, "text extractor (pdf, pdftotext)")
	cmd.Flags().StringVar(&opts.pdftotextBin, "pdftotext-bin", "pdftotext", "pdftotext binary for --extractor pdftotext")
	cmd.Flags().IntVar(&opts.maxPages, "max-pages", 200, "page limit for the built-in extractor (0 = no limit)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log extraction details")
	return cmd
}

func run(cmd *cobra.Command, args []string, opts *options, stdout, stderr io.Writer) error {
	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	var ext extractor.TextExtractor
	switch opts.extractor {
	case config.ExtractorPDF:
		ext = extractor.NewPDFExtractor(logger, opts.maxPages)
	case config.ExtractorPdftotext:
		ext = extractor.NewPdftotextExtractor(opts.pdftotextBin, logger)
	default:
		return fmt.Errorf("unknown extractor %q (want %s or %s)", opts.extractor, config.ExtractorPDF, config.ExtractorPdftotext)
	}

	src := args[0]
	outDir := filepath.Dir(src)
	if len(args) > 1 {
		outDir = args[1]
	}

	svc := service.NewQuoteService(ext, logger)
	result, err := svc.ParseFile(cmd.Context(), src)
	if err != nil || !result.Success {
		for _, e := range result.Errors {
			fmt.Fprintln(stderr, e)
		}
		return errParseFailed
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	csvPath := filepath.Join(outDir, parser.OutputFilename(result.Metadata))
	if err := writeCSV(csvPath, result); err != nil {
		return err
	}

	var xlsxPath string
	if opts.xlsx {
		data, err := service.ExportXLSX(result)
		if err != nil {
			return err
		}
		xlsxPath = filepath.Join(outDir, service.XLSXFilename(result.Metadata))
		if err := os.WriteFile(xlsxPath, data, 0o644); err != nil {
			return fmt.Errorf("failed to write xlsx: %w", err)
		}
	}

	printSummary(stdout, result)
	fmt.Fprintf(stdout, "Saved: %s\n", csvPath)
	if xlsxPath != "" {
		fmt.Fprintf(stdout, "Saved: %s\n", xlsxPath)
	}
	return nil
}

func writeCSV(path string, result *parser.ParseResult) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create csv: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close csv: %w", cerr)
		}
	}()
	return parser.WriteCSV(f, result)
}

func printSummary(w io.Writer, result *parser.ParseResult) {
	meta := result.Metadata
	fmt.Fprintf(w, "Rows: %d\n", len(result.Rows))
	fmt.Fprintf(w, "Quote Number: %s\n", orNone(meta.QuoteNumber))
	fmt.Fprintf(w, "Quote Date: %s\n", orNone(meta.QuoteDate))
	fmt.Fprintf(w, "Expiration Date: %s\n", orNone(meta.ExpirationDate))
	fmt.Fprintf(w, "Customer: %s\n", orNone(meta.CustomerName))

	if len(result.Warnings) == 0 {
		return
	}
	fmt.Fprintf(w, "Warnings: %d\n", len(result.Warnings))
	for _, warn := range result.Warnings {
		if warn.LineNumber != nil {
			fmt.Fprintf(w, "  [%s] line %d: %s\n", warn.Type, *warn.LineNumber, warn.Message)
			continue
		}
		fmt.Fprintf(w, "  [%s] %s\n", warn.Type, warn.Message)
	}
}

func orNone(s *string) string {
	if s == nil {
		return "None"
	}
	return *s
}
