// =============================================================================
// rcli - Converter Module
// =============================================================================
//
// This module contains the core conversion logic. It orchestrates the
// pipeline for a single input file, from parsing to the written artifact.
//
// CONVERSION PIPELINE:
//   1. Parse the input (CSV, or XLSX by extension) into a RecordSet
//   2. Encode the RecordSet in the target format
//   3. Write the encoded bytes atomically to the output destination
//
// Every step returns its error to the caller. Nothing is written unless the
// whole document encoded successfully.
//
// =============================================================================

package converter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ginjaninja78/rcli/internal/csvparser"
	"github.com/ginjaninja78/rcli/internal/encoder"
	"github.com/ginjaninja78/rcli/internal/types"
	"github.com/ginjaninja78/rcli/internal/xlsxparser"
	"github.com/ginjaninja78/rcli/pkg/utils"
)

// =============================================================================
// OPTIONS AND RESULT
// =============================================================================

// Options describes one conversion.
type Options struct {
	// Input is the path of the file to convert.
	Input string

	// Output is the destination path, or "-" for stdout.
	Output string

	// Format is the target encoding.
	Format encoder.Format

	// CSV controls delimiter, header and encoding for delimited input.
	CSV csvparser.Settings

	// Sheet selects the worksheet of an XLSX input. Empty means the first.
	Sheet string
}

// Result represents the outcome of converting a single file.
type Result struct {
	// Input is the path to the input file that was processed.
	Input string

	// Output is the path the encoded document was written to.
	Output string

	// Format is the encoding that was produced.
	Format encoder.Format

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	// Rows is the number of data rows converted.
	Rows int

	// Columns is the header width.
	Columns int

	// Bytes is the size of the encoded document.
	Bytes int

	// ProcessingTime is the time taken to convert the file.
	ProcessingTime time.Duration
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter runs conversions. It holds no per-run state and may be reused.
type Converter struct {
	logger *slog.Logger
	stdout io.Writer
}

// New creates a Converter. A nil logger uses slog.Default(); stdout receives
// output when the destination is "-".
func New(logger *slog.Logger, stdout io.Writer) *Converter {
	if logger == nil {
		logger = slog.Default()
	}
	if stdout == nil {
		stdout = os.Stdout
	}
	return &Converter{
		logger: logger.With("component", "converter"),
		stdout: stdout,
	}
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the conversion pipeline for opts.
func (c *Converter) Run(ctx context.Context, opts Options) (Result, error) {
	start := time.Now()
	result := Result{Input: opts.Input, Output: opts.Output, Format: opts.Format}

	// Reject an unusable format before touching the filesystem.
	enc, err := encoder.For(opts.Format)
	if err != nil {
		return result, err
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	c.logger.Debug("parsing input", "input", opts.Input, "format", opts.Format.String())

	rs, err := Load(opts)
	if err != nil {
		return result, fmt.Errorf("convert %s: %w", opts.Input, err)
	}

	result.Stats.Rows = rs.RowCount()
	result.Stats.Columns = rs.ColumnCount()

	var buf bytes.Buffer
	if err := enc.Encode(&buf, rs); err != nil {
		return result, fmt.Errorf("convert %s: %w", opts.Input, err)
	}
	result.Stats.Bytes = buf.Len()

	if err := ctx.Err(); err != nil {
		return result, err
	}

	if err := utils.WriteOutput(opts.Output, buf.Bytes(), c.stdout); err != nil {
		return result, types.NewIOError("write output "+opts.Output, err)
	}

	result.Stats.ProcessingTime = time.Since(start)
	c.logger.Info("converted",
		"input", opts.Input,
		"output", opts.Output,
		"format", opts.Format.String(),
		"rows", result.Stats.Rows,
		"columns", result.Stats.Columns,
		"bytes", result.Stats.Bytes,
		"elapsed", result.Stats.ProcessingTime,
	)

	return result, nil
}

// ConvertReader parses delimited text from r and returns the document encoded
// in format. It backs conversions that never touch the filesystem.
//
// PARAMETERS:
//   - r: The CSV source.
//   - format: The target encoding.
//   - settings: Delimiter, header and encoding of the source.
//
// RETURNS:
//   - The encoded document.
//   - Row, column and size statistics.
//   - A ConfigError for an unusable format or setting, a ParseError for
//     malformed input, or an IOError if r fails.
func ConvertReader(r io.Reader, format encoder.Format, settings csvparser.Settings) ([]byte, ProcessingStats, error) {
	start := time.Now()
	var stats ProcessingStats

	enc, err := encoder.For(format)
	if err != nil {
		return nil, stats, err
	}

	rs, err := csvparser.ParseReader(r, settings)
	if err != nil {
		return nil, stats, err
	}
	stats.Rows = rs.RowCount()
	stats.Columns = rs.ColumnCount()

	var buf bytes.Buffer
	if err := enc.Encode(&buf, rs); err != nil {
		return nil, stats, err
	}
	stats.Bytes = buf.Len()
	stats.ProcessingTime = time.Since(start)

	return buf.Bytes(), stats, nil
}

// Load parses the input of opts, choosing the parser by file extension.
func Load(opts Options) (*types.RecordSet, error) {
	if IsWorkbook(opts.Input) {
		return xlsxparser.Parse(opts.Input, opts.Sheet)
	}
	return csvparser.Parse(opts.Input, opts.CSV)
}

// IsWorkbook reports whether path names an XLSX workbook.
func IsWorkbook(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return true
	}
	return false
}
