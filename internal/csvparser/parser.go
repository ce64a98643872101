// =============================================================================
// rcli - CSV Parser Module
// =============================================================================
//
// This module is responsible for reading delimited text files into a
// RecordSet. It handles:
//   - Different delimiters (comma, pipe, tab, semicolon, any single rune)
//   - Optional header row (synthesized Column_N names when absent)
//   - Non UTF-8 encodings (decoded through golang.org/x/text)
//   - Strict row width: a short or long row is rejected, never padded
//
// The whole file is loaded into memory. This is not a streaming engine.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/ginjaninja78/rcli/internal/types"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// =============================================================================
// SETTINGS
// =============================================================================

// Settings controls how a delimited file is read.
type Settings struct {
	// Delimiter is the field separator token. Accepts a single rune or one of
	// the aliases "tab", "pipe", "semicolon", "comma" (and "\t" written out).
	// Default: ","
	Delimiter string

	// Header reports whether the first row names the columns.
	// When false, names are synthesized as Column_1..Column_N.
	Header bool

	// Encoding is a WHATWG encoding label such as "utf-8", "iso-8859-1" or
	// "windows-1252". Default: "utf-8"
	Encoding string
}

// DefaultSettings returns comma-delimited UTF-8 input with a header row.
func DefaultSettings() Settings {
	return Settings{
		Delimiter: ",",
		Header:    true,
		Encoding:  "utf-8",
	}
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a delimited file and returns the parsed records.
//
// PARAMETERS:
//   - filePath: The path to the CSV file.
//   - settings: Delimiter, header and encoding settings.
//
// RETURNS:
//   - The RecordSet, header included.
//   - An ErrIO error if the file cannot be opened, ErrParse if a row is
//     malformed, ErrConfig if the settings are invalid.
func Parse(filePath string, settings Settings) (*types.RecordSet, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, types.NewIOError("open input", err)
	}
	defer file.Close()

	rs, err := ParseReader(bufio.NewReader(file), settings)
	if err != nil {
		return nil, err
	}
	rs.SourceFile = filePath

	return rs, nil
}

// ParseReader reads delimited text from r. It is the in-memory entry point
// used by the HTTP API.
func ParseReader(r io.Reader, settings Settings) (*types.RecordSet, error) {
	comma, err := ResolveDelimiter(settings.Delimiter)
	if err != nil {
		return nil, err
	}

	decoded, err := decodeReader(r, settings.Encoding)
	if err != nil {
		return nil, err
	}

	csvReader := csv.NewReader(decoded)
	configureReader(csvReader, comma)

	allRows, err := csvReader.ReadAll()
	if err != nil {
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			return nil, types.NewParseError(fmt.Sprintf("read CSV line %d", perr.Line), perr.Err)
		}
		return nil, types.NewIOError("read CSV", err)
	}

	if len(allRows) == 0 {
		return nil, types.NewParseError("read CSV", errors.New("file is empty: no header row"))
	}

	header, dataRows := splitHeader(allRows, settings.Header)
	if err := types.CheckHeader(header); err != nil {
		return nil, err
	}

	rs := types.NewRecordSet(header, "")
	for _, row := range dataRows {
		rs.Append(row)
	}

	return rs, nil
}

// ResolveDelimiter maps a delimiter token to the rune used by encoding/csv.
func ResolveDelimiter(token string) (rune, error) {
	switch strings.ToLower(token) {
	case "", ",", "comma":
		return ',', nil
	case "\\t", "\t", "tab":
		return '\t', nil
	case "|", "pipe":
		return '|', nil
	case ";", "semicolon":
		return ';', nil
	}

	if utf8.RuneCountInString(token) != 1 {
		return 0, types.NewConfigError("delimiter", fmt.Errorf("delimiter %q must be a single character", token))
	}

	r, _ := utf8.DecodeRuneInString(token)
	if r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		return 0, types.NewConfigError("delimiter", fmt.Errorf("delimiter %q is not allowed", token))
	}

	return r, nil
}

// configureReader configures the CSV reader.
func configureReader(reader *csv.Reader, comma rune) {
	reader.Comma = comma

	// Zero means "as many fields as the first record": every row must match
	// the header width.
	reader.FieldsPerRecord = 0

	reader.LazyQuotes = false
	reader.TrimLeadingSpace = false
}

// decodeReader wraps r with a decoder for the configured encoding. UTF-8
// input has its byte order mark stripped.
func decodeReader(r io.Reader, label string) (io.Reader, error) {
	label = strings.TrimSpace(strings.ToLower(label))
	if label == "" || label == "utf-8" || label == "utf8" {
		return transform.NewReader(r, unicode.UTF8BOM.NewDecoder()), nil
	}

	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, types.NewConfigError("encoding", fmt.Errorf("unsupported encoding %q", label))
	}
	if enc == encoding.Nop {
		return r, nil
	}

	return transform.NewReader(r, enc.NewDecoder()), nil
}

// splitHeader separates the header row from the data rows.
func splitHeader(allRows [][]string, hasHeader bool) ([]string, [][]string) {
	if hasHeader {
		return allRows[0], allRows[1:]
	}

	header := make([]string, len(allRows[0]))
	for i := range header {
		header[i] = fmt.Sprintf("Column_%d", i+1)
	}
	return header, allRows
}
