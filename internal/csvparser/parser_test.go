package csvparser

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ginjaninja78/rcli/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestParse(t *testing.T) {
	path := writeFile(t, "players.csv", []byte("Name,Position\nAlice,Forward\nBob,Keeper\n"))

	rs, err := Parse(path, DefaultSettings())
	require.NoError(t, err)

	assert.Equal(t, path, rs.SourceFile)
	assert.Equal(t, []string{"Name", "Position"}, rs.Header)
	require.Equal(t, 2, rs.RowCount())
	assert.Equal(t, map[string]string{"Name": "Alice", "Position": "Forward"}, rs.Records[0].Map())
	assert.Equal(t, map[string]string{"Name": "Bob", "Position": "Keeper"}, rs.Records[1].Map())
}

func TestParseReader(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		settings Settings
		header   []string
		rows     [][]string
	}{
		{
			name:     "header only",
			input:    "a,b,c\n",
			settings: DefaultSettings(),
			header:   []string{"a", "b", "c"},
			rows:     [][]string{},
		},
		{
			name:     "semicolon alias",
			input:    "a;b\n1;2\n",
			settings: Settings{Delimiter: "semicolon", Header: true},
			header:   []string{"a", "b"},
			rows:     [][]string{{"1", "2"}},
		},
		{
			name:     "escaped tab",
			input:    "a\tb\n1\t2\n",
			settings: Settings{Delimiter: `\t`, Header: true},
			header:   []string{"a", "b"},
			rows:     [][]string{{"1", "2"}},
		},
		{
			name:     "no header",
			input:    "1,2\n3,4\n",
			settings: Settings{Delimiter: ",", Header: false},
			header:   []string{"Column_1", "Column_2"},
			rows:     [][]string{{"1", "2"}, {"3", "4"}},
		},
		{
			name:     "quoted cells keep spacing and delimiters",
			input:    "name,note\n\" Al \",\"x, y\"\n",
			settings: DefaultSettings(),
			header:   []string{"name", "note"},
			rows:     [][]string{{" Al ", "x, y"}},
		},
		{
			name:     "numbers stay text",
			input:    "Kit Number\n007\n",
			settings: DefaultSettings(),
			header:   []string{"Kit Number"},
			rows:     [][]string{{"007"}},
		},
		{
			name:     "utf-8 bom stripped",
			input:    "\ufeffName\nAlice\n",
			settings: DefaultSettings(),
			header:   []string{"Name"},
			rows:     [][]string{{"Alice"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs, err := ParseReader(strings.NewReader(tt.input), tt.settings)
			require.NoError(t, err)

			assert.Equal(t, tt.header, rs.Header)
			require.Equal(t, len(tt.rows), rs.RowCount())
			for i, row := range tt.rows {
				assert.Equal(t, types.NewRecord(tt.header, row), rs.Records[i])
			}
		})
	}
}

func TestParseReaderLatin1(t *testing.T) {
	input := []byte("city\nZ\xfcrich\n")

	rs, err := ParseReader(strings.NewReader(string(input)), Settings{Header: true, Encoding: "iso-8859-1"})
	require.NoError(t, err)

	v, _ := rs.Records[0].Get("city")
	assert.Equal(t, "Zürich", v)
}

func TestParseReaderErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		settings Settings
		kind     error
		contains string
	}{
		{"short row", "a,b\n1\n", DefaultSettings(), types.ErrParse, "line 2"},
		{"long row", "a,b\n1,2,3\n", DefaultSettings(), types.ErrParse, "line 2"},
		{"empty file", "", DefaultSettings(), types.ErrParse, "empty"},
		{"duplicate header", "a,a\n1,2\n", DefaultSettings(), types.ErrParse, "duplicate"},
		{"bare quote", "a\nx\"y\n", DefaultSettings(), types.ErrParse, "line 2"},
		{"multi-rune delimiter", "a\n", Settings{Delimiter: "::", Header: true}, types.ErrConfig, "single character"},
		{"quote delimiter", "a\n", Settings{Delimiter: `"`, Header: true}, types.ErrConfig, "not allowed"},
		{"unknown encoding", "a\n", Settings{Header: true, Encoding: "klingon"}, types.ErrConfig, "klingon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseReader(strings.NewReader(tt.input), tt.settings)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.kind), "got %v", err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestParseMissingFile(t *testing.T) {
	_, err := Parse(filepath.Join(t.TempDir(), "missing.csv"), DefaultSettings())
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrIO)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestResolveDelimiter(t *testing.T) {
	tests := map[string]rune{
		"":      ',',
		",":     ',',
		"comma": ',',
		"TAB":   '\t',
		"pipe":  '|',
		"|":     '|',
		";":     ';',
		"#":     '#',
		"§":     '§',
	}
	for token, want := range tests {
		got, err := ResolveDelimiter(token)
		require.NoError(t, err, token)
		assert.Equal(t, want, got, token)
	}
}
