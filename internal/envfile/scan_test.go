package envfile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	dserrors "github.com/systmms/envlens/internal/errors"
)

func TestScan(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source string
		want   []Assignment
	}{
		{
			name:   "encrypted value and public key",
			source: "DB_PASS=encrypted:abc123\nDOTENV_PUBLIC_KEY=xyz\n",
			want: []Assignment{
				{Key: "DB_PASS", RawValue: "encrypted:abc123", Line: 1, StartColumn: 8, EndColumn: 24},
				{Key: "DOTENV_PUBLIC_KEY", RawValue: "xyz", Line: 2, StartColumn: 18, EndColumn: 21},
			},
		},
		{
			name:   "comments and blank lines are skipped",
			source: "#/ public key header\n\n# just a comment\nAPI_KEY=k1\n",
			want: []Assignment{
				{Key: "API_KEY", RawValue: "k1", Line: 4, StartColumn: 8, EndColumn: 10},
			},
		},
		{
			name:   "quoted value keeps its quotes",
			source: `TOKEN="encrypted:zz"`,
			want: []Assignment{
				{Key: "TOKEN", RawValue: `"encrypted:zz"`, Line: 1, StartColumn: 6, EndColumn: 20},
			},
		},
		{
			name:   "export prefix",
			source: "export HELLO=world",
			want: []Assignment{
				{Key: "HELLO", RawValue: "world", Line: 1, StartColumn: 13, EndColumn: 18},
			},
		},
		{
			name:   "lower case keys",
			source: "lower_key=v",
			want: []Assignment{
				{Key: "lower_key", RawValue: "v", Line: 1, StartColumn: 10, EndColumn: 11},
			},
		},
		{
			name:   "empty value yields nothing",
			source: "EMPTY=\n",
			want:   nil,
		},
		{
			name:   "value containing equals",
			source: "URL=a=b",
			want: []Assignment{
				{Key: "URL", RawValue: "a=b", Line: 1, StartColumn: 4, EndColumn: 7},
			},
		},
		{
			name:   "crlf line endings",
			source: "A=1\r\nB=2\r\n",
			want: []Assignment{
				{Key: "A", RawValue: "1", Line: 1, StartColumn: 2, EndColumn: 3},
				{Key: "B", RawValue: "2", Line: 2, StartColumn: 2, EndColumn: 3},
			},
		},
		{
			// First occurrence wins even when it is inside the key.
			name:   "value repeating the key",
			source: "SECRET=SECRET",
			want: []Assignment{
				{Key: "SECRET", RawValue: "SECRET", Line: 1, StartColumn: 0, EndColumn: 6},
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Scan(tt.source))
		})
	}
}

func TestScanRangesStayWithinLine(t *testing.T) {
	t.Parallel()

	sources := []string{
		"",
		"=",
		"==\n=x",
		"A=1\nB=22\nC=333",
		"KEY=KEY=KEY",
		"  spaced = value",
		"X=\"\"\nY=''",
		"weird line with no assignment\nZ=ünïcödé",
		"a=b\r",
		strings.Repeat("LONG_KEY=", 20),
	}

	for _, src := range sources {
		lines := strings.Split(src, "\n")
		for _, a := range Scan(src) {
			require.GreaterOrEqual(t, a.Line, 1)
			require.LessOrEqual(t, a.Line, len(lines))
			line := strings.TrimSuffix(lines[a.Line-1], "\r")
			assert.Less(t, a.StartColumn, a.EndColumn, "source %q", src)
			assert.GreaterOrEqual(t, a.StartColumn, 0)
			assert.LessOrEqual(t, a.EndColumn, len(line), "source %q", src)
			assert.Equal(t, a.RawValue, line[a.StartColumn:a.EndColumn])
			assert.True(t, ValidKey(a.Key))
		}
	}
}

func TestScanIsDeterministic(t *testing.T) {
	t.Parallel()

	src := "A=encrypted:1\nB=encrypted:2\n"
	assert.Equal(t, Scan(src), Scan(src))
}

func TestParseLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line   string
		want   LineAssignment
		wantOK bool
	}{
		{line: `DB_PASS="encrypted:abc"`, want: LineAssignment{Key: "DB_PASS", Value: "encrypted:abc"}, wantOK: true},
		{line: "  HELLO='world'  ", want: LineAssignment{Key: "HELLO", Value: "world"}, wantOK: true},
		{line: "PLAIN=value", want: LineAssignment{Key: "PLAIN", Value: "value"}, wantOK: true},
		{line: "EMPTY=", want: LineAssignment{Key: "EMPTY"}, wantOK: true},
		{line: "# nothing here", wantOK: false},
		{line: "", wantOK: false},
	}

	for _, tt := range tests {
		got, ok := ParseLine(tt.line)
		assert.Equal(t, tt.wantOK, ok, tt.line)
		assert.Equal(t, tt.want, got, tt.line)
	}
}

func TestPredicates(t *testing.T) {
	t.Parallel()

	assert.True(t, IsPublicKey("DOTENV_PUBLIC_KEY"))
	assert.True(t, IsPublicKey("DOTENV_PUBLIC_KEY_PRODUCTION"))
	assert.False(t, IsPublicKey("MY_DOTENV_PUBLIC_KEY"))

	assert.True(t, IsEncryptedValue("encrypted:BDx"))
	assert.False(t, IsEncryptedValue("encrypted:"))
	assert.False(t, IsEncryptedValue("plain"))

	assert.True(t, ValidKey("_A1"))
	assert.False(t, ValidKey("1A"))
	assert.False(t, ValidKey("A-B"))
	assert.False(t, ValidKey(""))
}

func TestLineAt(t *testing.T) {
	t.Parallel()

	src := "A=1\r\nB=2\n"
	line, ok := LineAt(src, 1)
	assert.True(t, ok)
	assert.Equal(t, "A=1", line)

	line, ok = LineAt(src, 3)
	assert.True(t, ok)
	assert.Equal(t, "", line)

	_, ok = LineAt(src, 0)
	assert.False(t, ok)
	_, ok = LineAt(src, 4)
	assert.False(t, ok)
}

func TestLocate(t *testing.T) {
	t.Parallel()

	start, err := locate("A=A", "A")
	require.NoError(t, err)
	assert.Equal(t, 0, start, "first occurrence wins")

	_, err = locate("A=1", "2")
	assert.ErrorIs(t, err, dserrors.ErrParseAmbiguity)
}

func TestStartsWithKey(t *testing.T) {
	t.Parallel()

	for _, line := range []string{"DB=1", "db=1", "_x=1"} {
		assert.True(t, StartsWithKey(line), line)
	}
	for _, line := range []string{"", "# c", "1A=2", " A=1"} {
		assert.False(t, StartsWithKey(line), line)
	}
}
