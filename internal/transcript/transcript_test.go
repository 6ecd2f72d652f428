package transcript

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	conv, err := Parse(strings.NewReader("Team\n1 Alice hello world\n2 Bob hello\n"))
	require.NoError(t, err)

	assert.Equal(t, "Team", conv.Name)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, int64(1), conv.Messages[0].Timestamp.Unix())
	assert.Equal(t, "Alice", conv.Messages[0].Sender)
	assert.Equal(t, "hello world", conv.Messages[0].Content)
	assert.Equal(t, "Bob", conv.Messages[1].Sender)
	assert.Equal(t, "hello", conv.Messages[1].Content)
}

func TestParse_OneMessagePerLineInOrder(t *testing.T) {
	lines := []string{
		"1448470901 bob Hello there!",
		"1448470905 mike how are you?",
		"1448470906 bob I'm good thanks, do you like pie?",
		"1448470910 mike no, let me ask Angus...",
		"1448470912 angus Hell yes! Are we buying some pie?",
	}
	conv, err := Parse(strings.NewReader("My Conversation\r\n" + strings.Join(lines, "\r\n")))
	require.NoError(t, err)

	assert.Equal(t, "My Conversation", conv.Name)
	require.Len(t, conv.Messages, len(lines))
	for i, line := range lines {
		assert.True(t, strings.HasSuffix(line, conv.Messages[i].Content), "line %d", i)
	}
	assert.Equal(t, "I'm good thanks, do you like pie?", conv.Messages[2].Content)
}

func TestParse_HeaderOnly(t *testing.T) {
	conv, err := Parse(strings.NewReader("  Empty room  \n"))
	require.NoError(t, err)

	assert.Equal(t, "  Empty room  ", conv.Name)
	assert.NotNil(t, conv.Messages)
	assert.Empty(t, conv.Messages)
}

func TestParse_Errors(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		_, err := Parse(strings.NewReader(""))
		assert.ErrorIs(t, err, ErrMissingHeader)
	})

	tests := []struct {
		name string
		line string
	}{
		{"blank line", ""},
		{"timestamp only", "1448470901"},
		{"no content", "1448470901 bob"},
		{"whitespace content", "1448470901 bob    "},
		{"bad timestamp", "yesterday bob hi"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader("Conv\n1 a ok\n" + tt.line + "\n"))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedLine)

			var lineErr *LineError
			require.True(t, errors.As(err, &lineErr))
			assert.Equal(t, 3, lineErr.Line)
			assert.Equal(t, tt.line, lineErr.Text)
		})
	}
}

func TestParseLine_ContentVerbatim(t *testing.T) {
	msg, err := ParseLine(2, "5 carol   spaced   out  ")
	require.NoError(t, err)
	assert.Equal(t, "carol", msg.Sender)
	assert.Equal(t, "  spaced   out  ", msg.Content)
}

func TestParseTimestamp(t *testing.T) {
	ts, err := ParseTimestamp("1448470901")
	require.NoError(t, err)
	assert.Equal(t, int64(1448470901), ts.Unix())

	ts, err = ParseTimestamp("2025-12-30T10:30:00.750+01:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 12, 30, 9, 30, 0, 750_000_000, time.UTC), ts)
	assert.Equal(t, time.Date(2025, 12, 30, 9, 30, 0, 0, time.UTC).Unix(), ts.Unix())

	_, err = ParseTimestamp("12:30")
	assert.Error(t, err)
}

func TestLoader_Load(t *testing.T) {
	memFs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(memFs, "chat.txt", []byte("Team\n1 Alice hello world\n"), 0644))

	loader := NewLoader(memFs)

	t.Run("file", func(t *testing.T) {
		conv, err := loader.Load("chat.txt")
		require.NoError(t, err)
		assert.Equal(t, "Team", conv.Name)
		assert.Len(t, conv.Messages, 1)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loader.Load("missing.txt")
		require.Error(t, err)
		assert.True(t, errors.Is(err, fs.ErrNotExist), "got %v", err)
	})

	t.Run("stdin", func(t *testing.T) {
		conv, err := NewLoader(memFs).WithStdin(strings.NewReader("Piped\n2 Bob hi\n")).Load(StdinPath)
		require.NoError(t, err)
		assert.Equal(t, "Piped", conv.Name)
		assert.Equal(t, "hi", conv.Messages[0].Content)
	})

	t.Run("malformed file", func(t *testing.T) {
		require.NoError(t, afero.WriteFile(memFs, "bad.txt", []byte("Team\nnope\n"), 0644))
		_, err := loader.Load("bad.txt")
		assert.ErrorIs(t, err, ErrMalformedLine)
		assert.Contains(t, err.Error(), "bad.txt")
	})
}
