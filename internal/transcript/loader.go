package transcript

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"

	"github.com/john/chatexport/internal/message"
)

// StdinPath selects standard input as the transcript source
const StdinPath = "-"

// Loader opens transcripts from a filesystem
type Loader struct {
	fs    afero.Fs
	stdin io.Reader
}

// NewLoader creates a loader reading from fs, with "-" mapped to os.Stdin
func NewLoader(fs afero.Fs) *Loader {
	return &Loader{fs: fs, stdin: os.Stdin}
}

// WithStdin replaces the reader used for "-"
func (l *Loader) WithStdin(r io.Reader) *Loader {
	l.stdin = r
	return l
}

// Load reads and parses the transcript at path. A missing file yields an
// error matching fs.ErrNotExist.
func (l *Loader) Load(path string) (message.Conversation, error) {
	if path == StdinPath {
		conv, err := Parse(l.stdin)
		if err != nil {
			return message.Conversation{}, fmt.Errorf("parse stdin: %w", err)
		}
		return conv, nil
	}

	file, err := l.fs.Open(path)
	if err != nil {
		return message.Conversation{}, fmt.Errorf("open transcript: %w", err)
	}
	defer file.Close()

	conv, err := Parse(file)
	if err != nil {
		return message.Conversation{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return conv, nil
}
