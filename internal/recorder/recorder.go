package recorder

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/john/chatexport/internal/message"
)

// Output formats
const (
	FormatJSON  = "json"  // One pretty-printed document
	FormatJSONL = "jsonl" // One message (or user, in report view) per line
)

// StdoutPath selects standard output as the destination
const StdoutPath = "-"

// Recorder writes exported conversations to a filesystem
type Recorder struct {
	fs     afero.Fs
	format string
	stdout io.Writer
}

// New creates a recorder writing format to fs
func New(fs afero.Fs, format string) (*Recorder, error) {
	switch format {
	case "":
		format = FormatJSON
	case FormatJSON, FormatJSONL:
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
	return &Recorder{fs: fs, format: format, stdout: os.Stdout}, nil
}

// WithStdout replaces the writer used for "-"
func (r *Recorder) WithStdout(w io.Writer) *Recorder {
	r.stdout = w
	return r
}

// Write encodes conv to path, creating parent directories and truncating any
// existing file
func (r *Recorder) Write(path string, conv message.Conversation) error {
	if path == StdoutPath {
		return r.encode(r.stdout, conv)
	}

	// Create output directory
	if dir := filepath.Dir(path); dir != "." {
		if err := r.fs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	file, err := r.fs.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	if err := r.encode(file, conv); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close file: %w", err)
	}
	return nil
}

// encode buffers the encoded conversation and flushes it to w
func (r *Recorder) encode(w io.Writer, conv message.Conversation) error {
	bw := bufio.NewWriter(w)

	var err error
	if r.format == FormatJSONL {
		err = EncodeLines(bw, conv)
	} else {
		err = Encode(bw, conv)
	}
	if err != nil {
		return err
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}

// Encode writes conv as one indented JSON document
func Encode(w io.Writer, conv message.Conversation) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(conv); err != nil {
		return fmt.Errorf("encode conversation: %w", err)
	}
	return nil
}

// EncodeLines writes one JSON object per line: messages in message view,
// users in report view
func EncodeLines(w io.Writer, conv message.Conversation) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if conv.Reported() {
		for _, u := range conv.Users {
			if err := enc.Encode(u); err != nil {
				return fmt.Errorf("write user: %w", err)
			}
		}
		return nil
	}

	for _, msg := range conv.Messages {
		if err := enc.Encode(msg); err != nil {
			return fmt.Errorf("write message: %w", err)
		}
	}
	return nil
}
