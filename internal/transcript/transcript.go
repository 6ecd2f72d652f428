// Package transcript reads line-oriented chat transcripts into a
// message.Conversation.
//
// The first line names the conversation. Every following line holds one
// message: "<timestamp> <sender> <content...>". The timestamp is either
// integer epoch seconds or RFC3339.
package transcript

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/john/chatexport/internal/message"
)

// maxLineSize caps a single transcript line
const maxLineSize = 1024 * 1024

var (
	// ErrMissingHeader is returned when the transcript has no name line
	ErrMissingHeader = errors.New("transcript has no header line")
	// ErrMalformedLine is returned when a message line cannot be split into
	// timestamp, sender and content, or its timestamp cannot be parsed
	ErrMalformedLine = errors.New("malformed message line")
)

// LineError describes a message line that failed to parse
type LineError struct {
	Line   int    // 1-based line number in the transcript
	Text   string // Raw line text
	Reason string
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %s: %s (%q)", e.Line, ErrMalformedLine, e.Reason, e.Text)
}

func (e *LineError) Unwrap() error {
	return ErrMalformedLine
}

// Parse reads a whole transcript. No partial conversation is returned on error.
func Parse(r io.Reader) (message.Conversation, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return message.Conversation{}, fmt.Errorf("read header: %w", err)
		}
		return message.Conversation{}, ErrMissingHeader
	}

	conv := message.Conversation{
		Name:     scanner.Text(),
		Messages: []message.Message{},
	}

	lineNo := 1
	for scanner.Scan() {
		lineNo++
		msg, err := ParseLine(lineNo, scanner.Text())
		if err != nil {
			return message.Conversation{}, err
		}
		conv.Messages = append(conv.Messages, msg)
	}
	if err := scanner.Err(); err != nil {
		return message.Conversation{}, fmt.Errorf("read line %d: %w", lineNo+1, err)
	}

	return conv, nil
}

// ParseLine parses one message line. lineNo is only used for error reporting.
func ParseLine(lineNo int, line string) (message.Message, error) {
	rest := strings.TrimLeftFunc(line, unicode.IsSpace)

	stamp, rest := nextField(rest)
	sender, rest := nextField(rest)
	// One separator rune is consumed; the rest is content, verbatim.
	content := ""
	if _, size := utf8.DecodeRuneInString(rest); size > 0 {
		content = rest[size:]
	}

	if stamp == "" || sender == "" || strings.TrimSpace(content) == "" {
		return message.Message{}, &LineError{Line: lineNo, Text: line, Reason: "expected <timestamp> <sender> <content>"}
	}

	ts, err := ParseTimestamp(stamp)
	if err != nil {
		return message.Message{}, &LineError{Line: lineNo, Text: line, Reason: err.Error()}
	}

	return message.Message{
		Timestamp: ts,
		Sender:    sender,
		Content:   content,
	}, nil
}

// ParseTimestamp accepts integer epoch seconds or an RFC3339 time
func ParseTimestamp(s string) (time.Time, error) {
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
	}
	return t.UTC(), nil
}

// nextField splits off the first whitespace-delimited field of s. The
// remainder keeps its leading whitespace.
func nextField(s string) (string, string) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i:]
}
