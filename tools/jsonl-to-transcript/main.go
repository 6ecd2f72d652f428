package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode"
)

// ChatRecord is one line of a chat recorder JSONL file
type ChatRecord struct {
	Platform  string `json:"platform"`
	Timestamp string `json:"timestamp"` // RFC3339 (UTC)
	Channel   string `json:"channel"`
	Username  string `json:"username"`
	UserID    string `json:"user_id"`
	Message   string `json:"message"`
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: jsonl-to-transcript <recording.jsonl> [name]")
		fmt.Println("\nExample:")
		fmt.Println("  jsonl-to-transcript twitch_ludwig_20251230_1030.jsonl > ludwig.txt")
		fmt.Println("  chatexport export -i ludwig.txt -o ludwig.json --report")
		os.Exit(1)
	}

	file, err := os.Open(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "open recording: %v\n", err)
		os.Exit(1)
	}
	defer file.Close()

	name := ""
	if len(os.Args) > 2 {
		name = os.Args[2]
	}

	w := bufio.NewWriter(os.Stdout)
	n, err := convert(file, w, name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "convert: %v\n", err)
		os.Exit(1)
	}
	if err := w.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "write transcript: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "✓ Converted %d message(s)\n", n)
}

// convert writes a transcript for the JSONL records in r. Without a name the
// conversation is named "<platform>/<channel>" from the first record.
func convert(r io.Reader, w io.Writer, name string) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}

		var rec ChatRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return 0, fmt.Errorf("line %d: decode record: %w", lineNo, err)
		}
		ts, err := time.Parse(time.RFC3339, rec.Timestamp)
		if err != nil {
			return 0, fmt.Errorf("line %d: parse timestamp: %w", lineNo, err)
		}

		sender := strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return '_'
			}
			return r
		}, rec.Username)
		content := strings.Join(strings.Fields(rec.Message), " ")
		if sender == "" || content == "" {
			continue
		}

		if name == "" {
			name = rec.Platform + "/" + rec.Channel
		}
		lines = append(lines, fmt.Sprintf("%d %s %s", ts.Unix(), sender, content))
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("read recording: %w", err)
	}

	if _, err := fmt.Fprintln(w, name); err != nil {
		return 0, err
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return 0, err
		}
	}
	return len(lines), nil
}
