// Package chatlog parses JSONL chat exports for bulk ingestion. Each
// line is one JSON object; malformed or empty lines are skipped rather
// than failing the whole file.
package chatlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/wovenlabs/loom/internal/graph"
)

// Entry is one chat message from an export file. Timestamp is optional;
// entries without one inherit the import time.
type Entry struct {
	Sender    string `json:"sender"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Line is a parsed, ingestion-ready message.
type Line struct {
	Sender    string
	Text      string
	Timestamp time.Time // zero when the entry carried none
}

// Message renders the line in "Sender: text" form for the extraction
// pipeline. Lines without a sender pass the text through unchanged.
func (l Line) Message() string {
	if l.Sender == "" {
		return l.Text
	}
	return l.Sender + ": " + l.Text
}

// ParseFile reads a JSONL chat export and returns its usable lines.
func ParseFile(path string) ([]Line, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open chat log: %w", err)
	}
	defer f.Close()

	var lines []Line
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024) // 1MB line buffer

	for scanner.Scan() {
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		line, err := parseLine(raw)
		if err != nil {
			continue // skip malformed lines
		}
		if line != nil {
			lines = append(lines, *line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan chat log: %w", err)
	}

	return lines, nil
}

// ParseLines parses chat log content from a string (for testing).
func ParseLines(content string) ([]Line, error) {
	var lines []Line
	for _, raw := range strings.Split(content, "\n") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		line, err := parseLine([]byte(raw))
		if err != nil {
			continue
		}
		if line != nil {
			lines = append(lines, *line)
		}
	}
	return lines, nil
}

func parseLine(raw []byte) (*Line, error) {
	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, err
	}

	text := strings.TrimSpace(entry.Text)
	if text == "" {
		return nil, nil
	}

	line := Line{
		Sender: strings.TrimSpace(entry.Sender),
		Text:   text,
	}

	if entry.Timestamp != "" {
		ts, err := graph.ParseTimestamp(entry.Timestamp)
		if err != nil {
			return nil, err
		}
		line.Timestamp = ts
	}

	return &line, nil
}
