package p4

import (
	"bufio"
	"io"
	"strings"
)

const (
	tagPrefix = "... "
	maxLine   = 1024 * 1024
)

// ParseTagged parses the output of a command run with -ztag.
//
// Each "... key value" line sets a field of the current record, and a blank
// line closes it. Untagged lines continue the last field of an open record,
// or stand for an informational message outside of a record.
func ParseTagged(r io.Reader) ([]Record, error) {
	var (
		records []Record
		current Record
		lastKey string
	)
	flush := func() {
		if current != nil {
			records = append(records, current)
		}
		current = nil
		lastKey = ""
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLine)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		switch {
		case line == "":
			flush()

		case strings.HasPrefix(line, tagPrefix):
			// nested tags (e.g. "... ... otherOpen0 bob") are flattened
			tagged := line
			for strings.HasPrefix(tagged, tagPrefix) {
				tagged = strings.TrimPrefix(tagged, tagPrefix)
			}
			key, value := splitTag(tagged)
			if key == "" {
				continue
			}
			if current == nil {
				current = make(Record)
			}
			current[key] = value
			lastKey = key

		case current != nil && lastKey != "":
			current[lastKey] += "\n" + line

		default:
			records = append(records, Record{MessageKey: line})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()
	return records, nil
}

// ParseRaw parses untagged output: each line becomes a message record.
func ParseRaw(r io.Reader) ([]Record, error) {
	var records []Record
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLine)
	for scanner.Scan() {
		records = append(records, Record{MessageKey: strings.TrimRight(scanner.Text(), "\r")})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func splitTag(tagged string) (string, string) {
	idx := strings.IndexByte(tagged, ' ')
	if idx < 0 {
		return tagged, ""
	}
	return tagged[:idx], tagged[idx+1:]
}

// splitLines returns the non-empty lines of some text
func splitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
