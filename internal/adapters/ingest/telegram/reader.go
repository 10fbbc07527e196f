// Package telegram reads Telegram chat export files and extracts the message
// fields the analysis pipeline needs.
//
// Exports come in three shapes: a bare JSON array of messages, the Desktop
// export object with a "messages" array, and NDJSON with one message per
// line. A file that fails to parse as a single JSON document falls back to
// NDJSON line scanning
package telegram

import (
	"bufio"
	"bytes"
	"encoding/json/jsontext"
	"encoding/json/v2"
	"io"
	"os"
	"strings"
)

const maxScanTokenSize = 32 * 1024 * 1024

// Reader streams raw message objects from one export file
type Reader struct {
	dec      *jsontext.Decoder
	sc       *bufio.Scanner
	inArray  bool
	err      error
	messages int
}

// Open reads the export file at path into a reader
func Open(path string) (*Reader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewReader(data), nil
}

// NewReader picks the document or NDJSON strategy for the export bytes
func NewReader(data []byte) *Reader {
	if documentWellFormed(data) {
		return &Reader{dec: jsontext.NewDecoder(bytes.NewReader(data))}
	}
	sc := bufio.NewScanner(bytes.NewReader(data))
	buf := make([]byte, 512*1024)
	sc.Buffer(buf, maxScanTokenSize)
	return &Reader{sc: sc}
}

// documentWellFormed reports whether data is exactly one valid JSON value
func documentWellFormed(data []byte) bool {
	dec := jsontext.NewDecoder(bytes.NewReader(data))
	if err := dec.SkipValue(); err != nil {
		return false
	}
	_, err := dec.ReadToken()
	return err == io.EOF
}

// Next returns the next message object; io.EOF when done. Non-object items
// and malformed NDJSON lines are skipped
func (rd *Reader) Next() (map[string]any, error) {
	if rd.err != nil {
		return nil, rd.err
	}
	var m map[string]any
	var err error
	if rd.sc != nil {
		m, err = rd.nextLine()
	} else {
		m, err = rd.nextItem()
	}
	if err != nil {
		rd.err = err
		return nil, err
	}
	rd.messages++
	return m, nil
}

// nextItem advances the document decoder to the next message object,
// entering the top-level array or the export object's "messages" array on
// first use
func (rd *Reader) nextItem() (map[string]any, error) {
	if !rd.inArray {
		if err := rd.enterMessages(); err != nil {
			return nil, err
		}
	}
	for {
		if rd.dec.PeekKind() == ']' {
			return nil, io.EOF
		}
		var item any
		if err := json.UnmarshalDecode(rd.dec, &item); err != nil {
			return nil, io.EOF
		}
		if m, ok := item.(map[string]any); ok {
			return m, nil
		}
	}
}

// enterMessages positions the decoder inside the message array
func (rd *Reader) enterMessages() error {
	switch rd.dec.PeekKind() {
	case '[':
		if _, err := rd.dec.ReadToken(); err != nil {
			return io.EOF
		}
		rd.inArray = true
		return nil
	case '{':
		if _, err := rd.dec.ReadToken(); err != nil {
			return io.EOF
		}
		for rd.dec.PeekKind() != '}' {
			name, err := rd.dec.ReadToken()
			if err != nil {
				return io.EOF
			}
			if name.Kind() == '"' && name.String() == "messages" && rd.dec.PeekKind() == '[' {
				if _, err := rd.dec.ReadToken(); err != nil {
					return io.EOF
				}
				rd.inArray = true
				return nil
			}
			if err := rd.dec.SkipValue(); err != nil {
				return io.EOF
			}
		}
		return io.EOF
	default:
		// a lone scalar document carries no messages
		return io.EOF
	}
}

// nextLine scans NDJSON lines for the next message object
func (rd *Reader) nextLine() (map[string]any, error) {
	for rd.sc.Scan() {
		line := strings.TrimSpace(rd.sc.Text())
		if line == "" {
			continue
		}
		var item any
		if err := json.Unmarshal([]byte(line), &item); err != nil {
			continue
		}
		if m, ok := item.(map[string]any); ok {
			return m, nil
		}
	}
	if err := rd.sc.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// Stats returns the number of message objects yielded so far
func (rd *Reader) Stats() (messages int) {
	return rd.messages
}
