package json

import (
	"io"

	gojson "github.com/goccy/go-json"
)

// arrayState tracks the streaming array writer state machine
type arrayState int

const (
	arrayNotStarted arrayState = iota
	arrayWriting
	arrayClosed
)

// StreamingEncoder writes values incrementally as a single well-formed JSON
// array: the opening bracket on first use, a comma before every value after
// the first, and the closing bracket on Close. At no point is more than one
// value buffered.
type StreamingEncoder struct {
	writer  io.Writer
	encoder *gojson.Encoder
	state   arrayState
	first   bool
	pretty  bool
	indent  string
}

// NewStreamingEncoder creates a streaming array encoder writing to w
func NewStreamingEncoder(w io.Writer) *StreamingEncoder {
	return &StreamingEncoder{
		writer:  w,
		encoder: GetEncoder(w),
		state:   arrayNotStarted,
		first:   true,
	}
}

// SetPretty enables pretty printing of individual elements
func (se *StreamingEncoder) SetPretty(pretty bool, indent string) {
	se.pretty = pretty
	se.indent = indent
	if pretty {
		se.encoder.SetIndent("", indent)
	}
}

// Encode appends a single value to the array
func (se *StreamingEncoder) Encode(v interface{}) error {
	if se.state == arrayClosed {
		return io.ErrClosedPipe
	}

	if se.state == arrayNotStarted {
		if _, err := se.writer.Write([]byte{'[', '\n'}); err != nil {
			return err
		}
		se.state = arrayWriting
	}

	if !se.first {
		if _, err := se.writer.Write([]byte{',', '\n'}); err != nil {
			return err
		}
	}
	se.first = false

	if err := se.encoder.Encode(v); err != nil {
		return err
	}

	return nil
}

// Close finalizes the array. An encoder that never saw a value still
// produces a valid empty array.
func (se *StreamingEncoder) Close() error {
	if se.state == arrayClosed {
		return nil
	}

	var err error
	if se.state == arrayNotStarted {
		_, err = se.writer.Write([]byte{'[', ']', '\n'})
	} else {
		_, err = se.writer.Write([]byte{']', '\n'})
	}
	se.state = arrayClosed

	PutEncoder(se.encoder)
	return err
}
