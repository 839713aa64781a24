package stream

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
)

const maxRecordSize = 1 << 20

// ErrRecordTooLarge is returned by Next for a record whose payload exceeds
// maxRecordSize. The record is consumed, so reading can go on.
var ErrRecordTooLarge = fmt.Errorf("%w: record exceeds %d bytes", ErrMalformedEvent, maxRecordSize)

// Reader splits an event-stream body into record payloads.
//
// Following the event-stream rules: several "data:" lines in one record are
// joined with '\n', one optional space after the colon is dropped, lines
// starting with ':' are comments, other fields (event, id, retry) are ignored,
// and a record left unterminated at end of stream is discarded.
type Reader struct {
	br *bufio.Reader
}

func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReaderSize(r, 4096)}
}

// Next returns the payload of the next record, or io.EOF once the body ends.
// An oversized record yields ErrRecordTooLarge; later records are still
// returned by subsequent calls.
func (r *Reader) Next() ([]byte, error) {
	var (
		data     bytes.Buffer
		hasData  bool
		oversize bool
	)

	for {
		line, tooLong, err := r.readLine()
		if err != nil {
			return nil, err
		}
		if tooLong {
			oversize = true
			data.Reset()
			continue
		}

		if len(line) == 0 {
			if oversize {
				return nil, ErrRecordTooLarge
			}
			if hasData {
				return data.Bytes(), nil
			}
			continue
		}
		if oversize || line[0] == ':' {
			continue
		}

		field, value, _ := bytes.Cut(line, []byte(":"))
		if string(field) != "data" {
			continue
		}
		value = bytes.TrimPrefix(value, []byte(" "))

		if data.Len()+len(value)+1 > maxRecordSize {
			oversize = true
			data.Reset()
			continue
		}
		if hasData {
			data.WriteByte('\n')
		}
		data.Write(value)
		hasData = true
	}
}

// readLine returns the next line without its terminator. A line longer than
// maxRecordSize is drained and reported with tooLong set. A final line with
// no terminator is dropped along with its record.
func (r *Reader) readLine() (line []byte, tooLong bool, err error) {
	for {
		chunk, err := r.br.ReadSlice('\n')
		if !tooLong {
			if len(line)+len(chunk) > maxRecordSize {
				tooLong, line = true, nil
			} else {
				line = append(line, chunk...)
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if err != nil {
			return nil, false, err
		}
		break
	}

	if tooLong {
		return nil, true, nil
	}
	line = bytes.TrimSuffix(line, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))
	return line, false, nil
}
