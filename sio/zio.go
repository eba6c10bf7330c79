// Package sio defines the row reader and value writer interfaces shared by
// the input and output formats.
package sio

import (
	"io"
	"slices"

	"github.com/brimdata/superagg"
)

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// NopCloser returns a WriteCloser with a no-op Close method wrapping
// the provided Writer w.
func NopCloser(w io.Writer) io.WriteCloser {
	return nopCloser{w}
}

// Reader wraps the Read method.
//
// Read returns the next row of argument values and a nil error, a nil row
// and the next error, or a nil row and nil error to indicate that no rows
// remain.  Read never returns io.EOF.
type Reader interface {
	Read() ([]superagg.Value, error)
}

// Writer wraps the Write method.
type Writer interface {
	Write(val superagg.Value) error
}

type WriteCloser interface {
	Writer
	io.Closer
}

// ConcatReader returns a Reader that is the logical concatenation of readers,
// which are read sequentially.  Its Read methed returns any non-nil error
// returned by a reader and returns end of stream after all readers have
// returned end of stream.
func ConcatReader(readers ...Reader) Reader {
	if len(readers) == 1 {
		return readers[0]
	}
	return &concatReader{slices.Clone(readers)}
}

type concatReader struct {
	readers []Reader
}

func (c *concatReader) Read() ([]superagg.Value, error) {
	for len(c.readers) > 0 {
		row, err := c.readers[0].Read()
		if row != nil || err != nil {
			return row, err
		}
		c.readers = c.readers[1:]
	}
	return nil, nil
}

// ReadAll returns every remaining row of r.
func ReadAll(r Reader) ([][]superagg.Value, error) {
	var rows [][]superagg.Value
	for {
		row, err := r.Read()
		if row == nil || err != nil {
			return rows, err
		}
		rows = append(rows, row)
	}
}
