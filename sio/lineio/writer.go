// Package lineio writes one value per line with string values written as
// plain text.
package lineio

import (
	"fmt"
	"io"

	"github.com/brimdata/superagg"
	"github.com/brimdata/superagg/sup"
)

type Writer struct {
	writer io.WriteCloser
}

func NewWriter(w io.WriteCloser) *Writer {
	return &Writer{
		writer: w,
	}
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

func (w *Writer) Write(val superagg.Value) error {
	var s string
	switch val.Kind() {
	case superagg.KindString, superagg.KindChar:
		s = val.Text()
	default:
		s = sup.FormatValue(val)
	}
	_, err := fmt.Fprintln(w.writer, s)
	return err
}
