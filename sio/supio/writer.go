package supio

import (
	"io"

	"github.com/brimdata/superagg"
	"github.com/brimdata/superagg/sup"
)

type Writer struct {
	writer io.WriteCloser
}

func NewWriter(w io.WriteCloser) *Writer {
	return &Writer{writer: w}
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

func (w *Writer) Write(val superagg.Value) error {
	if _, err := io.WriteString(w.writer, sup.FormatValue(val)); err != nil {
		return err
	}
	_, err := w.writer.Write([]byte("\n"))
	return err
}
