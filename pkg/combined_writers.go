package pkg

import (
	"io"

	"go.uber.org/multierr"
)

// CombinedWriter writes every chunk to all of its writers. A failing writer
// does not stop the others; the errors are combined.
type CombinedWriter struct {
	Writers []io.Writer
}

func NewCombinedWriter(writers ...io.Writer) *CombinedWriter {
	cw := &CombinedWriter{}
	for _, w := range writers {
		if w != nil {
			cw.Writers = append(cw.Writers, w)
		}
	}
	return cw
}

// Write reports len(p) if at least one writer took the whole chunk.
func (cw *CombinedWriter) Write(p []byte) (n int, err error) {
	for _, w := range cw.Writers {
		written, werr := w.Write(p)
		if werr != nil {
			err = multierr.Append(err, werr)
			continue
		}
		if written == len(p) {
			n = written
		}
	}
	return n, err
}
