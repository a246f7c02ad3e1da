package logging

import (
	"io"

	"go.uber.org/multierr"
)

// CombinedWriter writes every log line to all of its writers,
// e.g. stdout and the rotated log file.
type CombinedWriter struct {
	writers []io.Writer
}

func NewCombinedWriter(writers ...io.Writer) *CombinedWriter {
	return &CombinedWriter{
		writers: append([]io.Writer{}, writers...),
	}
}

// Write keeps going when one of the writers fails; n is the number of bytes
// written by the first writer that succeeded.
func (cw *CombinedWriter) Write(p []byte) (n int, err error) {
	written := false
	for _, w := range cw.writers {
		wn, werr := w.Write(p)
		if werr != nil {
			err = multierr.Append(err, werr)
			continue
		}
		if !written {
			n = wn
			written = true
		}
	}
	return n, err
}
