package stream

import (
	"errors"
	"io"
)

// IODriver adapts an io.Writer and/or io.Reader to a stream driver. A write
// error sets StatusUnknownError; io.EOF from the reader sets StatusStopped.
type IODriver struct {
	Name string
	W    io.Writer
	R    io.Reader
}

// Description returns the driver name.
func (d *IODriver) Description() string {
	return d.Name
}

// DataIn writes p to W.
func (d *IODriver) DataIn(s *Stream, p []byte) int {
	if d.W == nil {
		s.SetStatus(StatusUnknownError)
		return 0
	}
	n, err := d.W.Write(p)
	if err != nil {
		s.SetStatus(StatusUnknownError)
	}
	return n
}

// DataOut reads from R into p.
func (d *IODriver) DataOut(s *Stream, p []byte) int {
	if d.R == nil {
		s.SetStatus(StatusUnknownError)
		return 0
	}
	n, err := d.R.Read(p)
	switch {
	case errors.Is(err, io.EOF):
		s.SetStatus(StatusStopped)
	case err != nil:
		s.SetStatus(StatusUnknownError)
	}
	return n
}
