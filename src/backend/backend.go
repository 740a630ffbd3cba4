// Package backend supplies the byte substrates an archive handle runs
// over. Reading needs an io.ReadSeeker, writing an io.Writer; the types
// here cover the substrates the standard library does not: caller
// callbacks (Func, WriterFunc) and the growable write buffer (Buffer).
package backend

import (
	"io"

	"github.com/aurora-is-near/tarlite/src/errdefs"
)

// Func adapts caller-supplied callbacks to the io interfaces. A zero
// Func supports nothing; install the callbacks the access mode needs
// and hand the value to tarlite.NewReader or tarlite.NewWriter.
type Func struct {
	ReadFunc  func(p []byte) (int, error)
	WriteFunc func(p []byte) (int, error)
	SeekFunc  func(offset int64, whence int) (int64, error)
	CloseFunc func() error
}

var _ io.ReadWriteSeeker = (*Func)(nil)
var _ io.Closer = (*Func)(nil)

func (f *Func) Read(p []byte) (int, error) {
	if f.ReadFunc == nil {
		return 0, errdefs.ErrRead
	}
	return f.ReadFunc(p)
}

func (f *Func) Write(p []byte) (int, error) {
	if f.WriteFunc == nil {
		return 0, errdefs.ErrWrite
	}
	return f.WriteFunc(p)
}

func (f *Func) Seek(offset int64, whence int) (int64, error) {
	if f.SeekFunc == nil {
		return 0, errdefs.ErrSeek
	}
	return f.SeekFunc(offset, whence)
}

func (f *Func) Close() error {
	if f.CloseFunc == nil {
		return nil
	}
	return f.CloseFunc()
}

// WriterFunc adapts a bare emit function to io.Writer. It is the sink
// form used for linear (stream) writing.
type WriterFunc func(p []byte) (int, error)

func (f WriterFunc) Write(p []byte) (int, error) {
	return f(p)
}
