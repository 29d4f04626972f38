// Package iocontext carries the command streams and local filesystem through
// context so commands can run against buffers and an in-memory FS in tests.
package iocontext

import (
	"context"
	"io"
	"os"

	"github.com/spf13/afero"
)

// IO holds the streams and filesystem a command reads and writes.
type IO struct {
	Out    io.Writer // stdout
	ErrOut io.Writer // stderr
	In     io.Reader // stdin
	FS     afero.Fs  // local files: templates, data, downloads
}

// DefaultIO returns the process streams and the OS filesystem.
func DefaultIO() *IO {
	return &IO{
		Out:    os.Stdout,
		ErrOut: os.Stderr,
		In:     os.Stdin,
		FS:     afero.NewOsFs(),
	}
}

// Buffered returns IO backed by the given writers, empty stdin and an
// in-memory filesystem.
func Buffered(out, errOut io.Writer) *IO {
	return &IO{
		Out:    out,
		ErrOut: errOut,
		In:     eofReader{},
		FS:     afero.NewMemMapFs(),
	}
}

type eofReader struct{}

func (eofReader) Read([]byte) (int, error) { return 0, io.EOF }

type ioKey struct{}

// WithIO adds IO to a context.
func WithIO(ctx context.Context, streams *IO) context.Context {
	return context.WithValue(ctx, ioKey{}, streams)
}

// GetIO retrieves IO from context, defaulting to the process streams.
// A missing FS falls back to the OS filesystem.
func GetIO(ctx context.Context) *IO {
	streams, ok := ctx.Value(ioKey{}).(*IO)
	if !ok || streams == nil {
		return DefaultIO()
	}
	if streams.FS == nil {
		cp := *streams
		cp.FS = afero.NewOsFs()
		return &cp
	}
	return streams
}
