// file: cmd/server/helpers_test.go
package server

import "io"

// newBlockingReader returns a reader that blocks until the returned func
// is called, standing in for an idle stdin.
func newBlockingReader() (io.Reader, func()) {
	pr, pw := io.Pipe()
	return pr, func() { _ = pw.Close() }
}
