package options

import "bytes"

// WriteCloserBuffer is a wrapper around bytes.Buffer that implements the io.WriteCloser interface.
// The response body of every submission is collected in one before it is rendered.
type WriteCloserBuffer struct {
	*bytes.Buffer
}

// NewWriteCloserBuffer returns an empty WriteCloserBuffer.
func NewWriteCloserBuffer() *WriteCloserBuffer {
	return &WriteCloserBuffer{Buffer: &bytes.Buffer{}}
}

// Close satisfies the io.WriteCloser interface but performs no action.
func (wcb *WriteCloserBuffer) Close() error {
	return nil
}

// Determine if the bytes.Buffer is empty
func (w *WriteCloserBuffer) IsEmpty() bool {
	return w == nil || w.Buffer == nil || w.Buffer.Len() == 0
}
