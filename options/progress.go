package options

import (
	"io"
	"sync"
	"sync/atomic"
)

// progressReader wraps an io.Reader to track the progress of the request body being read.
type progressReader struct {
	reader     io.Reader
	total      int64
	read       atomic.Int64
	onProgress func(read, total int64)
	mu         sync.Mutex
}

// ProgressReader creates a reader that reports the bytes read so far and the expected total.
func ProgressReader(reader io.Reader, total int64, onProgress func(read, total int64)) io.Reader {
	return &progressReader{
		reader:     reader,
		total:      total,
		onProgress: onProgress,
	}
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	if n > 0 {
		newRead := pr.read.Add(int64(n))
		if pr.onProgress != nil {
			pr.mu.Lock()
			pr.onProgress(newRead, pr.total)
			pr.mu.Unlock()
		}
	}
	return n, err
}

// progressWriter wraps an io.WriteCloser to track the progress of the response body being written.
type progressWriter struct {
	writer     io.WriteCloser
	total      int64
	written    atomic.Int64
	onProgress func(written, total int64)
	mu         sync.Mutex
}

// ProgressWriter creates a writer that reports the bytes written so far and the expected total.
func ProgressWriter(writer io.WriteCloser, total int64, onProgress func(written, total int64)) io.WriteCloser {
	return &progressWriter{
		writer:     writer,
		total:      total,
		onProgress: onProgress,
	}
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	pw.mu.Lock()
	n, err := pw.writer.Write(p)
	pw.mu.Unlock()
	if n > 0 {
		newWritten := pw.written.Add(int64(n))
		if pw.onProgress != nil {
			pw.onProgress(newWritten, pw.total)
		}
	}
	return n, err
}

// Close closes the underlying writer.
func (pw *progressWriter) Close() error {
	pw.mu.Lock()
	defer pw.mu.Unlock()
	return pw.writer.Close()
}
