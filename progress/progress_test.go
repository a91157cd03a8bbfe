package progress

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCompletionIsAlwaysDrawn(t *testing.T) {
	var buf bytes.Buffer
	fn := CreateProgressFunc(&buf, "Download")

	fn(10, 100)
	fn(100, 100) // within the throttle interval, but complete

	out := buf.String()
	assert.Contains(t, out, "100.00% | Download complete!")
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestUnknownTotal(t *testing.T) {
	var buf bytes.Buffer
	CreateProgressFunc(&buf, "Upload")(42, -1)

	assert.Contains(t, buf.String(), "Upload 42 bytes")
	assert.Len(t, strings.TrimRight(buf.String(), " "), len("\rUpload 42 bytes | Speed: 0.00 B/s"))
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "1.50 KB/s", formatSpeed(1536))
	assert.Equal(t, "2.00 MB/s", formatSpeed(2*1024*1024))
	assert.Equal(t, "", formatETA(0))
	assert.Equal(t, "30s", formatETA(30*time.Second))
	assert.Equal(t, "1.5m", formatETA(90*time.Second))
	assert.Equal(t, "2.0h", formatETA(2*time.Hour))
}
