package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"
)

const (
	barWidth     = 50
	defaultWidth = 80
	interval     = 100 * time.Millisecond
)

func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return defaultWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return defaultWidth
	}
	return width
}

// CreateProgressFunc returns a callback for options.Option.OnUploadProgress or
// OnDownloadProgress that draws a progress bar on w. label names the
// direction, e.g. "Upload" or "Download".
func CreateProgressFunc(w io.Writer, label string) func(int64, int64) {
	var lastUpdate time.Time
	var lastBytes int64

	return func(bytes, totalBytes int64) {
		now := time.Now()
		done := totalBytes > 0 && bytes >= totalBytes
		if !done && now.Sub(lastUpdate) < interval {
			return
		}

		var speed float64
		if !lastUpdate.IsZero() {
			if elapsed := now.Sub(lastUpdate); elapsed > 0 {
				speed = float64(bytes-lastBytes) / elapsed.Seconds()
			}
		}

		var message string
		if totalBytes > 0 {
			message = bar(label, bytes, totalBytes, speed)
		} else {
			message = fmt.Sprintf("\r%s %d bytes | Speed: %s", label, bytes, formatSpeed(speed))
		}

		if pad := terminalWidth(w) - len(message); pad > 0 {
			message += strings.Repeat(" ", pad)
		}
		if done {
			message += "\n"
		}
		fmt.Fprint(w, message)

		lastUpdate = now
		lastBytes = bytes
	}
}

func bar(label string, bytes, totalBytes int64, speed float64) string {
	percentage := float64(bytes) / float64(totalBytes) * 100
	if bytes >= totalBytes {
		return fmt.Sprintf("\r[%s] 100.00%% | %s complete!", strings.Repeat("=", barWidth), label)
	}

	var eta time.Duration
	if speed > 0 {
		eta = time.Duration(float64(totalBytes-bytes) / speed * float64(time.Second))
	}

	filled := int(float64(barWidth) * (percentage / 100))
	b := strings.Repeat("=", filled) + strings.Repeat(" ", barWidth-filled)
	return fmt.Sprintf("\r[%s] %.2f%% | Speed: %s | ETA: %s", b, percentage, formatSpeed(speed), formatETA(eta))
}

func formatSpeed(speed float64) string {
	switch {
	case speed >= 1024*1024*1024:
		return fmt.Sprintf("%.2f GB/s", speed/(1024*1024*1024))
	case speed >= 1024*1024:
		return fmt.Sprintf("%.2f MB/s", speed/(1024*1024))
	case speed >= 1024:
		return fmt.Sprintf("%.2f KB/s", speed/1024)
	default:
		return fmt.Sprintf("%.2f B/s", speed)
	}
}

func formatETA(eta time.Duration) string {
	switch {
	case eta <= 0:
		return ""
	case eta >= time.Hour:
		return fmt.Sprintf("%.1fh", eta.Hours())
	case eta >= time.Minute:
		return fmt.Sprintf("%.1fm", eta.Minutes())
	default:
		return fmt.Sprintf("%.0fs", eta.Seconds())
	}
}
