package options

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewDefaults(t *testing.T) {
	opt := New()

	assert.False(t, opt.Verbose)
	assert.Nil(t, opt.Logger)
	assert.NotNil(t, opt.GetLogger())
	assert.Empty(t, opt.UserAgent)
	assert.Equal(t, DefaultUserAgent, opt.GetUserAgent())
	assert.Equal(t, CompressionNone, opt.Compression)
	assert.Equal(t, IdentifierDefault, opt.UniqueIdentifierType)
	assert.Nil(t, opt.Transport)
	assert.Same(t, sharedTransport, opt.GetTransport())
	assert.NotNil(t, opt.Header)

	_, err := ulid.Parse(opt.GenerateIdentifier())
	assert.NoError(t, err, "identifiers default to ULID")
}

func TestMerge(t *testing.T) {
	src := &Option{
		Header:               http.Header{"X-Trace": {"abc"}},
		Cookies:              []*http.Cookie{{Name: "session", Value: "new"}},
		Compression:          CompressionGzip,
		UserAgent:            "custom",
		UniqueIdentifierType: IdentifierUUID,
		Verbose:              true,
	}

	opt := New()
	opt.AddCookie(&http.Cookie{Name: "session", Value: "old"})
	opt.Merge(src)

	assert.Equal(t, "abc", opt.Header.Get("X-Trace"))
	require.Len(t, opt.Cookies, 1)
	assert.Equal(t, "new", opt.Cookies[0].Value)
	assert.Equal(t, CompressionGzip, opt.Compression)
	assert.Equal(t, "custom", opt.UserAgent)
	assert.Equal(t, IdentifierUUID, opt.UniqueIdentifierType)
	assert.True(t, opt.Verbose)
}

func TestMergeKeepsUnsetSettings(t *testing.T) {
	logger := zap.NewExample()
	transport := &http.Transport{}

	global := New()
	global.SetLogger(logger)
	global.EnableRedirects()
	global.UserAgent = "custom-agent"
	global.UniqueIdentifierType = IdentifierUUID
	global.SetTransport(transport)
	global.SetCompression(CompressionLZ4)

	override := New()
	override.AddHeader("X-Trace", "abc")
	global.Merge(override)

	assert.Same(t, logger, global.Logger)
	assert.True(t, global.Verbose)
	assert.True(t, global.FollowRedirect)
	assert.Equal(t, "custom-agent", global.GetUserAgent())
	assert.Equal(t, IdentifierUUID, global.UniqueIdentifierType)
	assert.Same(t, transport, global.GetTransport())
	assert.Equal(t, CompressionLZ4, global.Compression)
	assert.Equal(t, "abc", global.Header.Get("X-Trace"))
}

func TestCloneIsIndependent(t *testing.T) {
	opt := New()
	opt.AddHeader("X-One", "1")

	c := opt.Clone()
	c.AddHeader("X-Two", "2")

	assert.Empty(t, opt.Header.Get("X-Two"))
	assert.Equal(t, "1", c.Header.Get("X-One"))
}

func TestGenerateIdentifier(t *testing.T) {
	opt := New()

	opt.UniqueIdentifierType = IdentifierULID
	_, err := ulid.Parse(opt.GenerateIdentifier())
	assert.NoError(t, err)

	opt.UniqueIdentifierType = IdentifierUUID
	_, err = uuid.Parse(opt.GenerateIdentifier())
	assert.NoError(t, err)

	opt.UniqueIdentifierType = IdentifierNone
	assert.Empty(t, opt.GenerateIdentifier())
}

func TestIdentifierPrefersFixedValue(t *testing.T) {
	opt := New()
	opt.UniqueIdentifier = "01ARZ3NDEKTSV4RRFFQ69G5FAV"
	assert.Equal(t, opt.UniqueIdentifier, opt.Identifier())

	merged := New()
	merged.Merge(opt)
	assert.Equal(t, opt.UniqueIdentifier, merged.Identifier())

	opt.UniqueIdentifier = ""
	assert.NotEqual(t, opt.Identifier(), opt.Identifier())
}

func TestGetCompressor(t *testing.T) {
	tests := []struct {
		name        string
		compression CompressionType
		wantErr     bool
	}{
		{"gzip", CompressionGzip, false},
		{"deflate", CompressionDeflate, false},
		{"brotli", CompressionBrotli, false},
		{"snappy", CompressionSnappy, false},
		{"lz4", CompressionLZ4, false},
		{"custom without func", CompressionCustom, true},
		{"unknown", CompressionType("zstd"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opt := New()
			opt.SetCompression(tt.compression)

			pr, pw := io.Pipe()
			defer pr.Close()

			w, err := opt.GetCompressor(pw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			go func() {
				var buf bytes.Buffer
				io.Copy(&buf, pr)
			}()
			_, err = w.Write([]byte(strings.Repeat("pp=1&", 100)))
			assert.NoError(t, err)
			assert.NoError(t, w.Close())
			pw.Close()
		})
	}
}

func TestContentEncoding(t *testing.T) {
	opt := New()
	opt.SetCompression(CompressionBrotli)
	assert.Equal(t, "br", opt.ContentEncoding())

	opt.SetCompression(CompressionCustom)
	assert.Equal(t, "application/octet-stream", opt.ContentEncoding())

	opt.CustomCompressionType = "zstd"
	assert.Equal(t, "zstd", opt.ContentEncoding())
}

func TestParseCompression(t *testing.T) {
	c, err := ParseCompression("Brotli")
	require.NoError(t, err)
	assert.Equal(t, CompressionBrotli, c)

	c, err = ParseCompression("none")
	require.NoError(t, err)
	assert.Equal(t, CompressionNone, c)

	_, err = ParseCompression("rar")
	assert.Error(t, err)
}

func TestProgressReader(t *testing.T) {
	var last, total int64
	r := ProgressReader(strings.NewReader("pp=1&fs=2"), 9, func(read, t int64) {
		last, total = read, t
	})

	b, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "pp=1&fs=2", string(b))
	assert.Equal(t, int64(9), last)
	assert.Equal(t, int64(9), total)
}

func TestProgressWriter(t *testing.T) {
	buf := NewWriteCloserBuffer()
	var last int64
	w := ProgressWriter(buf, -1, func(written, _ int64) {
		last = written
	})

	_, err := w.Write([]byte("<p>result</p>"))
	require.NoError(t, err)
	assert.NoError(t, w.Close())
	assert.Equal(t, int64(13), last)
	assert.Equal(t, "<p>result</p>", buf.String())
}
