package options

import (
	"compress/gzip"
	"compress/zlib"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/golang/snappy"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/pierrec/lz4/v4"
	"go.uber.org/zap"
)

type CompressionType string
type UniqueIdentifierType string

// DefaultUserAgent is sent when an Option leaves UserAgent empty.
const DefaultUserAgent = "caelisco/plenoptiform/v1.0.0"

const (
	CompressionNone    CompressionType = ""
	CompressionGzip    CompressionType = "gzip"
	CompressionDeflate CompressionType = "deflate"
	CompressionBrotli  CompressionType = "br"
	CompressionSnappy  CompressionType = "snappy"
	CompressionLZ4     CompressionType = "lz4"
	CompressionCustom  CompressionType = "custom"
)

const (
	IdentifierDefault UniqueIdentifierType = "" // ULID
	IdentifierNone    UniqueIdentifierType = "none"
	IdentifierUUID    UniqueIdentifierType = "uuid"
	IdentifierULID    UniqueIdentifierType = "ulid"
)

// Option provides configuration for form submissions. It covers headers, body compression,
// logging, submission identifiers and progress tracking.
// Zero valued fields are unset: they are left alone by Merge and fall back to
// their defaults when the request is made.
type Option struct {
	Verbose               bool                                           // Whether logging should be verbose or not
	Logger                *zap.Logger                                    // Logging - a no-op logger when nil
	Header                http.Header                                    // Headers to be included in the request
	Cookies               []*http.Cookie                                 // Cookies to be included in the request
	ProtocolScheme        string                                         // scheme used when the base URL has none. It defaults to https
	Compression           CompressionType                                // CompressionType to use for the request body
	CustomCompressionType CompressionType                                // Content-Encoding sent with a custom compressor
	CustomCompressor      func(w *io.PipeWriter) (io.WriteCloser, error) // Function for custom compression
	UserAgent             string                                         // User Agent to send with requests, DefaultUserAgent when empty
	FollowRedirect        bool                                           // Follow redirects. Default is false
	UniqueIdentifierType  UniqueIdentifierType                           // Kind of identifier generated for the submission
	UniqueIdentifier      string                                         // Fixed identifier for the submission, generated when empty
	Transport             *http.Transport                                // Transport used when the http.Client has none, a shared one when nil
	UploadBufferSize      *int                                           // Control the size of the buffer when compressing the body
	DownloadBufferSize    *int                                           // Control the size of the buffer when reading the response
	OnUploadProgress      func(bytesRead, totalBytes int64)              // To monitor and track progress when uploading
	OnDownloadProgress    func(bytesRead, totalBytes int64)              // To monitor and track progress when downloading
}

// New creates an Option with every setting unset, so merging it over another
// Option only changes what has been set on it since. If additional options are
// provided via the variadic parameter, they are merged in.
func New(opts ...*Option) *Option {
	opt := &Option{
		Header: http.Header{},
	}

	// The source (opts[0]) takes preference when assigning variables.
	if len(opts) > 0 && opts[0] != nil {
		opt.Merge(opts[0])
	}

	return opt
}

// LogVerbose logs a message with the configured logger if verbose logging is enabled.
func (opt *Option) LogVerbose(msg string, fields ...zap.Field) {
	if opt.Verbose {
		opt.GetLogger().Info(msg, fields...)
	}
}

// GetLogger returns the configured logger, or a no-op logger when none is set.
func (opt *Option) GetLogger() *zap.Logger {
	if opt.Logger == nil {
		return zap.NewNop()
	}
	return opt.Logger
}

// GetUserAgent returns the User-Agent to send.
func (opt *Option) GetUserAgent() string {
	if opt.UserAgent == "" {
		return DefaultUserAgent
	}
	return opt.UserAgent
}

// GetTransport returns the configured transport, or the shared default one.
func (opt *Option) GetTransport() *http.Transport {
	if opt.Transport == nil {
		return sharedTransport
	}
	return opt.Transport
}

// EnableLogging turns on verbose logging for the Option instance.
func (opt *Option) EnableLogging() {
	opt.Verbose = true
}

// DisableLogging turns off verbose logging for the Option instance.
func (opt *Option) DisableLogging() {
	opt.Verbose = false
}

// SetLogger configures a custom logger and enables verbose logging.
func (opt *Option) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opt.Verbose = true
	opt.Logger = logger
}

// AddHeader adds a new header with the specified key and value to the request headers.
func (opt *Option) AddHeader(key string, value string) {
	if opt.Header == nil {
		opt.Header = http.Header{}
	}
	opt.Header.Add(key, value)
}

// ClearHeaders removes all previously set headers from the Option.
func (opt *Option) ClearHeaders() {
	opt.Header = http.Header{}
}

// AddCookie adds a new cookie to the Option's cookie collection.
func (opt *Option) AddCookie(cookie *http.Cookie) {
	opt.Cookies = append(opt.Cookies, cookie)
}

// ClearCookies removes all previously set cookies from the Option.
func (opt *Option) ClearCookies() {
	opt.Cookies = []*http.Cookie{}
}

// SetProtocolScheme sets the protocol scheme (e.g., "http://", "https://") used for
// base URLs that do not carry one. "://" is appended when missing.
func (opt *Option) SetProtocolScheme(scheme string) {
	if !strings.HasSuffix(scheme, "://") {
		scheme += "://"
	}
	opt.ProtocolScheme = scheme
}

// SetCompression configures the compression type to be used for the request body.
func (opt *Option) SetCompression(compressionType CompressionType) {
	opt.Compression = compressionType
}

// ParseCompression maps a configuration string onto a CompressionType.
func ParseCompression(s string) (CompressionType, error) {
	switch c := CompressionType(strings.ToLower(strings.TrimSpace(s))); c {
	case CompressionNone, CompressionGzip, CompressionDeflate, CompressionBrotli, CompressionSnappy, CompressionLZ4:
		return c, nil
	case "none":
		return CompressionNone, nil
	case "brotli":
		return CompressionBrotli, nil
	default:
		return CompressionNone, fmt.Errorf("unsupported compression type: %s", s)
	}
}

// GetCompressor returns an io.WriteCloser for the configured compression type.
func (opt *Option) GetCompressor(w *io.PipeWriter) (io.WriteCloser, error) {
	switch opt.Compression {
	case CompressionGzip:
		return gzip.NewWriter(w), nil
	case CompressionDeflate:
		return zlib.NewWriter(w), nil
	case CompressionBrotli:
		return brotli.NewWriter(w), nil
	case CompressionSnappy:
		return snappy.NewBufferedWriter(w), nil
	case CompressionLZ4:
		return lz4.NewWriter(w), nil
	case CompressionCustom:
		if opt.CustomCompressor != nil {
			return opt.CustomCompressor(w)
		}
		return nil, fmt.Errorf("custom compressor function is not defined")
	default:
		return nil, fmt.Errorf("unsupported compression type: %s", opt.Compression)
	}
}

// ContentEncoding returns the Content-Encoding header value for the configured compression.
func (opt *Option) ContentEncoding() string {
	if opt.Compression != CompressionCustom {
		return string(opt.Compression)
	}
	if opt.CustomCompressionType != "" {
		return string(opt.CustomCompressionType)
	}
	return "application/octet-stream"
}

// EnableRedirects configures the Option to follow HTTP redirects.
func (opt *Option) EnableRedirects() {
	opt.FollowRedirect = true
}

// DisableRedirects configures the Option to not follow HTTP redirects.
func (opt *Option) DisableRedirects() {
	opt.FollowRedirect = false
}

// SetTransport configures a custom HTTP transport for the requests.
func (opt *Option) SetTransport(transport *http.Transport) {
	opt.Transport = transport
}

// GenerateIdentifier creates a new identifier based on the configured UniqueIdentifierType.
// Returns a UUID or ULID string, or an empty string for IdentifierNone.
func (opt *Option) GenerateIdentifier() string {
	switch opt.UniqueIdentifierType {
	case IdentifierNone:
		return ""
	case IdentifierUUID:
		return uuid.New().String()
	default:
		return ulid.Make().String()
	}
}

// Identifier returns UniqueIdentifier when it is set and a newly generated one otherwise.
func (opt *Option) Identifier() string {
	if opt.UniqueIdentifier != "" {
		return opt.UniqueIdentifier
	}
	return opt.GenerateIdentifier()
}

// SetUploadBufferSize configures the buffer size used when compressing the body.
// The size must be positive; otherwise, the setting will be ignored.
func (opt *Option) SetUploadBufferSize(size int) {
	if size > 0 {
		opt.UploadBufferSize = &size
	}
}

// SetDownloadBufferSize configures the buffer size used when reading the response.
// The size must be positive; otherwise, the setting will be ignored.
func (opt *Option) SetDownloadBufferSize(size int) {
	if size > 0 {
		opt.DownloadBufferSize = &size
	}
}

// Clone returns a copy of the Option that can be modified without touching the original.
func (opt *Option) Clone() *Option {
	c := *opt
	c.Header = opt.Header.Clone()
	if c.Header == nil {
		c.Header = http.Header{}
	}
	c.Cookies = append([]*http.Cookie(nil), opt.Cookies...)
	return &c
}

// Merge combines the settings from another Option instance into this one.
// Settings the source has set take precedence; unset ones leave the existing
// value alone. Verbose and FollowRedirect can only be switched on by a merge.
func (opt *Option) Merge(src *Option) {
	if opt.Header == nil {
		opt.Header = make(http.Header)
	}
	// Replaces any existing values
	for key, values := range src.Header {
		opt.Header[key] = values
	}

	for _, sc := range src.Cookies {
		found := false
		for i, tc := range opt.Cookies {
			if tc.Name == sc.Name {
				opt.Cookies[i] = sc
				found = true
				break
			}
		}
		if !found {
			opt.Cookies = append(opt.Cookies, sc)
		}
	}

	if src.Verbose {
		opt.Verbose = true
	}
	if src.FollowRedirect {
		opt.FollowRedirect = true
	}

	if src.Logger != nil {
		opt.Logger = src.Logger
	}

	if src.Transport != nil {
		opt.Transport = src.Transport
	}

	if src.ProtocolScheme != "" {
		opt.ProtocolScheme = src.ProtocolScheme
	}

	if src.Compression != "" {
		opt.Compression = src.Compression
	}

	if src.CustomCompressionType != "" {
		opt.CustomCompressionType = src.CustomCompressionType
	}

	if src.CustomCompressor != nil {
		opt.CustomCompressor = src.CustomCompressor
	}

	if src.UserAgent != "" {
		opt.UserAgent = src.UserAgent
	}

	if src.UniqueIdentifierType != IdentifierDefault {
		opt.UniqueIdentifierType = src.UniqueIdentifierType
	}

	if src.UniqueIdentifier != "" {
		opt.UniqueIdentifier = src.UniqueIdentifier
	}

	if src.UploadBufferSize != nil {
		opt.UploadBufferSize = src.UploadBufferSize
	}

	if src.DownloadBufferSize != nil {
		opt.DownloadBufferSize = src.DownloadBufferSize
	}

	if src.OnUploadProgress != nil {
		opt.OnUploadProgress = src.OnUploadProgress
	}

	if src.OnDownloadProgress != nil {
		opt.OnDownloadProgress = src.OnDownloadProgress
	}
}

// sharedTransport is used by every Option without a Transport so idle connections are pooled across submissions.
var sharedTransport = defaultTransport()

// defaultTransport creates an http.Transport for a single low-volume endpoint.
func defaultTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,

		DialContext: (&net.Dialer{
			Timeout:   15 * time.Second,
			KeepAlive: 15 * time.Second,
		}).DialContext,

		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 5,
		MaxConnsPerHost:     10,

		// The CGI script computes before answering, so headers may lag.
		IdleConnTimeout:       90 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		ForceAttemptHTTP2: true,
	}
}
