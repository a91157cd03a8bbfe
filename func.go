package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/caelisco/plenoptiform/form"
	"github.com/caelisco/plenoptiform/options"
	"github.com/caelisco/plenoptiform/response"
	"go.uber.org/zap"
)

const (
	SchemeHTTP  string = "http://"
	SchemeHTTPS string = "https://"
	ContentType string = "Content-Type"
	FormEncoded string = "application/x-www-form-urlencoded"
)

// A global default client is used for the package level functions.
var client = &http.Client{
	Timeout: 0,
}

// doRequest performs a single request to the endpoint. Any HTTP status is a
// completed request; only failures to build, send or read it are errors.
func doRequest(ctx context.Context, client *http.Client, method string, url string, payload any, opts ...*options.Option) (response.Response, error) {
	st := time.Now()

	opt := options.New(opts...)

	// Work on a copy so concurrent submissions never share redirect state.
	hc := *client
	if hc.Transport == nil {
		hc.Transport = opt.GetTransport()
	}

	url, err := normaliseURL(url, opt.ProtocolScheme)
	if err != nil {
		return response.Response{}, fmt.Errorf("supplied url did not pass url.Parse(): %w", err)
	}

	opt.Header.Set("User-Agent", opt.GetUserAgent())

	payloadReader, totalSize, err := createPayloadReader(payload, opt)
	if err != nil {
		return response.Response{}, fmt.Errorf("unable to create payload reader: %w", err)
	}

	if opt.OnUploadProgress != nil && payloadReader != nil {
		payloadReader = options.ProgressReader(payloadReader, totalSize, opt.OnUploadProgress)
	}

	response := response.New(url, method, payload, opt)

	// The pipe reader is an io.ReadCloser, so the transport closes it once the
	// request is done and the compressing goroutine always returns.
	body := payloadReader
	var pr *io.PipeReader
	if payloadReader != nil && opt.Compression != options.CompressionNone {
		opt.LogVerbose("compressing payload", zap.String("compression", string(opt.Compression)))
		var pw *io.PipeWriter
		pr, pw = io.Pipe()
		go compress(pw, payloadReader, opt)
		body = pr
		opt.Header.Set("Content-Encoding", opt.ContentEncoding())
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		if pr != nil {
			pr.Close()
		}
		response.Error = err
		return response, err
	}

	for k, v := range opt.Header {
		req.Header[k] = v
	}

	for _, v := range opt.Cookies {
		req.AddCookie(v)
	}

	hc.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		opt.LogVerbose("server wanted to redirect",
			zap.String("location", req.Response.Header.Get("Location")),
			zap.Int("status code", req.Response.StatusCode))
		if !opt.FollowRedirect {
			return http.ErrUseLastResponse
		}
		return nil
	}

	buf := options.NewWriteCloserBuffer()
	var writer io.WriteCloser = buf

	opt.LogVerbose("sending request",
		zap.String("id", response.UniqueIdentifier),
		zap.String("url", url),
		zap.String("method", method))
	response.RequestTime = time.Now().Unix()
	r, err := hc.Do(req)
	if err != nil {
		response.Error = err
		return response, err
	}
	defer r.Body.Close()
	response.ResponseTime = time.Now().Unix()

	opt.LogVerbose("response received",
		zap.String("id", response.UniqueIdentifier),
		zap.String("status", r.Status),
		zap.Int64("content-length", r.ContentLength),
		zap.String("content-type", r.Header.Get(ContentType)))

	if opt.OnDownloadProgress != nil {
		writer = options.ProgressWriter(writer, r.ContentLength, opt.OnDownloadProgress)
	}
	defer writer.Close()

	if opt.DownloadBufferSize != nil {
		_, err = io.CopyBuffer(writer, r.Body, make([]byte, *opt.DownloadBufferSize))
	} else {
		_, err = io.Copy(writer, r.Body)
	}
	if err != nil {
		response.Error = err
		return response, err
	}

	response.Body = *buf
	response.ProcessedTime = time.Now().Unix()
	response.PopulateResponse(r, st)

	return response, nil
}

// compress streams src through the configured compressor into pw.
func compress(pw *io.PipeWriter, src io.Reader, opt *options.Option) {
	compressor, err := opt.GetCompressor(pw)
	if err != nil {
		pw.CloseWithError(err)
		return
	}

	if opt.UploadBufferSize != nil {
		_, err = io.CopyBuffer(compressor, src, make([]byte, *opt.UploadBufferSize))
	} else {
		_, err = io.Copy(compressor, src)
	}
	if err != nil {
		compressor.Close()
		pw.CloseWithError(fmt.Errorf("compression error during copy: %w", err))
		return
	}
	if err := compressor.Close(); err != nil {
		pw.CloseWithError(err)
		return
	}
	pw.Close()
}

// Post performs an HTTP POST to the specified URL with the given payload.
// Returns the HTTP response and an error if any.
func Post(ctx context.Context, url string, payload any, opts ...*options.Option) (response.Response, error) {
	return doRequest(ctx, client, http.MethodPost, url, payload, opts...)
}

// PostForm performs an HTTP POST with an x-www-form-urlencoded body built from
// the payload, keeping its key order.
func PostForm(ctx context.Context, url string, payload form.Payload, opts ...*options.Option) (response.Response, error) {
	opt := options.New(opts...)
	opt.Header.Set(ContentType, FormEncoded)
	return doRequest(ctx, client, http.MethodPost, url, payload, opt)
}

// PostFormData performs an HTTP POST as an x-www-form-urlencoded payload built from a map.
// Keys are sent in sorted order.
func PostFormData(ctx context.Context, url string, payload map[string]string, opts ...*options.Option) (response.Response, error) {
	opt := options.New(opts...)
	opt.Header.Set(ContentType, FormEncoded)
	return doRequest(ctx, client, http.MethodPost, url, form.Encode(payload), opt)
}
