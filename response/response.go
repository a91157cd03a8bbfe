package response

import (
	"net/http"
	"time"

	"github.com/caelisco/plenoptiform/options"
)

// Response represents the HTTP response of a form submission along with additional metadata
type Response struct {
	UniqueIdentifier string                    // ID of the submission, from Option.Identifier
	URL              string                    // URL the request was made to
	Method           string                    // HTTP method used
	RequestPayload   any                       // Payload sent with the request
	Options          *options.Option           // Configuration options for the request
	RequestTime      int64                     // Timestamp of when the request was initiated
	ResponseTime     int64                     // Timestamp of when the response was received
	ProcessedTime    int64                     // Timestamp of when the body was fully read
	Status           string                    // HTTP status message (e.g., "200 OK")
	StatusCode       int                       // HTTP status code (e.g., 200, 404)
	Proto            string                    // Protocol used (e.g., HTTP/1.1)
	Header           http.Header               // Headers included in the response
	ContentLength    int64                     // Length of the response content
	CompressionType  options.CompressionType   // Compression applied to the request body
	Cookies          []*http.Cookie            // Cookies received with the response
	AccessTime       time.Duration             // Time taken to complete the request
	Body             options.WriteCloserBuffer // The response body as a buffer
	Error            error                     // Any error encountered during the request
	Redirected       bool                      // Indicates if the request was redirected
	Location         string                    // New location if the request was redirected
}

// New initializes a new Response instance with basic details
func New(url string, method string, payload any, opt *options.Option) Response {
	return Response{
		UniqueIdentifier: opt.Identifier(),
		URL:              url,
		Method:           method,
		RequestPayload:   payload,
		Options:          opt,
		CompressionType:  opt.Compression,
	}
}

// Bytes returns the response body as a byte slice
func (r *Response) Bytes() []byte {
	if r.Body.IsEmpty() {
		return nil
	}
	return r.Body.Bytes()
}

// String returns the response body as a string
func (r *Response) String() string {
	if r.Body.IsEmpty() {
		return ""
	}
	return r.Body.String()
}

// Len returns the length of the response body
// If there is no body, it returns -1 to indicate there is
// an issue
func (r *Response) Len() int64 {
	if r.Body.IsEmpty() {
		return -1
	}
	return int64(r.Body.Len())
}

// OK reports whether the server answered with a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// PopulateResponse populates the Response struct with data from an http.Response
func (r *Response) PopulateResponse(resp *http.Response, start time.Time) {
	r.Status = resp.Status
	r.StatusCode = resp.StatusCode
	r.Proto = resp.Proto
	r.Header = resp.Header
	r.ContentLength = resp.ContentLength
	r.Cookies = resp.Cookies()
	r.AccessTime = time.Since(start)

	if resp.Request != nil && resp.Request.URL.String() != r.URL {
		r.Redirected = true
		r.Location = resp.Request.URL.String()
	}
}
