package client

import (
	"context"
	"errors"

	"github.com/caelisco/plenoptiform/form"
	"github.com/caelisco/plenoptiform/options"
	"github.com/caelisco/plenoptiform/render"
	"github.com/caelisco/plenoptiform/response"
	"go.uber.org/zap"
)

// DefaultEndpoint is the path of the plenoptisign CGI script relative to the page.
const DefaultEndpoint = "plenoptisign/plenoptisign/bin/cgi_script.py"

// Submitter wires a form to the endpoint and the place its answer is shown.
// Each submission is independent: nothing is shared between them except the
// renderer, and the one that completes last is what stays visible.
type Submitter struct {
	URL      string          // Absolute endpoint URL, see ResolveURL.
	Form     form.Source     // Where the field values are read from.
	Renderer render.Renderer // Receives the response text.
	Client   *Client         // Client used for the request. Defaults to New().
	Logger   *zap.Logger     // Reports failed submissions. Defaults to a no-op logger.
	Options  *options.Option // Per submission options merged over the client's.
}

// Pending is a submission that has been sent and may not have completed yet.
type Pending struct {
	id      string
	payload form.Payload
	done    chan struct{}
	resp    response.Response
	err     error
}

// ID is the identifier of the submission. It matches the UniqueIdentifier of the
// response and the id in the request log lines. It is empty when identifiers
// are disabled with options.IdentifierNone.
func (p *Pending) ID() string {
	return p.id
}

// Payload returns the pairs that were sent.
func (p *Pending) Payload() form.Payload {
	return p.payload
}

// Done is closed once the response has been received and rendered, or the
// request has failed.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the submission completes and returns its outcome. The
// error covers both the transport and the renderer.
func (p *Pending) Wait() (response.Response, error) {
	<-p.done
	return p.resp, p.err
}

// Run is the form submission handler. It sends the form in the background and
// always returns true so the default submit action carries on.
func (s *Submitter) Run(ctx context.Context) bool {
	s.Submit(ctx)
	return true
}

// Submit builds the payload from the form, sends it without waiting for the
// answer and returns the in-flight submission. When the response arrives, its
// body is handed to the renderer whatever the HTTP status. A request that
// fails outright leaves the rendered result untouched.
func (s *Submitter) Submit(ctx context.Context) *Pending {
	c := s.Client
	if c == nil {
		c = New()
	}
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	opt := c.GetGlobalOptions()
	if s.Options != nil {
		opt.Merge(s.Options)
	}
	// fix the id so the request path reuses it instead of generating another
	id := opt.Identifier()
	opt.UniqueIdentifier = id

	p := &Pending{
		id:      id,
		payload: form.Build(s.Form),
		done:    make(chan struct{}),
	}

	go func() {
		defer close(p.done)

		resp, err := c.PostForm(ctx, s.URL, p.payload, opt)
		resp.UniqueIdentifier = id
		p.resp = resp
		if err != nil {
			logger.Warn("submission failed", zap.String("id", id), zap.String("url", s.URL), zap.Error(err))
			p.err = err
			return
		}

		if s.Renderer == nil {
			return
		}
		if err := s.Renderer.Render(ctx, resp.String()); err != nil {
			logger.Warn("rendering result failed", zap.String("id", id), zap.Error(err))
			p.err = errors.Join(ErrRender, err)
		}
	}()

	return p
}

// ErrRender marks a submission whose response arrived but could not be shown.
var ErrRender = errors.New("render failed")
