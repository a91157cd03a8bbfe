package client_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	client "github.com/caelisco/plenoptiform"
	"github.com/caelisco/plenoptiform/dom"
	"github.com/caelisco/plenoptiform/form"
	"github.com/caelisco/plenoptiform/options"
	"github.com/caelisco/plenoptiform/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const page = `<html><body>
<form name="f1" onsubmit="return run()">
<input name="pp" value="1"><input name="fs" value="0.05"><input name="pm" value="35">
<input name="dA" value="2"><input name="fU" value="20"><input name="df" value="0.1">
<input name="a" value="0"><input name="M" value="1"><input name="i" value="0">
<input name="dx" value="0.0000045">
</form>
<div id="result">initial</div>
</body></html>`

func newPage(t *testing.T) (*dom.Document, *dom.Form) {
	t.Helper()
	doc, err := dom.ParseString(page)
	require.NoError(t, err)
	f, err := doc.Form("f1")
	require.NoError(t, err)
	return doc, f
}

func waitDone(t *testing.T, p *client.Pending) {
	t.Helper()
	select {
	case <-p.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("submission did not complete")
	}
}

func TestSubmitRendersResponse(t *testing.T) {
	bodies := make(chan string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		bodies <- r.PostForm.Get("dx")
		fmt.Fprint(w, "<p>result</p>")
	}))
	defer server.Close()

	doc, f := newPage(t)
	s := &client.Submitter{
		URL:      server.URL + "/" + client.DefaultEndpoint,
		Form:     f,
		Renderer: render.NewElement(doc),
	}

	p := s.Submit(context.Background())
	waitDone(t, p)

	resp, err := p.Wait()
	require.NoError(t, err)
	assert.Equal(t, p.ID(), resp.UniqueIdentifier)
	assert.Equal(t, "pp=1&fs=0.05&pm=35&dA=2&fU=20&df=0.1&a=0&M=1&i=0&dx=0.0000045&refo=1&tria=1", p.Payload().Encode())
	assert.Equal(t, "0.0000045", <-bodies)

	got, err := doc.InnerHTML("result")
	require.NoError(t, err)
	assert.Equal(t, "<p>result</p>", got)
}

func TestRunAlwaysContinues(t *testing.T) {
	server := setupTestServer(t)
	defer server.Close()

	sources := []form.Source{form.Values{}, form.Defaults(), form.Values{"pp": "not a number"}}
	for _, src := range sources {
		s := &client.Submitter{URL: server.URL + "/echo", Form: src}
		assert.True(t, s.Run(context.Background()))
	}

	// An unreachable endpoint does not change the answer either.
	s := &client.Submitter{URL: "http://127.0.0.1:1/cgi", Form: form.Defaults()}
	assert.True(t, s.Run(context.Background()))
}

func TestSubmitRendersErrorStatusBody(t *testing.T) {
	server := setupTestServer(t)
	defer server.Close()

	doc, f := newPage(t)
	s := &client.Submitter{URL: server.URL + "/fail", Form: f, Renderer: render.NewElement(doc)}

	resp, err := s.Submit(context.Background()).Wait()
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	got, _ := doc.InnerHTML("result")
	assert.Equal(t, "<p>Calculation failed.</p>", got)
}

func TestSubmitTransportFailureKeepsResult(t *testing.T) {
	server := setupTestServer(t)
	url := server.URL
	server.Close()

	doc, f := newPage(t)
	s := &client.Submitter{URL: url + "/echo", Form: f, Renderer: render.NewElement(doc)}

	_, err := s.Submit(context.Background()).Wait()
	assert.Error(t, err)

	got, _ := doc.InnerHTML("result")
	assert.Equal(t, "initial", got)
}

func TestSubmitMissingResultElement(t *testing.T) {
	server := setupTestServer(t)
	defer server.Close()

	doc, err := dom.ParseString(`<html><body></body></html>`)
	require.NoError(t, err)
	s := &client.Submitter{URL: server.URL + "/echo", Form: form.Defaults(), Renderer: render.NewElement(doc)}

	_, err = s.Submit(context.Background()).Wait()
	assert.ErrorIs(t, err, client.ErrRender)
	assert.ErrorIs(t, err, dom.ErrElementNotFound)
}

func TestSubmitSanitizedRenderer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<p>ok</p><script>alert(1)</script>")
	}))
	defer server.Close()

	doc, f := newPage(t)
	s := &client.Submitter{
		URL:      server.URL,
		Form:     f,
		Renderer: render.Sanitize(render.NewElement(doc), render.PolicyUGC),
	}

	_, err := s.Submit(context.Background()).Wait()
	require.NoError(t, err)

	got, _ := doc.InnerHTML("result")
	assert.Equal(t, "<p>ok</p>", got)
}

func TestOverlappingSubmissionsLastCompletionWins(t *testing.T) {
	gates := map[string]chan struct{}{
		"first":  make(chan struct{}),
		"second": make(chan struct{}),
	}
	arrived := make(chan string, 2)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		pp := r.PostForm.Get("pp")
		arrived <- pp
		<-gates[pp]
		fmt.Fprintf(w, "<p>%s</p>", pp)
	}))
	defer server.Close()

	doc, err := dom.ParseString(page)
	require.NoError(t, err)
	c := client.New()

	submit := func(pp string) *client.Pending {
		s := &client.Submitter{
			URL:      server.URL,
			Form:     form.Values{"pp": pp},
			Renderer: render.NewElement(doc),
			Client:   c,
		}
		return s.Submit(context.Background())
	}

	first := submit("first")
	second := submit("second")
	for i := 0; i < 2; i++ {
		select {
		case <-arrived:
		case <-time.After(5 * time.Second):
			t.Fatal("requests did not reach the server")
		}
	}

	// The later submission answers first, the earlier one answers last.
	close(gates["second"])
	waitDone(t, second)
	got, _ := doc.InnerHTML("result")
	assert.Equal(t, "<p>second</p>", got)

	close(gates["first"])
	waitDone(t, first)
	got, _ = doc.InnerHTML("result")
	assert.Equal(t, "<p>first</p>", got)

	responses := c.Responses()
	require.Len(t, responses, 2)
	assert.Equal(t, "<p>second</p>", responses[0].String())
	assert.Equal(t, "<p>first</p>", responses[1].String())
}

func TestSubmitOptionsOverrideClient(t *testing.T) {
	server := setupTestServer(t)
	defer server.Close()

	opt := options.New()
	opt.UniqueIdentifierType = options.IdentifierUUID
	opt.AddHeader("X-Submission", "one")

	s := &client.Submitter{URL: server.URL + "/echo-headers", Form: form.Defaults(), Options: opt}
	resp, err := s.Submit(context.Background()).Wait()
	require.NoError(t, err)
	assert.Equal(t, "one", resp.Header.Get("Echo-X-Submission"))
	assert.Len(t, resp.UniqueIdentifier, 36)
}

func TestSubmitKeepsClientSettings(t *testing.T) {
	server := setupTestServer(t)
	defer server.Close()

	var proxied atomic.Int64
	transport := &http.Transport{Proxy: func(*http.Request) (*url.URL, error) {
		proxied.Add(1)
		return nil, nil
	}}
	defer transport.CloseIdleConnections()

	global := options.New()
	global.UniqueIdentifierType = options.IdentifierUUID
	global.UserAgent = "custom-agent"
	global.SetTransport(transport)
	c := client.New(global)

	perSubmission := options.New()
	perSubmission.AddHeader("X-Submission", "one")

	s := &client.Submitter{URL: server.URL + "/echo-headers", Form: form.Defaults(), Client: c, Options: perSubmission}
	resp, err := s.Submit(context.Background()).Wait()
	require.NoError(t, err)

	assert.Len(t, resp.UniqueIdentifier, 36)
	assert.Equal(t, "custom-agent", resp.Header.Get("Echo-User-Agent"))
	assert.Equal(t, "one", resp.Header.Get("Echo-X-Submission"))
	assert.Equal(t, int64(1), proxied.Load())
}

func TestSubmitIdentifierReachesRequestPath(t *testing.T) {
	server := setupTestServer(t)
	defer server.Close()

	core, logs := observer.New(zap.InfoLevel)
	global := options.New()
	global.SetLogger(zap.New(core))
	c := client.New(global)

	s := &client.Submitter{URL: server.URL + "/echo", Form: form.Defaults(), Client: c}
	p := s.Submit(context.Background())
	_, err := p.Wait()
	require.NoError(t, err)
	require.NotEmpty(t, p.ID())

	responses := c.Responses()
	require.Len(t, responses, 1)
	assert.Equal(t, p.ID(), responses[0].UniqueIdentifier)

	sent := logs.FilterMessage("sending request").All()
	require.Len(t, sent, 1)
	assert.Equal(t, p.ID(), sent[0].ContextMap()["id"])
}

func TestSubmitWithoutIdentifier(t *testing.T) {
	server := setupTestServer(t)
	defer server.Close()

	global := options.New()
	global.UniqueIdentifierType = options.IdentifierNone

	s := &client.Submitter{URL: server.URL + "/echo", Form: form.Defaults(), Client: client.New(global)}
	p := s.Submit(context.Background())
	resp, err := p.Wait()
	require.NoError(t, err)
	assert.Empty(t, p.ID())
	assert.Empty(t, resp.UniqueIdentifier)
}
