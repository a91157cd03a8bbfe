// Package render delivers the text returned by the endpoint to wherever the
// result is shown.
package render

import (
	"context"
	"io"

	"github.com/caelisco/plenoptiform/dom"
)

// DefaultElementID is the id of the element that receives the result.
const DefaultElementID = "result"

// Renderer receives the raw response text of a completed submission.
type Renderer interface {
	Render(ctx context.Context, text string) error
}

// Func adapts a plain function to a Renderer.
type Func func(ctx context.Context, text string) error

func (f Func) Render(ctx context.Context, text string) error {
	return f(ctx, text)
}

// Element writes the response into an element of a page as HTML, replacing
// what was there. The text is not escaped.
type Element struct {
	Doc *dom.Document
	ID  string
}

// NewElement returns an Element targeting the result element of doc.
func NewElement(doc *dom.Document) *Element {
	return &Element{Doc: doc, ID: DefaultElementID}
}

func (e *Element) Render(_ context.Context, text string) error {
	id := e.ID
	if id == "" {
		id = DefaultElementID
	}
	return e.Doc.SetInnerHTML(id, text)
}

// Writer copies the response text to an io.Writer.
type Writer struct {
	W io.Writer
}

func (w Writer) Render(_ context.Context, text string) error {
	_, err := io.WriteString(w.W, text)
	return err
}
