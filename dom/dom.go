// Package dom holds the page the client works against: the form the field
// values are read from and the element the server response is written into.
package dom

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	ErrElementNotFound = errors.New("element not found")
	ErrFormNotFound    = errors.New("form not found")
)

// Document is a parsed HTML page. It is safe for concurrent use; writes to
// the same element simply replace one another.
type Document struct {
	mu   sync.RWMutex
	root *html.Node
}

// Parse reads an HTML page.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing page: %w", err)
	}
	return &Document{root: root}, nil
}

// ParseString is Parse for in-memory markup.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Render writes the whole page as HTML.
func (d *Document) Render(w io.Writer) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return html.Render(w, d.root)
}

// InnerHTML returns the serialized children of the element with the given id.
func (d *Document) InnerHTML(id string) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	n := findByID(d.root, id)
	if n == nil {
		return "", fmt.Errorf("%w: #%s", ErrElementNotFound, id)
	}
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// SetInnerHTML replaces the children of the element with the given id by
// markup parsed as HTML. Nothing is escaped.
func (d *Document) SetInnerHTML(id string, markup string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := findByID(d.root, id)
	if n == nil {
		return fmt.Errorf("%w: #%s", ErrElementNotFound, id)
	}

	nodes, err := html.ParseFragment(strings.NewReader(markup), n)
	if err != nil {
		return fmt.Errorf("parsing markup for #%s: %w", id, err)
	}

	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	for _, c := range nodes {
		n.AppendChild(c)
	}
	return nil
}

// Form returns the form with the given name attribute.
func (d *Document) Form(name string) (*Form, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	n := find(d.root, func(n *html.Node) bool {
		return n.DataAtom == atom.Form && attr(n, "name") == name
	})
	if n == nil {
		return nil, fmt.Errorf("%w: %s", ErrFormNotFound, name)
	}
	return &Form{doc: d, node: n}, nil
}

// Form is a form element inside a Document.
type Form struct {
	doc  *Document
	node *html.Node
}

// Value returns the current value of the named control. Inputs report their
// value attribute, textareas their text and selects the selected option.
// A missing control reads as "".
func (f *Form) Value(name string) string {
	f.doc.mu.RLock()
	defer f.doc.mu.RUnlock()

	n := find(f.node, func(n *html.Node) bool {
		switch n.DataAtom {
		case atom.Input, atom.Textarea, atom.Select:
			return attr(n, "name") == name
		}
		return false
	})
	if n == nil {
		return ""
	}

	switch n.DataAtom {
	case atom.Textarea:
		return text(n)
	case atom.Select:
		return selected(n)
	default:
		return attr(n, "value")
	}
}

// SetValue sets the value attribute of the named input. It returns
// ErrElementNotFound when the form has no such input.
func (f *Form) SetValue(name, value string) error {
	f.doc.mu.Lock()
	defer f.doc.mu.Unlock()

	n := find(f.node, func(n *html.Node) bool {
		return n.DataAtom == atom.Input && attr(n, "name") == name
	})
	if n == nil {
		return fmt.Errorf("%w: input %s", ErrElementNotFound, name)
	}
	for i := range n.Attr {
		if n.Attr[i].Key == "value" {
			n.Attr[i].Val = value
			return nil
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: "value", Val: value})
	return nil
}

func findByID(root *html.Node, id string) *html.Node {
	return find(root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && attr(n, "id") == id
	})
}

func find(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := find(c, match); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// selected follows the browser rule: the selected option, else the first.
func selected(sel *html.Node) string {
	var first, chosen *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.DataAtom == atom.Option {
			if first == nil {
				first = n
			}
			if chosen == nil && hasAttr(n, "selected") {
				chosen = n
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(sel)
	if chosen == nil {
		chosen = first
	}
	if chosen == nil {
		return ""
	}
	if hasAttr(chosen, "value") {
		return attr(chosen, "value")
	}
	return strings.TrimSpace(text(chosen))
}
