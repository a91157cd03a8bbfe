// Package form builds the request payload sent to the plenoptisign CGI endpoint.
//
// A payload always holds twelve pairs: the ten light field parameters read
// from the page form followed by the refo and tria flags. The endpoint matches
// keys by name, so renaming or dropping a key breaks the contract with it.
package form

import (
	"fmt"
	"strings"
)

// Keys are the form fields read on every submission, in wire order.
var Keys = []string{"pp", "fs", "pm", "dA", "fU", "df", "a", "M", "i", "dx"}

// Flags are appended after the form fields and never change. They ask the
// endpoint for both refocusing and triangulation results.
var Flags = []Pair{
	{Key: "refo", Value: "1"},
	{Key: "tria", Value: "1"},
}

// Source supplies field values by name. Missing fields read as "".
type Source interface {
	Value(name string) string
}

// Values is a map backed Source.
type Values map[string]string

func (v Values) Value(name string) string {
	return v[name]
}

// Defaults returns the parameter set of the reference plenoptic camera.
func Defaults() Values {
	return Values{
		"pp": "0.009",
		"fs": "2.75",
		"pm": "0.125",
		"dA": "111.0324",
		"fU": "193.2935",
		"df": "4000",
		"a":  "1",
		"M":  "13.9523",
		"i":  "-6",
		"dx": "4",
	}
}

// Pair is a single key/value of the payload, unencoded.
type Pair struct {
	Key   string
	Value string
}

// Payload is the ordered set of pairs for one submission.
type Payload []Pair

// Build reads every key in Keys from src and appends Flags. Values are taken
// as-is; no parsing or range checking is done.
func Build(src Source) Payload {
	p := make(Payload, 0, len(Keys)+len(Flags))
	for _, k := range Keys {
		v := ""
		if src != nil {
			v = src.Value(k)
		}
		p = append(p, Pair{Key: k, Value: v})
	}
	return append(p, Flags...)
}

// Encode joins the pairs as key=value segments separated by '&'.
// There is no leading '?': the result is a request body, not a URL suffix.
func (p Payload) Encode() string {
	var b strings.Builder
	for i, pair := range p {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(pair.Key)
		b.WriteByte('=')
		b.WriteString(EscapeComponent(pair.Value))
	}
	return b.String()
}

// Get returns the value for key and whether it was present.
func (p Payload) Get(key string) (string, bool) {
	for _, pair := range p {
		if pair.Key == key {
			return pair.Value, true
		}
	}
	return "", false
}

// Map returns the payload as a map. Later duplicates win.
func (p Payload) Map() map[string]string {
	m := make(map[string]string, len(p))
	for _, pair := range p {
		m[pair.Key] = pair.Value
	}
	return m
}

// Decode splits an encoded body back into its pairs, keeping their order.
func Decode(body string) (Payload, error) {
	if body == "" {
		return Payload{}, nil
	}
	segments := strings.Split(body, "&")
	p := make(Payload, 0, len(segments))
	for _, seg := range segments {
		k, v, ok := strings.Cut(seg, "=")
		if !ok {
			return nil, fmt.Errorf("segment %q has no '='", seg)
		}
		key, err := UnescapeComponent(k)
		if err != nil {
			return nil, fmt.Errorf("decoding key %q: %w", k, err)
		}
		value, err := UnescapeComponent(v)
		if err != nil {
			return nil, fmt.Errorf("decoding value of %q: %w", key, err)
		}
		p = append(p, Pair{Key: key, Value: value})
	}
	return p, nil
}
