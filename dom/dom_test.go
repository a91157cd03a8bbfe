package dom

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<!DOCTYPE html>
<html><head><title>plenoptisign</title></head>
<body>
<form name="f1" action="#" onsubmit="return run()">
  <input type="text" name="pp" value="0.009">
  <input type="text" name="fs" value="2.75">
  <textarea name="pm">0.125</textarea>
  <select name="M"><option value="13">13</option><option value="15" selected>15</option></select>
  <select name="i"><option>-6</option></select>
  <input type="text" name="dx">
</form>
<div id="result"><p>old</p></div>
</body></html>`

func parse(t *testing.T) *Document {
	t.Helper()
	doc, err := ParseString(page)
	require.NoError(t, err)
	return doc
}

func TestFormValues(t *testing.T) {
	f, err := parse(t).Form("f1")
	require.NoError(t, err)

	assert.Equal(t, "0.009", f.Value("pp"))
	assert.Equal(t, "2.75", f.Value("fs"))
	assert.Equal(t, "0.125", f.Value("pm"))
	assert.Equal(t, "15", f.Value("M"))
	assert.Equal(t, "-6", f.Value("i"))
	assert.Equal(t, "", f.Value("dx"))
	assert.Equal(t, "", f.Value("missing"))
}

func TestFormNotFound(t *testing.T) {
	_, err := parse(t).Form("f2")
	assert.ErrorIs(t, err, ErrFormNotFound)
}

func TestSetValue(t *testing.T) {
	f, err := parse(t).Form("f1")
	require.NoError(t, err)

	require.NoError(t, f.SetValue("dx", "4"))
	require.NoError(t, f.SetValue("pp", "1"))
	assert.Equal(t, "4", f.Value("dx"))
	assert.Equal(t, "1", f.Value("pp"))

	assert.ErrorIs(t, f.SetValue("nope", "1"), ErrElementNotFound)
}

func TestSetInnerHTMLIsUnescaped(t *testing.T) {
	doc := parse(t)

	require.NoError(t, doc.SetInnerHTML("result", "<p>result</p>"))

	got, err := doc.InnerHTML("result")
	require.NoError(t, err)
	assert.Equal(t, "<p>result</p>", got)

	var b strings.Builder
	require.NoError(t, doc.Render(&b))
	assert.Contains(t, b.String(), `<div id="result"><p>result</p></div>`)
	assert.NotContains(t, b.String(), "old")
}

func TestSetInnerHTMLEmpty(t *testing.T) {
	doc := parse(t)

	require.NoError(t, doc.SetInnerHTML("result", ""))
	got, err := doc.InnerHTML("result")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMissingElement(t *testing.T) {
	doc := parse(t)

	assert.ErrorIs(t, doc.SetInnerHTML("nope", "<p>x</p>"), ErrElementNotFound)
	_, err := doc.InnerHTML("nope")
	assert.ErrorIs(t, err, ErrElementNotFound)
}

func TestConcurrentOverwrites(t *testing.T) {
	doc := parse(t)
	markups := []string{"<p>a</p>", "<p>b</p>", "<p>c</p>", "<p>d</p>"}

	var wg sync.WaitGroup
	for _, m := range markups {
		wg.Add(1)
		go func(m string) {
			defer wg.Done()
			assert.NoError(t, doc.SetInnerHTML("result", m))
		}(m)
	}
	wg.Wait()

	got, err := doc.InnerHTML("result")
	require.NoError(t, err)
	assert.Contains(t, markups, got)
}
