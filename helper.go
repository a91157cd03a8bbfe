package client

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/caelisco/plenoptiform/form"
	"github.com/caelisco/plenoptiform/options"
)

// createPayloadReader turns a supported payload into a reader and reports its
// size, or -1 when the size is not known up front.
func createPayloadReader(payload any, opt *options.Option) (io.Reader, int64, error) {
	switch p := payload.(type) {
	case nil:
		return nil, 0, nil
	case form.Payload:
		s := p.Encode()
		opt.LogVerbose("payload is a form payload")
		return strings.NewReader(s), int64(len(s)), nil
	case string:
		return strings.NewReader(p), int64(len(p)), nil
	case []byte:
		return bytes.NewReader(p), int64(len(p)), nil
	case io.Reader:
		return p, -1, nil
	default:
		return nil, 0, fmt.Errorf("unsupported payload type %T", payload)
	}
}
