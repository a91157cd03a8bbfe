// Package demo serves the plenoptisign endpoint locally. It computes the
// refocusing and triangulation results for the posted camera parameters and
// answers with the same results table the CGI script renders.
package demo

import (
	"html/template"
	"io"
	"net/http"
	"strconv"

	"github.com/caelisco/plenoptiform/form"
	"github.com/caelisco/plenoptiform/geometry"
	"go.uber.org/zap"
)

var resultTemplate = template.Must(template.New("result").Parse(`
{{- if or .Refo .Tria -}}
<br />
<p style='font-size:12pt;'><b>Results</b></p>
<hr/>
<p>
<TABLE>
{{- if .Refo}}
<TR><TD>{{if .Tria}}<b>Refocusing</b>{{end}}</TD><TD>refocusing distance <i>d<sub style='line-height:0'>a</sub></i>: </TD><TD>{{.Distance}}</TD></TR>
<TR><TD></TD><TD>depth of field <i>DoF<sub style='line-height:0'>a</sub></i>: </TD><TD>{{.DepthOfField}}</TD></TR>
<TR><TD></TD><TD>narrow DoF border <i>d<sub style='line-height:0'>a-</sub></i>: </TD><TD>{{.NearBorder}}</TD></TR>
<TR><TD></TD><TD>far DoF border <i>d<sub style='line-height:0'>a+</sub></i>: </TD><TD>{{.FarBorder}}</TD></TR>
{{- end}}
{{- if and .Refo .Tria}}
<TR><TD></TD><TD></TD><TD></TD></TR>
{{- end}}
{{- if .Tria}}
<TR><TD>{{if .Refo}}<b>Triangulation</b>{{end}}</TD><TD>baseline <i>B<sub style='line-height:0'>G</sub></i>: </TD><TD>{{.Baseline}}</TD></TR>
<TR><TD></TD><TD>tilt angle <i>&Phi;<sub style='line-height:0'>G</sub></i>: </TD><TD>{{.TiltAngle}}</TD></TR>
<TR><TD></TD><TD>tria. distance <i>Z<sub style='line-height:0'>G</sub></i>: </TD><TD>{{.Triangulation}}</TD></TR>
{{- end}}
</TABLE>
</p>
<br />
{{- if and .Refo .Tria .Messages}}
Console output: <br />
{{- range .Messages}}
&gt; {{.}} <br />
{{- end}}
{{- end}}
{{end}}`))

var errorTemplate = template.Must(template.New("error").Parse(`<p>{{.}}</p>
`))

// result holds the formatted values of one calculation.
type result struct {
	Refo, Tria    bool
	Distance      string
	DepthOfField  string
	NearBorder    string
	FarBorder     string
	Baseline      string
	TiltAngle     string
	Triangulation string
	Messages      []string
}

// maxBody bounds the request body; a full payload is well under it.
const maxBody = 64 << 10

// Handler computes the light field geometry for a posted form.
type Handler struct {
	Logger *zap.Logger
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := h.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	payload, err := form.Decode(string(body))
	if err != nil {
		logger.Warn("bad payload", zap.Error(err))
		h.fail(w, logger, http.StatusBadRequest, err.Error())
		return
	}
	values := payload.Map()

	params, err := geometry.FromValues(values)
	if err != nil {
		logger.Warn("bad parameters", zap.Error(err))
		h.fail(w, logger, http.StatusBadRequest, err.Error())
		return
	}

	refo, err := params.Refocus()
	if err != nil {
		logger.Warn("refocusing failed", zap.Error(err))
		h.fail(w, logger, http.StatusUnprocessableEntity, "Calculation failed.")
		return
	}
	tria, err := params.Triangulate()
	if err != nil {
		logger.Warn("triangulation failed", zap.Error(err))
		h.fail(w, logger, http.StatusUnprocessableEntity, "Calculation failed.")
		return
	}

	res := result{
		Refo:          flag(values["refo"]),
		Tria:          flag(values["tria"]),
		Distance:      geometry.FormatLength(refo.Distance),
		DepthOfField:  geometry.FormatLength(refo.DepthOfField),
		NearBorder:    geometry.FormatLength(refo.NearBorder),
		FarBorder:     geometry.FormatLength(refo.FarBorder),
		Baseline:      geometry.FormatLength(tria.Baseline),
		TiltAngle:     geometry.FormatAngle(tria.TiltAngle),
		Triangulation: geometry.FormatLength(tria.Distance),
		Messages:      refo.Messages,
	}

	logger.Info("calculation",
		zap.String("remote", r.RemoteAddr),
		zap.Any("input", values),
		zap.String("distance", res.Distance),
		zap.String("dof", res.DepthOfField),
		zap.String("baseline", res.Baseline),
		zap.String("tilt", res.TiltAngle),
		zap.String("triangulation", res.Triangulation),
		zap.Strings("messages", res.Messages))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := resultTemplate.Execute(w, res); err != nil {
		logger.Error("rendering result", zap.Error(err))
	}
}

func (h *Handler) fail(w http.ResponseWriter, logger *zap.Logger, status int, msg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := errorTemplate.Execute(w, msg); err != nil {
		logger.Error("rendering error", zap.Error(err))
	}
}

// flag reports whether an output section was requested. Any nonzero number enables it.
func flag(v string) bool {
	f, err := strconv.ParseFloat(v, 64)
	return err == nil && f != 0
}
