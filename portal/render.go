package portal

import (
	"html/template"
	"net/http"
)

// The portal's pages are deliberately bare shells: layout and styling are
// not this codebase's concern. What matters is which page the visitor is
// allowed to see and where they get redirected.

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head><title>{{.Title}} - Partner Portal</title></head>
<body>
{{if .Toast}}<div class="toast" role="alert">{{.Toast}}</div>{{end}}
<h1>{{.Title}}</h1>
{{range .Lines}}<p>{{.}}</p>
{{end}}
{{if .FieldErrors}}<ul class="field-errors">{{range $field, $msg := .FieldErrors}}<li>{{$field}}: {{$msg}}</li>{{end}}</ul>{{end}}
</body>
</html>
`))

type pageData struct {
	Title       string
	Toast       string
	Lines       []string
	FieldErrors map[string]string
}

func (s *Server) renderPage(w http.ResponseWriter, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, data); err != nil {
		s.log.Error().Err(err).Str("page", data.Title).Msg("render failed")
	}
}

func (s *Server) renderDuplicateNotice(w http.ResponseWriter) {
	s.renderPage(w, http.StatusConflict, pageData{
		Title: "Already open in another tab",
		Lines: []string{
			"The partner portal is already open in another tab.",
			"Close this tab and continue where you started.",
		},
	})
}
