package server

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	pageIndex     = "index.html"
	pageInterview = "interview.html"
	pageResults   = "results.html"
)

var pageTemplates = mustParsePages(pageIndex, pageInterview, pageResults)

func mustParsePages(names ...string) map[string]*template.Template {
	pages := make(map[string]*template.Template, len(names))
	for _, name := range names {
		pages[name] = template.Must(template.ParseFS(templateFS, "templates/layout.html", "templates/"+name))
	}
	return pages
}

type pageData struct {
	Title   string
	Version string
}

var pageTitles = map[string]string{
	pageIndex:     "Interview Coach",
	pageInterview: "Interview in progress",
	pageResults:   "Interview results",
}

// pageHandler renders one of the embedded pages
func (s *Server) pageHandler(name string) http.HandlerFunc {
	tmpl := pageTemplates[name]
	return func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		if err := tmpl.ExecuteTemplate(&buf, "layout", pageData{Title: pageTitles[name], Version: s.Version}); err != nil {
			s.Logger.LogError(err, "Failed to render page", "page", name)
			writeErrorResponse(w, "Internal server error", "", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = buf.WriteTo(w)
	}
}
