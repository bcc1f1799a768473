package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/wolfman30/barbershop-concierge/internal/business"
	"github.com/wolfman30/barbershop-concierge/pkg/logging"
)

//go:embed templates/index.html
var templatesFS embed.FS

var indexTemplate = template.Must(
	template.New("index.html").
		Funcs(template.FuncMap{"title": business.Title}).
		ParseFS(templatesFS, "templates/index.html"),
)

// IndexHandler renders the landing page with business info and a chat box.
type IndexHandler struct {
	profile business.Profile
	logger  *logging.Logger
}

func NewIndexHandler(profile business.Profile, logger *logging.Logger) *IndexHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &IndexHandler{profile: profile, logger: logger}
}

// ServeHTTP handles GET /.
func (h *IndexHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, h.profile); err != nil {
		h.logger.Error("failed to render index page", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
