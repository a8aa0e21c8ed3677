package routes

import (
	"embed"
	"html/template"
	"net/http"

	"sitechat/sitechat/sessions"
	"sitechat/sitechat/utils/logging"

	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type indexView struct {
	Error string
}

type chatView struct {
	Session *sessions.Session
}

func renderIndex(w http.ResponseWriter, status int, errMsg string) {
	render(w, status, "index.html", indexView{Error: errMsg})
}

func renderChat(w http.ResponseWriter, sess *sessions.Session) {
	render(w, http.StatusOK, "chat.html", chatView{Session: sess})
}

func render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		logging.ErrorLogger.Error("template render failed", zap.String("template", name), zap.Error(err))
	}
}
