package routes

import (
	"net/http"

	"sitechat/sitechat/controllers"
	"sitechat/sitechat/middlewares"
	"sitechat/sitechat/utils/logging"
	"sitechat/sitechat/utils/types"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func SetupRoutes(ctrl *controllers.ChatController) chi.Router {
	r := chi.NewRouter()
	// GET / : setup form
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		renderIndex(w, http.StatusOK, "")
	})
	// POST / : configure the session, then go to the chat
	r.Post("/", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			renderIndex(w, http.StatusBadRequest, err.Error())
			return
		}
		req := types.SetupRequest{
			WebsiteURL:  r.PostForm.Get("website_url"),
			APIKey:      r.PostForm.Get("api_key"),
			APIProvider: r.PostForm.Get("api_provider"),
		}
		sessionID := middlewares.SessionFromContext(r.Context())
		msg, err := ctrl.Setup(r.Context(), sessionID, req)
		if err != nil {
			logging.ErrorLogger.Error("setup failed", zap.String("session_id", sessionID), zap.Error(err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if msg != "" {
			renderIndex(w, http.StatusOK, msg)
			return
		}
		http.Redirect(w, r, "/chat", http.StatusFound)
	})
	return r
}
