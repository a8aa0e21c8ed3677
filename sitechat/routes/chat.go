package routes

import (
	"errors"
	"net/http"

	"sitechat/sitechat/controllers"
	"sitechat/sitechat/middlewares"
	"sitechat/sitechat/sessions"
	"sitechat/sitechat/utils/logging"
	"sitechat/sitechat/utils/types"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	msgNotConfigured = "session not configured"
	msgEmptyQuery    = "empty query"
)

func ChatRoutes(ctrl *controllers.ChatController) chi.Router {
	r := chi.NewRouter()
	// GET /chat : history for a configured session
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		sess, err := ctrl.Session(r.Context(), middlewares.SessionFromContext(r.Context()))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if sess == nil {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		renderChat(w, sess)
	})
	// POST /chat : ask one question
	r.Post("/", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		sessionID := middlewares.SessionFromContext(r.Context())
		sess, err := ctrl.Ask(r.Context(), sessionID, r.PostForm.Get("user_query"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if sess == nil {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		renderChat(w, sess)
	})
	// GET /chat/ws : same conversation over a websocket, one reply per question
	r.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			logging.ErrorLogger.Error("websocket accept failed", zap.Error(err))
			return
		}
		defer conn.CloseNow()

		ctx := r.Context()
		sessionID := middlewares.SessionFromContext(ctx)
		for {
			var req types.ChatSocketRequest
			if err := wsjson.Read(ctx, conn, &req); err != nil {
				status := websocket.CloseStatus(err)
				if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway {
					logging.AppLogger.Debug("websocket read ended", zap.String("session_id", sessionID), zap.Error(err))
				}
				return
			}
			sess, err := ctrl.Ask(ctx, sessionID, req.UserQuery)
			if err != nil {
				if err := wsjson.Write(ctx, conn, types.ChatSocketReply{Error: err.Error()}); err != nil {
					return
				}
				continue
			}
			if sess == nil {
				_ = wsjson.Write(ctx, conn, types.ChatSocketReply{Error: msgNotConfigured})
				conn.Close(websocket.StatusPolicyViolation, msgNotConfigured)
				return
			}
			if req.UserQuery == "" {
				if err := wsjson.Write(ctx, conn, types.ChatSocketReply{Error: msgEmptyQuery}); err != nil {
					return
				}
				continue
			}

			reply, err := lastAITurn(sess)
			if err != nil {
				_ = wsjson.Write(ctx, conn, types.ChatSocketReply{Error: err.Error()})
				conn.Close(websocket.StatusInternalError, "internal error")
				return
			}
			if err := wsjson.Write(ctx, conn, types.ChatSocketReply{Role: string(reply.Role), Content: reply.Content}); err != nil {
				return
			}
		}
	})
	return r
}

func lastAITurn(sess *sessions.Session) (sessions.Turn, error) {
	n := len(sess.ChatHistory)
	if n == 0 || sess.ChatHistory[n-1].Role != sessions.RoleAI {
		return sessions.Turn{}, errors.New("no answer recorded")
	}
	return sess.ChatHistory[n-1], nil
}
