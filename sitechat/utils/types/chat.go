// sitechat/utils/types/chat.go
package types

// ChatSocketRequest is one text frame sent by the browser over /chat/ws.
type ChatSocketRequest struct {
	UserQuery string `json:"user_query"`
}

// ChatSocketReply carries either the ai turn or an error.
type ChatSocketReply struct {
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`
	Error   string `json:"error,omitempty"`
}
