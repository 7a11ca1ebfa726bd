package websocket

import (
	"net/http"

	"golang.org/x/net/websocket"
)

// Ensure that Handlers are http.Handler's
var _ http.Handler = (Handler)(func(*websocket.Conn) {})
