package handler

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"simlab-dashboard/internal/model"
	"simlab-dashboard/internal/pkg/logger"
	"simlab-dashboard/pkg/utils"
)

const (
	wsWriteWait    = 10 * time.Second
	wsMaxFrameSize = 4096
)

// WSHandler serves node selections over a WebSocket. Each message triggers
// one query; the next message is read only after the reply was written.
type WSHandler struct {
	nodes    NodeQuerier
	sessions *Sessions
	logger   *logger.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(nodes NodeQuerier, sessions *Sessions, allowedOrigins []string, logger *logger.Logger) *WSHandler {
	return &WSHandler{
		nodes:    nodes,
		sessions: sessions,
		logger:   logger,
		upgrader: websocket.Upgrader{
			HandshakeTimeout: wsWriteWait,
			CheckOrigin:      originChecker(allowedOrigins),
		},
	}
}

// originChecker accepts requests without an Origin header, a wildcard
// configuration, a listed origin, or an origin matching the request host.
func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[strings.TrimRight(o, "/")] = struct{}{}
	}
	_, wildcard := set["*"]

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || wildcard {
			return true
		}
		if _, ok := set[origin]; ok {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
}

func (h *WSHandler) Serve(c *gin.Context) {
	// The session id is pinned at upgrade time; every message re-reads the
	// store so a logout elsewhere ends this socket too.
	sessionID, _ := h.sessions.SessionID(c)

	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer ws.Close()
	ws.SetReadLimit(wsMaxFrameSize)
	// Selections arrive whenever the user clicks; the server read timeout
	// must not end an idle socket.
	_ = ws.SetReadDeadline(time.Time{})

	for {
		_, msg, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Debug("websocket read", zap.Error(err))
			}
			return
		}

		var sel model.NodeSelection
		if err := json.Unmarshal(msg, &sel); err != nil {
			if !h.reply(ws, model.NodeEvent{Error: errorPtr(utils.NewValidationError("message", err))}) {
				return
			}
			continue
		}

		carrier, _ := h.sessions.Lookup(sessionID)
		metrics, err := h.nodes.QueryNode(c.Request.Context(), sel.Node, carrier)
		if err != nil {
			_, body := errorBody(err)
			if !h.reply(ws, model.NodeEvent{Node: sel.Node, Error: &body}) {
				return
			}
			if body.Redirect != "" {
				if utils.IsKind(err, utils.KindAuthenticationFailed) && sessionID != "" {
					h.sessions.Forget(sessionID)
				}
				h.closeWith(ws, "session ended")
				return
			}
			continue
		}

		if !h.reply(ws, model.NodeEvent{Node: sel.Node, Metrics: metrics}) {
			return
		}
	}
}

func (h *WSHandler) reply(ws *websocket.Conn, ev model.NodeEvent) bool {
	_ = ws.SetWriteDeadline(time.Now().Add(wsWriteWait))
	if err := ws.WriteJSON(ev); err != nil {
		h.logger.Debug("websocket write", zap.Error(err))
		return false
	}
	return true
}

func (h *WSHandler) closeWith(ws *websocket.Conn, reason string) {
	msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason)
	_ = ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(wsWriteWait))
}

func errorPtr(err error) *model.ErrorResponse {
	_, body := errorBody(err)
	return &body
}
