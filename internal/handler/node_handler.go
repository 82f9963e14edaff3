package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"simlab-dashboard/internal/model"
	"simlab-dashboard/internal/session"
	"simlab-dashboard/pkg/utils"
)

// NodeQuerier runs one metrics query per call.
type NodeQuerier interface {
	Nodes() []string
	QueryNode(ctx context.Context, node string, carrier *session.Carrier) (*model.NodeMetrics, error)
}

type NodeHandler struct {
	nodes    NodeQuerier
	sessions *Sessions
}

func NewNodeHandler(nodes NodeQuerier, sessions *Sessions) *NodeHandler {
	return &NodeHandler{
		nodes:    nodes,
		sessions: sessions,
	}
}

func (h *NodeHandler) ListNodes(c *gin.Context) {
	c.JSON(http.StatusOK, model.NodeListResponse{Nodes: h.nodes.Nodes()})
}

func (h *NodeHandler) Metrics(c *gin.Context) {
	metrics, err := h.nodes.QueryNode(c.Request.Context(), c.Param("node"), carrierFrom(c))
	if err != nil {
		// Credentials the host no longer accepts are useless for later queries.
		if utils.IsKind(err, utils.KindAuthenticationFailed) {
			h.sessions.Drop(c)
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, metrics)
}
