package model

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// NodeSelection is the WebSocket message sent when the user picks a node.
type NodeSelection struct {
	Node string `json:"node"`
}
