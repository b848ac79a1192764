package handlers

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/deangilmoreremix/smartcrm-backend/internal/http/response"
	"github.com/deangilmoreremix/smartcrm-backend/internal/platform/logger"
	"github.com/deangilmoreremix/smartcrm-backend/internal/realtime"
)

type RealtimeHandler struct {
	log *logger.Logger
	hub *realtime.SSEHub

	mu      sync.RWMutex
	clients map[uuid.UUID]*realtime.SSEClient
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub) *RealtimeHandler {
	return &RealtimeHandler{
		log:     log.With("handler", "RealtimeHandler"),
		hub:     hub,
		clients: make(map[uuid.UUID]*realtime.SSEClient),
	}
}

// Stream holds the connection open and pushes the caller's events over SSE.
// One live stream per user; a new connection replaces the old one. The auth
// middleware accepts ?token= here because EventSource cannot set headers.
func (rh *RealtimeHandler) Stream(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	rh.mu.Lock()
	if existing, found := rh.clients[userID]; found {
		delete(rh.clients, userID)
		rh.hub.CloseClient(existing)
	}
	client := rh.hub.NewSSEClient(userID)
	rh.clients[userID] = client
	rh.mu.Unlock()

	rh.hub.AddChannel(client, realtime.UserChannel(userID))

	rh.log.Debug("SSE stream opened", "user_id", userID, "clientID", client.ID)
	rh.hub.ServeHTTP(c.Writer, c.Request, client)

	// Close only if a replacement stream has not already done it.
	rh.mu.Lock()
	owned := rh.clients[userID] == client
	if owned {
		delete(rh.clients, userID)
	}
	rh.mu.Unlock()
	if owned {
		rh.hub.CloseClient(client)
	}
	rh.log.Debug("SSE stream closed", "user_id", userID, "clientID", client.ID)
}

func (rh *RealtimeHandler) Subscribe(c *gin.Context) {
	rh.changeChannel(c, rh.hub.AddChannel, "subscribed")
}

func (rh *RealtimeHandler) Unsubscribe(c *gin.Context) {
	rh.changeChannel(c, rh.hub.RemoveChannel, "unsubscribed")
}

func (rh *RealtimeHandler) changeChannel(c *gin.Context, apply func(*realtime.SSEClient, string), status string) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req struct {
		Channel string `json:"channel" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_channel", err)
		return
	}

	rh.mu.RLock()
	client, found := rh.clients[userID]
	rh.mu.RUnlock()
	if !found {
		response.RespondError(c, http.StatusConflict, "no_active_stream", errors.New("no open SSE stream for this user"))
		return
	}

	apply(client, req.Channel)
	response.RespondOK(c, gin.H{"status": status, "channel": req.Channel})
}
