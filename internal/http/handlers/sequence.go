package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/deangilmoreremix/smartcrm-backend/internal/http/response"
	"github.com/deangilmoreremix/smartcrm-backend/internal/services"
	"github.com/deangilmoreremix/smartcrm-backend/internal/types"
)

type SequenceHandler struct {
	sequenceService services.SequenceService
}

func NewSequenceHandler(sequenceService services.SequenceService) *SequenceHandler {
	return &SequenceHandler{sequenceService: sequenceService}
}

func (sh *SequenceHandler) Generate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req services.GenerateSequenceInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	seq, err := sh.sequenceService.Generate(c.Request.Context(), userID, req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, seq)
}

func (sh *SequenceHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	seq, err := sh.sequenceService.Get(c.Request.Context(), userID, id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, seq)
}

func (sh *SequenceHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	sequences, err := sh.sequenceService.List(c.Request.Context(), userID, c.Query("status"), limit)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"sequences": sequences})
}

func (sh *SequenceHandler) Activate(c *gin.Context) {
	sh.transition(c, sh.sequenceService.Activate)
}

func (sh *SequenceHandler) Pause(c *gin.Context) {
	sh.transition(c, sh.sequenceService.Pause)
}

func (sh *SequenceHandler) Resume(c *gin.Context) {
	sh.transition(c, sh.sequenceService.Resume)
}

func (sh *SequenceHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := sh.sequenceService.Delete(c.Request.Context(), userID, id); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

func (sh *SequenceHandler) transition(c *gin.Context, fn func(ctx context.Context, ownerID, id uuid.UUID) (*types.Sequence, error)) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	seq, err := fn(c.Request.Context(), userID, id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, seq)
}
