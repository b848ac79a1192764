package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/deangilmoreremix/smartcrm-backend/internal/http/response"
	"github.com/deangilmoreremix/smartcrm-backend/internal/services"
	"github.com/deangilmoreremix/smartcrm-backend/internal/types"
)

type ActivityHandler struct {
	activityService services.ActivityService
}

func NewActivityHandler(activityService services.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

func (ah *ActivityHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var activity types.Activity
	if err := c.ShouldBindJSON(&activity); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	created, err := ah.activityService.Create(c.Request.Context(), userID, &activity)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, created)
}
