package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/deangilmoreremix/smartcrm-backend/internal/http/response"
	"github.com/deangilmoreremix/smartcrm-backend/internal/repos"
	"github.com/deangilmoreremix/smartcrm-backend/internal/services"
	"github.com/deangilmoreremix/smartcrm-backend/internal/types"
)

type DealHandler struct {
	dealService services.DealService
}

func NewDealHandler(dealService services.DealService) *DealHandler {
	return &DealHandler{dealService: dealService}
}

func (dh *DealHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var deal types.Deal
	if err := c.ShouldBindJSON(&deal); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	created, err := dh.dealService.Create(c.Request.Context(), userID, &deal)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, created)
}

func (dh *DealHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	deal, err := dh.dealService.Get(c.Request.Context(), userID, id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, deal)
}

func (dh *DealHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	filter := repos.DealFilter{
		Stage:  c.Query("stage"),
		Limit:  limit,
		Offset: offset,
	}
	if raw := c.Query("contact_id"); raw != "" {
		contactID, err := uuid.Parse(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_contact_id", err)
			return
		}
		filter.ContactID = contactID
	}
	deals, total, err := dh.dealService.List(c.Request.Context(), userID, filter)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"deals": deals, "total": total})
}

func (dh *DealHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var upd services.DealUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	deal, err := dh.dealService.Update(c.Request.Context(), userID, id, upd)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, deal)
}

func (dh *DealHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := dh.dealService.Delete(c.Request.Context(), userID, id); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

func (dh *DealHandler) ChangeStage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		Stage string `json:"stage"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	deal, err := dh.dealService.ChangeStage(c.Request.Context(), userID, id, req.Stage)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, deal)
}

func (dh *DealHandler) Pipeline(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	pipeline, err := dh.dealService.Pipeline(c.Request.Context(), userID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"pipeline": pipeline})
}
