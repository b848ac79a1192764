package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/deangilmoreremix/smartcrm-backend/internal/http/response"
	"github.com/deangilmoreremix/smartcrm-backend/internal/repos"
	"github.com/deangilmoreremix/smartcrm-backend/internal/services"
	"github.com/deangilmoreremix/smartcrm-backend/internal/types"
)

type ContactHandler struct {
	contactService    services.ContactService
	activityService   services.ActivityService
	enrichmentService services.EnrichmentService
}

func NewContactHandler(
	contactService services.ContactService,
	activityService services.ActivityService,
	enrichmentService services.EnrichmentService,
) *ContactHandler {
	return &ContactHandler{
		contactService:    contactService,
		activityService:   activityService,
		enrichmentService: enrichmentService,
	}
}

func (ch *ContactHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var contact types.Contact
	if err := c.ShouldBindJSON(&contact); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	created, err := ch.contactService.Create(c.Request.Context(), userID, &contact)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, created)
}

func (ch *ContactHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	contact, err := ch.contactService.Get(c.Request.Context(), userID, id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, contact)
}

func (ch *ContactHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	filter := repos.ContactFilter{
		Status: c.Query("status"),
		Region: c.Query("region"),
		Search: c.Query("search"),
		Limit:  limit,
		Offset: offset,
	}
	contacts, total, err := ch.contactService.List(c.Request.Context(), userID, filter)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"contacts": contacts, "total": total})
}

func (ch *ContactHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var upd services.ContactUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	contact, err := ch.contactService.Update(c.Request.Context(), userID, id, upd)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, contact)
}

func (ch *ContactHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := ch.contactService.Delete(c.Request.Context(), userID, id); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

func (ch *ContactHandler) RecomputeScore(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	contact, breakdown, err := ch.contactService.RecomputeScore(c.Request.Context(), userID, id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"contact": contact, "breakdown": breakdown})
}

func (ch *ContactHandler) Enrich(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	result, err := ch.enrichmentService.Enrich(c.Request.Context(), userID, id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, result)
}

func (ch *ContactHandler) ListActivities(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	activities, err := ch.activityService.ListByContact(c.Request.Context(), userID, id, limit)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"activities": activities})
}
