package handler

import (
	"net/http"
	"strconv"

	"github.com/YousofDev/Invoice-Tracker/internal/dto"
	"github.com/YousofDev/Invoice-Tracker/internal/middleware"
	"github.com/YousofDev/Invoice-Tracker/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ItemsHandler struct{ svc service.ItemService }

func NewItemsHandler(svc service.ItemService) *ItemsHandler { return &ItemsHandler{svc: svc} }

// Create godoc
// @Summary      Create a catalog item
// @Tags         items
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateItemRequest true "Item details"
// @Success      201  {object} dto.ItemResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/items [post]
func (h *ItemsHandler) Create(c *gin.Context) {
	var req dto.CreateItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	ownerID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Create(c.Request.Context(), ownerID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ItemsHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Update changes the catalog price going forward; amounts already
// snapshotted on invoice lines are not touched.
func (h *ItemsHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req dto.UpdateItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ItemsHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ItemsHandler) List(c *gin.Context) {
	claims := middleware.GetClaims(c)
	ownerID, _ := uuid.Parse(claims.UserID)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	resp, err := h.svc.List(c.Request.Context(), ownerID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
