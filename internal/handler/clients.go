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

type ClientsHandler struct{ svc service.ClientService }

func NewClientsHandler(svc service.ClientService) *ClientsHandler {
	return &ClientsHandler{svc: svc}
}

// Create godoc
// @Summary      Create a client
// @Description  Creates a client and assigns its CLI reference.
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateClientRequest true "Client details"
// @Success      201  {object} dto.ClientResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/clients [post]
func (h *ClientsHandler) Create(c *gin.Context) {
	var req dto.CreateClientRequest
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

func (h *ClientsHandler) Get(c *gin.Context) {
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

func (h *ClientsHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req dto.UpdateClientRequest
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

// Delete godoc
// @Summary      Delete a client
// @Description  Fails with 409 when the client has invoices.
// @Tags         clients
// @Security     BearerAuth
// @Param        id path string true "Client UUID"
// @Success      204
// @Failure      409 {object} apierror.APIError
// @Router       /v1/clients/{id} [delete]
func (h *ClientsHandler) Delete(c *gin.Context) {
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

func (h *ClientsHandler) List(c *gin.Context) {
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
