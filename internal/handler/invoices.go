package handler

import (
	"net/http"

	"github.com/YousofDev/Invoice-Tracker/internal/apierror"
	"github.com/YousofDev/Invoice-Tracker/internal/dto"
	"github.com/YousofDev/Invoice-Tracker/internal/middleware"
	"github.com/YousofDev/Invoice-Tracker/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type InvoicesHandler struct{ svc service.InvoiceService }

func NewInvoicesHandler(svc service.InvoiceService) *InvoicesHandler {
	return &InvoicesHandler{svc: svc}
}

// Create godoc
// @Summary      Create an invoice
// @Description  Creates an invoice with its line items. Prices are snapshotted from the catalog and the total is computed server-side.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateInvoiceRequest true "Invoice details"
// @Success      201  {object} dto.InvoiceResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/invoices [post]
func (h *InvoicesHandler) Create(c *gin.Context) {
	var req dto.CreateInvoiceRequest
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

// Update godoc
// @Summary      Update an invoice
// @Description  Replaces the invoice header and full line set atomically. Fails with 409 once payments exist.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                   true "Invoice UUID"
// @Param        body body dto.UpdateInvoiceRequest true "New invoice state"
// @Success      200  {object} dto.InvoiceResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/invoices/{id} [put]
func (h *InvoicesHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req dto.UpdateInvoiceRequest
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

func (h *InvoicesHandler) Get(c *gin.Context) {
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

// Delete godoc
// @Summary      Delete an invoice
// @Description  Removes the invoice and its lines. Fails with 409 when payments exist.
// @Tags         invoices
// @Security     BearerAuth
// @Param        id path string true "Invoice UUID"
// @Success      204
// @Failure      409 {object} apierror.APIError
// @Router       /v1/invoices/{id} [delete]
func (h *InvoicesHandler) Delete(c *gin.Context) {
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

// List godoc
// @Summary      List invoices
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        status    query string false "draft | unpaid | partially_paid | paid | all"
// @Param        client_id query string false "Filter by client UUID"
// @Param        page      query int    false "Page (default 1)"
// @Param        limit     query int    false "Rows per page (default 50)"
// @Success      200 {object} dto.InvoiceListResponse
// @Router       /v1/invoices [get]
func (h *InvoicesHandler) List(c *gin.Context) {
	var filter dto.InvoiceFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	claims := middleware.GetClaims(c)
	filter.OwnerID = claims.UserID

	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Send godoc
// @Summary      Email an invoice to its client
// @Description  Queues asynchronous PDF generation and delivery. Returns 202 once the job is enqueued.
// @Tags         invoices
// @Security     BearerAuth
// @Param        id path string true "Invoice UUID"
// @Success      202
// @Failure      400 {object} apierror.APIError
// @Router       /v1/invoices/{id}/send [post]
func (h *InvoicesHandler) Send(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.svc.Send(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}
