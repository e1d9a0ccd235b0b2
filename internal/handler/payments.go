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

type PaymentsHandler struct{ svc service.PaymentService }

func NewPaymentsHandler(svc service.PaymentService) *PaymentsHandler {
	return &PaymentsHandler{svc: svc}
}

// Record godoc
// @Summary      Record a payment against an invoice
// @Description  Locks the invoice row, rejects over-payment and already-paid invoices, then updates the invoice balance and status atomically.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.RecordPaymentRequest true "Payment details"
// @Success      201  {object} dto.PaymentResponse
// @Failure      400  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/payments [post]
func (h *PaymentsHandler) Record(c *gin.Context) {
	var req dto.RecordPaymentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	ownerID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Record(c.Request.Context(), ownerID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Update godoc
// @Summary      Update a payment amount
// @Description  Re-reconciles the parent invoice balance and status under a row lock.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                   true "Payment UUID"
// @Param        body body dto.UpdatePaymentRequest true "New amount"
// @Success      200  {object} dto.PaymentResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/payments/{id} [put]
func (h *PaymentsHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req dto.UpdatePaymentRequest
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
// @Summary      Delete a payment
// @Description  Subtracts the amount from the invoice's paid total and re-derives its status.
// @Tags         payments
// @Security     BearerAuth
// @Param        id path string true "Payment UUID"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Router       /v1/payments/{id} [delete]
func (h *PaymentsHandler) Delete(c *gin.Context) {
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

func (h *PaymentsHandler) Get(c *gin.Context) {
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

func (h *PaymentsHandler) List(c *gin.Context) {
	var filter dto.PaymentFilter
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
