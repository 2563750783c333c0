package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/harborcrest/pms/internal/domain"
	"github.com/harborcrest/pms/internal/http/middleware"
	"github.com/harborcrest/pms/internal/http/response"
	"github.com/harborcrest/pms/internal/service"
)

type BillingHandler struct {
	Billing *service.BillingService
	Guard   *middleware.Guard
}

func NewBillingHandler(billing *service.BillingService, guard *middleware.Guard) *BillingHandler {
	return &BillingHandler{Billing: billing, Guard: guard}
}

func (h *BillingHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(h.Guard.RequireAuth)

	r.Route("/payments", func(r chi.Router) {
		r.With(h.Guard.RequirePermission("payments:create")).Post("/", h.recordPayment)
		r.With(h.Guard.RequirePermission("payments:read")).Get("/summary/{bookingID}", h.summary)
		r.With(h.Guard.RequirePermission("payments:read")).Get("/booking/{bookingID}", h.listPayments)
	})

	r.Route("/invoices", func(r chi.Router) {
		r.With(h.Guard.RequirePermission("payments:create")).Post("/generate/{bookingID}", h.generateInvoice)
		r.With(h.Guard.RequirePermission("payments:read")).Get("/{uuid}", h.getInvoice)
	})

	r.Route("/ledgers", func(r chi.Router) {
		r.With(h.Guard.RequirePermission("ledgers:read")).Get("/", h.listLedgers)
		r.With(h.Guard.RequirePermission("ledgers:create")).Post("/", h.createLedger)
		r.With(h.Guard.RequirePermission("ledgers:read")).Get("/{id}", h.getLedger)
		r.With(h.Guard.RequirePermission("ledgers:update")).Post("/{id}/payments", h.recordLedgerPayment)
		r.With(h.Guard.RequirePermission("ledgers:read")).Get("/{id}/payments", h.ledgerPayments)
		r.With(h.Guard.RequirePermission("ledgers:manage")).Post("/{id}/void", h.voidLedger)
		r.With(h.Guard.RequirePermission("ledgers:manage")).Post("/{id}/reverse", h.reverseLedger)
	})
	return r
}

func (h *BillingHandler) recordPayment(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r)
	var req domain.RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	payment, err := h.Billing.RecordPayment(r.Context(), &req, &userID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, payment)
}

func (h *BillingHandler) summary(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := int64Param(r, "bookingID")
	if !ok {
		response.BadRequest(w, "invalid booking id")
		return
	}
	summary, err := h.Billing.Summary(r.Context(), bookingID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, summary)
}

func (h *BillingHandler) listPayments(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := int64Param(r, "bookingID")
	if !ok {
		response.BadRequest(w, "invalid booking id")
		return
	}
	payments, err := h.Billing.PaymentsForBooking(r.Context(), bookingID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, payments)
}

func (h *BillingHandler) generateInvoice(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := int64Param(r, "bookingID")
	if !ok {
		response.BadRequest(w, "invalid booking id")
		return
	}
	invoice, err := h.Billing.GenerateInvoice(r.Context(), bookingID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, invoice)
}

func (h *BillingHandler) getInvoice(w http.ResponseWriter, r *http.Request) {
	invoice, err := h.Billing.GetInvoice(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, invoice)
}

func (h *BillingHandler) listLedgers(w http.ResponseWriter, r *http.Request) {
	var status *domain.LedgerStatus
	if v := r.URL.Query().Get("status"); v != "" {
		st := domain.LedgerStatus(v)
		status = &st
	}
	limit, offset := 0, 0
	if v, ok := queryInt64(r, "limit"); ok {
		limit = int(v)
	}
	if v, ok := queryInt64(r, "offset"); ok {
		offset = int(v)
	}
	ledgers, err := h.Billing.ListLedgers(r.Context(), status, limit, offset)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, ledgers)
}

func (h *BillingHandler) createLedger(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateLedgerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	ledger, err := h.Billing.CreateLedger(r.Context(), &req)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, ledger)
}

func (h *BillingHandler) getLedger(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		response.BadRequest(w, "invalid id")
		return
	}
	ledger, err := h.Billing.GetLedger(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, ledger)
}

func (h *BillingHandler) recordLedgerPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		response.BadRequest(w, "invalid id")
		return
	}
	userID, _ := middleware.UserID(r)
	var req domain.LedgerPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	ledger, err := h.Billing.RecordLedgerPayment(r.Context(), id, &req, &userID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, ledger)
}

func (h *BillingHandler) ledgerPayments(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		response.BadRequest(w, "invalid id")
		return
	}
	payments, err := h.Billing.LedgerPayments(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, payments)
}

func (h *BillingHandler) voidLedger(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		response.BadRequest(w, "invalid id")
		return
	}
	userID, _ := middleware.UserID(r)
	var req struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	ledger, err := h.Billing.VoidLedger(r.Context(), id, userID, req.Reason)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, ledger)
}

func (h *BillingHandler) reverseLedger(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		response.BadRequest(w, "invalid id")
		return
	}
	userID, _ := middleware.UserID(r)
	ledger, err := h.Billing.ReverseLedger(r.Context(), id, userID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, ledger)
}
