// Package handler exposes the agreement tracker as a JSON HTTP API.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"mbatrack/internal/mba/models"
	"mbatrack/internal/mba/service"
	id "mbatrack/pkg/domain"
	dErrors "mbatrack/pkg/domain-errors"
	"mbatrack/pkg/platform/httputil"
)

type Handler struct {
	svc    *service.Service
	logger *slog.Logger
}

func New(svc *service.Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Register mounts every route on the router. Mutation guarding (admin token)
// is middleware applied by the caller.
func (h *Handler) Register(r chi.Router) {
	r.Route("/clients", func(r chi.Router) {
		r.Get("/", h.listClients)
		r.Post("/", h.createClient)
		r.Get("/{id}", h.getClient)
		r.Put("/{id}", h.updateClient)
		r.Delete("/{id}", h.deleteClient)
	})

	r.Route("/mbas", func(r chi.Router) {
		r.Get("/", h.listMBAs)
		r.Post("/", h.createMBA)
		r.Get("/{id}", h.getMBA)
		r.Delete("/{id}", h.deleteMBA)
		r.Put("/{id}/status", h.updateMBAStatus)
		r.Put("/{id}/payment", h.updateClientPayment)
		r.Put("/{id}/spend", h.upsertSpend)
	})

	r.Route("/invoices", func(r chi.Router) {
		r.Get("/", h.listInvoices)
		r.Post("/", h.createInvoice)
		r.Get("/{id}", h.getInvoice)
		r.Delete("/{id}", h.deleteInvoice)
		r.Post("/{id}/paid", h.setInvoicePaid)
	})

	r.Get("/audit", h.auditTrail)
	r.Get("/dashboard", h.dashboard)
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return dErrors.New(dErrors.CodeBadRequest, "invalid JSON body")
	}
	return nil
}

func (h *Handler) createClient(w http.ResponseWriter, r *http.Request) {
	var req createClientRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	client, err := h.svc.CreateClient(r.Context(), req.Name)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, client)
}

func (h *Handler) listClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.svc.ListClients(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"clients": clients})
}

func (h *Handler) getClient(w http.ResponseWriter, r *http.Request) {
	clientID, err := id.ParseClientID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	client, err := h.svc.GetClient(r.Context(), clientID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, client)
}

func (h *Handler) updateClient(w http.ResponseWriter, r *http.Request) {
	clientID, err := id.ParseClientID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req updateClientRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	client, err := h.svc.RenameClient(r.Context(), clientID, req.Name)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, client)
}

func (h *Handler) deleteClient(w http.ResponseWriter, r *http.Request) {
	clientID, err := id.ParseClientID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.svc.DeleteClient(r.Context(), clientID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) createMBA(w http.ResponseWriter, r *http.Request) {
	var req createMBARequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	clientID, err := id.ParseClientID(req.ClientID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	startDate, err := parseDate(req.StartDate, "start_date")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	endDate, err := parseDate(req.EndDate, "end_date")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	mba, err := h.svc.CreateMBA(r.Context(), service.CreateMBAParams{
		ClientID:  clientID,
		Name:      req.Name,
		Budget:    req.Budget,
		Currency:  req.Currency,
		StartDate: startDate,
		EndDate:   endDate,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, mba)
}

func (h *Handler) listMBAs(w http.ResponseWriter, r *http.Request) {
	var clientID *id.ClientID
	if raw := r.URL.Query().Get("client_id"); raw != "" {
		parsed, err := id.ParseClientID(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		clientID = &parsed
	}

	mbas, err := h.svc.ListMBAs(r.Context(), clientID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"mbas": mbas})
}

func (h *Handler) getMBA(w http.ResponseWriter, r *http.Request) {
	mbaID, err := id.ParseMBAID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	details, err := h.svc.GetMBA(r.Context(), mbaID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, details)
}

func (h *Handler) deleteMBA(w http.ResponseWriter, r *http.Request) {
	mbaID, err := id.ParseMBAID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.svc.DeleteMBA(r.Context(), mbaID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) updateMBAStatus(w http.ResponseWriter, r *http.Request) {
	mbaID, err := id.ParseMBAID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	mba, err := h.svc.UpdateMBAStatus(r.Context(), mbaID, models.Status(req.Status))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, mba)
}

func (h *Handler) updateClientPayment(w http.ResponseWriter, r *http.Request) {
	mbaID, err := id.ParseMBAID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req updatePaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	paidDate, err := optionalDate(req.PaidDate, "paid_date")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	mba, err := h.svc.UpdateClientPayment(r.Context(), mbaID, req.Paid, paidDate, req.PaidAmount)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, mba)
}

func (h *Handler) upsertSpend(w http.ResponseWriter, r *http.Request) {
	mbaID, err := id.ParseMBAID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req upsertSpendRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}
	period, err := parsePeriod(req.Period)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	entry, err := h.svc.UpsertSpend(r.Context(), service.UpsertSpendParams{
		MBAID:    mbaID,
		Platform: models.Platform(req.Platform),
		Period:   period,
		Amount:   req.Amount,
		Notes:    req.Notes,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, entry)
}

func (h *Handler) createInvoice(w http.ResponseWriter, r *http.Request) {
	var req createInvoiceRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	invoiceDate, err := parseDate(req.InvoiceDate, "invoice_date")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	allocations := make([]service.AllocationParams, 0, len(req.Allocations))
	for _, alloc := range req.Allocations {
		mbaID, err := id.ParseMBAID(alloc.MBAID)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		allocations = append(allocations, service.AllocationParams{
			MBAID:  mbaID,
			Amount: alloc.Amount,
		})
	}

	details, err := h.svc.CreateInvoice(r.Context(), service.CreateInvoiceParams{
		Type:        models.InvoiceType(req.Type),
		Vendor:      req.Vendor,
		Number:      req.Number,
		InvoiceDate: invoiceDate,
		TotalAmount: req.TotalAmount,
		Currency:    req.Currency,
		Notes:       req.Notes,
		Allocations: allocations,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, details)
}

func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.svc.ListInvoices(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"invoices": invoices})
}

func (h *Handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	invoiceID, err := id.ParseInvoiceID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	details, err := h.svc.GetInvoice(r.Context(), invoiceID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, details)
}

func (h *Handler) deleteInvoice(w http.ResponseWriter, r *http.Request) {
	invoiceID, err := id.ParseInvoiceID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.svc.DeleteInvoice(r.Context(), invoiceID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setInvoicePaid(w http.ResponseWriter, r *http.Request) {
	invoiceID, err := id.ParseInvoiceID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req setPaidRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}
	paidDate, err := optionalDate(req.PaidDate, "paid_date")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	invoice, err := h.svc.SetInvoicePaid(r.Context(), invoiceID, req.Paid, paidDate)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, invoice)
}

func (h *Handler) auditTrail(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.AuditTrail(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"records": records})
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Dashboard(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

func optionalDate(value *string, field string) (*time.Time, error) {
	if value == nil {
		return nil, nil
	}
	t, err := parseDate(*value, field)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
