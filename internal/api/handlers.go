/**
 * @description
 * This file contains the HTTP handlers for the transfer-service's API
 * endpoints. Handlers parse incoming requests, call the orchestration service,
 * and translate its typed errors into HTTP responses. They act as the bridge
 * between the web layer and the business logic layer.
 *
 * @dependencies
 * - encoding/json, log, net/http: Standard Go libraries.
 * - internal/app, internal/domain, internal/pending, internal/store: Service logic, models, errors.
 * - pkg/intentclient: Free-text extraction fallback for raw messages.
 */

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/swiftsend/transfer-service/internal/app"
	"github.com/swiftsend/transfer-service/internal/banks"
	"github.com/swiftsend/transfer-service/internal/domain"
	"github.com/swiftsend/transfer-service/internal/pending"
	"github.com/swiftsend/transfer-service/internal/store"
	"github.com/swiftsend/transfer-service/pkg/intentclient"
)

// TransferHandlers holds the application service that handlers will use.
type TransferHandlers struct {
	service      *app.Service
	intentClient *intentclient.Client
}

// NewTransferHandlers creates a new instance of TransferHandlers.
func NewTransferHandlers(service *app.Service, intentClient *intentclient.Client) *TransferHandlers {
	return &TransferHandlers{service: service, intentClient: intentClient}
}

type initiateTransferRequest struct {
	// Text carries the customer's raw message; it is run through the intent
	// extractor when the structured fields below are absent.
	Text          string  `json:"text,omitempty"`
	Amount        int64   `json:"amount,omitempty"` // in kobo
	RecipientName string  `json:"recipient_name,omitempty"`
	AccountNumber string  `json:"account_number,omitempty"`
	Confidence    float64 `json:"confidence,omitempty"`
}

type selectionRequest struct {
	Reply string `json:"reply"`
}

type pinRequest struct {
	PIN string `json:"pin"`
}

type internalTransferRequest struct {
	CustomerID      uuid.UUID `json:"customer_id"`
	SourceAccountID uuid.UUID `json:"source_account_id"`
	TargetAccountID uuid.UUID `json:"target_account_id"`
	Amount          int64     `json:"amount"` // in kobo
}

// InitiateTransferHandler starts a transfer flow for the authenticated customer.
func (h *TransferHandlers) InitiateTransferHandler(w http.ResponseWriter, r *http.Request) {
	customerID, ok := GetCustomerID(r.Context())
	if !ok {
		http.Error(w, "Could not get customer ID from context", http.StatusInternalServerError)
		return
	}

	var req initiateTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	parsed := domain.ParsedRequest{
		Amount:        req.Amount,
		RecipientName: strings.TrimSpace(req.RecipientName),
		AccountNumber: strings.TrimSpace(req.AccountNumber),
		Confidence:    req.Confidence,
	}

	if parsed.Amount == 0 && parsed.RecipientName == "" && parsed.AccountNumber == "" && req.Text != "" {
		if h.intentClient != nil {
			extracted, err := h.intentClient.ExtractTransferRequest(r.Context(), req.Text)
			if err != nil {
				log.Printf("level=error component=api msg=\"intent extraction failed\" customer_id=%s err=%v", customerID, err)
				http.Error(w, "Could not understand the request, please try again", http.StatusBadGateway)
				return
			}
			parsed = *extracted
		} else {
			parsed = app.ParseTransferText(req.Text)
		}
	}

	resp, err := h.service.InitiateTransfer(r.Context(), customerID, parsed)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// SubmitSelectionHandler applies a follow-up reply to a pending transaction.
func (h *TransferHandlers) SubmitSelectionHandler(w http.ResponseWriter, r *http.Request) {
	customerID, ok := GetCustomerID(r.Context())
	if !ok {
		http.Error(w, "Could not get customer ID from context", http.StatusInternalServerError)
		return
	}
	pendingID := chi.URLParam(r, "id")

	var req selectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Reply) == "" {
		http.Error(w, "Reply must not be empty", http.StatusBadRequest)
		return
	}

	resp, err := h.service.SubmitSelection(r.Context(), pendingID, customerID, req.Reply)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// ConfirmPINHandler confirms a pending transfer with the customer's transaction PIN.
func (h *TransferHandlers) ConfirmPINHandler(w http.ResponseWriter, r *http.Request) {
	customerID, ok := GetCustomerID(r.Context())
	if !ok {
		http.Error(w, "Could not get customer ID from context", http.StatusInternalServerError)
		return
	}
	pendingID := chi.URLParam(r, "id")

	var req pinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.PIN) == "" {
		http.Error(w, "PIN must not be empty", http.StatusBadRequest)
		return
	}

	resp, err := h.service.ConfirmPIN(r.Context(), pendingID, customerID, req.PIN)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// ListTransfersHandler returns the customer's transfer history.
func (h *TransferHandlers) ListTransfersHandler(w http.ResponseWriter, r *http.Request) {
	customerID, ok := GetCustomerID(r.Context())
	if !ok {
		http.Error(w, "Could not get customer ID from context", http.StatusInternalServerError)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	entries, err := h.service.ListTransfers(r.Context(), customerID, limit, offset)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	if entries == nil {
		entries = []domain.LedgerEntry{}
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"transfers": entries})
}

// InternalTransferHandler moves money between two accounts of one customer.
// It sits behind the internal API key, for service-to-service use.
func (h *TransferHandlers) InternalTransferHandler(w http.ResponseWriter, r *http.Request) {
	var req internalTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if req.CustomerID == uuid.Nil || req.SourceAccountID == uuid.Nil || req.TargetAccountID == uuid.Nil {
		http.Error(w, "customer_id, source_account_id and target_account_id are required", http.StatusBadRequest)
		return
	}

	debit, err := h.service.InternalTransfer(r.Context(), req.CustomerID, req.SourceAccountID, req.TargetAccountID, req.Amount)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, debit)
}

// ListBanksHandler returns the static bank catalog.
func (h *TransferHandlers) ListBanksHandler(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"banks": banks.Catalog})
}

// handleServiceError maps the service layer's typed errors onto HTTP statuses.
func (h *TransferHandlers) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pending.ErrNotFound):
		h.writeError(w, http.StatusNotFound, "Pending transaction not found or expired. Please start again.")
	case errors.Is(err, app.ErrUnauthorized):
		h.writeError(w, http.StatusUnauthorized, "This pending transaction belongs to another customer.")
	case errors.Is(err, store.ErrInsufficientFunds):
		h.writeError(w, http.StatusPaymentRequired, "Insufficient funds. Please top up and try again.")
	case errors.Is(err, store.ErrPINNotSet):
		h.writeError(w, http.StatusPreconditionFailed, "Transaction PIN is not set. Please create your PIN first.")
	case errors.Is(err, app.ErrPINLocked):
		h.writeError(w, http.StatusLocked, "Too many incorrect PIN attempts. Please wait and try again.")
	case errors.Is(err, app.ErrPINAttemptsExhausted):
		h.writeError(w, http.StatusUnauthorized, "Too many incorrect PIN attempts. The transfer was cancelled, please start again.")
	case errors.Is(err, app.ErrNotAwaitingPIN):
		h.writeError(w, http.StatusConflict, "This transfer is not awaiting PIN confirmation.")
	case errors.Is(err, app.ErrInvalidAmount), errors.Is(err, app.ErrNoActiveAccount), errors.Is(err, store.ErrSameAccount):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrCustomerNotFound), errors.Is(err, store.ErrAccountNotFound), errors.Is(err, store.ErrBeneficiaryNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	default:
		log.Printf("level=error component=api msg=\"unhandled service error\" err=%v", err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// writeJSON is a helper for writing JSON responses.
func (h *TransferHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError is a helper for writing JSON error responses.
func (h *TransferHandlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
