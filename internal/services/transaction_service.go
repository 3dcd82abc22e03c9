package services

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/neopaysim/backend/internal/middleware"
	"github.com/neopaysim/backend/internal/models"
	"github.com/neopaysim/backend/internal/store"
)

// TransactionService is the HTTP surface over the ledger engine. It builds
// Transaction records from caller input, hands them to the executor, and
// renders the resulting receipt or error. It never decides SUCCESS/FAILED
// itself; that is the executor's job alone.
type TransactionService struct {
	store     store.Store
	ledger    *LedgerService
	ids       IDSource
	validator *ValidationHelper
}

// TransferRequest is what a screen or CLI caller supplies to move money.
// Amount is in paise.
type TransferRequest struct {
	UPIID         string `json:"upiId,omitempty"`
	AccountNumber string `json:"accountNumber,omitempty"`
	IFSC          string `json:"ifsc,omitempty"`
	Name          string `json:"name" validate:"required,min=1"`
	Type          string `json:"type" validate:"required,oneof=UPI BANK_TRANSFER BILL_PAY RECHARGE SELF_TRANSFER"`
	Amount        int64  `json:"amount" validate:"required,gt=0"`
	Note          string `json:"note,omitempty" validate:"max=200"`
	Reference     string `json:"reference,omitempty"` // e.g. tr from a scanned QR
}

func NewTransactionService(st store.Store, ledger *LedgerService, ids IDSource) *TransactionService {
	return &TransactionService{
		store:     st,
		ledger:    ledger,
		ids:       ids,
		validator: NewValidationHelper(),
	}
}

// CreateTransaction initiates and executes a single money movement for the
// authenticated user's account.
func (ts *TransactionService) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req TransferRequest
	if err := dec.Decode(&req); err != nil {
		SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return
	}
	if err := ts.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	account, err := ts.ledger.ResolveActiveAccount(r.Context(), userID)
	if err != nil {
		writeAccountLookupError(w, err)
		return
	}

	reference := req.Reference
	if reference == "" {
		reference = ts.ids.PaymentRef()
	}

	tx := &models.Transaction{
		ID:              ts.ids.NewID(),
		SenderAccountID: account.ID,
		Receiver: models.ReceiverDetails{
			UPIID:         req.UPIID,
			AccountNumber: req.AccountNumber,
			IFSC:          req.IFSC,
			Name:          req.Name,
			Type:          models.TransactionType(req.Type),
		},
		Amount:      req.Amount,
		Note:        req.Note,
		Status:      models.StatusInitiated,
		ReferenceID: reference,
		CreatedAt:   time.Now(),
	}

	if err := ts.store.AddTransaction(r.Context(), tx); err != nil {
		log.Printf("[TRANSACTION] Failed to record transaction %s: %v", tx.ID, err)
		SendErrorResponse(w, "Failed to record transaction", http.StatusInternalServerError, nil)
		return
	}

	entry, err := ts.ledger.ExecuteTransaction(r.Context(), tx)
	if err != nil {
		ts.writeExecutionError(w, tx, err)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]any{
		"success":     true,
		"transaction": tx,
		"receipt":     entry,
	})
}

// writeAccountLookupError distinguishes a caller with no account from a
// store failure while resolving one.
func writeAccountLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrAccountNotFound) {
		SendErrorResponse(w, "Account not found", http.StatusNotFound, nil)
		return
	}
	log.Printf("[TRANSACTION] Account resolution failed: %v", err)
	SendErrorResponse(w, "Failed to resolve account", http.StatusInternalServerError, nil)
}

func (ts *TransactionService) writeExecutionError(w http.ResponseWriter, tx *models.Transaction, err error) {
	var parityErr *LedgerParityError

	switch {
	case errors.Is(err, ErrInsufficientFunds):
		SendErrorResponse(w, "Insufficient funds", http.StatusUnprocessableEntity, nil)
	case errors.Is(err, ErrAccountFrozen):
		SendErrorResponse(w, "Account is frozen", http.StatusForbidden, nil)
	case errors.Is(err, ErrInvalidAmount):
		SendErrorResponse(w, "Amount must be greater than zero", http.StatusBadRequest, nil)
	case errors.As(err, &parityErr):
		log.Printf("[TRANSACTION] Parity violation on %s: %v", tx.ID, err)
		SendErrorResponse(w, "Internal ledger error", http.StatusInternalServerError, nil)
	case errors.Is(err, store.ErrAccountNotFound):
		SendErrorResponse(w, "Account not found", http.StatusNotFound, nil)
	default:
		log.Printf("[TRANSACTION] Execution failed for %s: %v", tx.ID, err)
		SendErrorResponse(w, "Failed to process transaction", http.StatusInternalServerError, nil)
	}
}

// ListTransactions returns the caller's transactions, most recent first.
func (ts *TransactionService) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	account, err := ts.ledger.ResolveActiveAccount(r.Context(), userID)
	if err != nil {
		writeAccountLookupError(w, err)
		return
	}

	txs, err := ts.store.GetTransactionsByAccount(r.Context(), account.ID)
	if err != nil {
		log.Printf("[TRANSACTION] Failed to list transactions for %s: %v", account.ID, err)
		SendErrorResponse(w, "Failed to fetch transactions", http.StatusInternalServerError, nil)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"transactions": txs})
}

// GetTransaction returns one transaction owned by the caller.
func (ts *TransactionService) GetTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	txID := chi.URLParam(r, "txId")
	tx, err := ts.store.GetTransactionByID(r.Context(), txID)
	if err != nil {
		if errors.Is(err, store.ErrTransactionNotFound) {
			SendErrorResponse(w, "Transaction not found", http.StatusNotFound, nil)
			return
		}
		SendErrorResponse(w, "Failed to fetch transaction", http.StatusInternalServerError, nil)
		return
	}

	account, err := ts.ledger.ResolveActiveAccount(r.Context(), userID)
	if err != nil {
		writeAccountLookupError(w, err)
		return
	}
	if tx.SenderAccountID != account.ID {
		SendErrorResponse(w, "Transaction not found", http.StatusNotFound, nil)
		return
	}

	WriteJSON(w, http.StatusOK, tx)
}

// AccountBalanceEnquiry returns the derived balance of the caller's account.
func (ts *TransactionService) AccountBalanceEnquiry(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	account, err := ts.ledger.ResolveActiveAccount(r.Context(), userID)
	if err != nil {
		writeAccountLookupError(w, err)
		return
	}

	balance, err := ts.ledger.Balance(r.Context(), account.ID)
	if err != nil {
		log.Printf("[TRANSACTION] Balance enquiry failed for %s: %v", account.ID, err)
		SendErrorResponse(w, "Failed to compute balance", http.StatusInternalServerError, nil)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"accountId": account.ID,
		"balance":   balance,
		"formatted": models.FormatPaise(balance),
	})
}

// AccountStatement returns the full ledger history of the caller's account.
func (ts *TransactionService) AccountStatement(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	account, err := ts.ledger.ResolveActiveAccount(r.Context(), userID)
	if err != nil {
		writeAccountLookupError(w, err)
		return
	}

	entries, err := ts.store.GetLedgerEntries(r.Context(), account.ID)
	if err != nil {
		log.Printf("[TRANSACTION] Statement failed for %s: %v", account.ID, err)
		SendErrorResponse(w, "Failed to fetch statement", http.StatusInternalServerError, nil)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"accountId": account.ID,
		"entries":   entries,
	})
}
