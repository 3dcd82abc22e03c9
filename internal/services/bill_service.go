package services

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/neopaysim/backend/internal/middleware"
	"github.com/neopaysim/backend/internal/models"
	"github.com/neopaysim/backend/internal/store"
)

// BillService lists and settles bills. Paying a bill is just another trip
// through the transaction executor with a BILL_PAY payment method.
type BillService struct {
	store  store.Store
	ledger *LedgerService
	ids    IDSource
}

func NewBillService(st store.Store, ledger *LedgerService, ids IDSource) *BillService {
	return &BillService{
		store:  st,
		ledger: ledger,
		ids:    ids,
	}
}

// ListBills returns the caller's bills ordered by due date.
func (bs *BillService) ListBills(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	bills, err := bs.store.GetBillsByUser(r.Context(), userID)
	if err != nil {
		log.Printf("[BILLS] Failed to list bills for %s: %v", userID, err)
		SendErrorResponse(w, "Failed to fetch bills", http.StatusInternalServerError, nil)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"bills": bills})
}

// PayBill settles one due bill through the ledger engine and marks it PAID
// on success.
func (bs *BillService) PayBill(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	billID := chi.URLParam(r, "billId")
	bill, err := bs.store.GetBillByID(r.Context(), billID)
	if err != nil {
		if errors.Is(err, store.ErrBillNotFound) {
			SendErrorResponse(w, "Bill not found", http.StatusNotFound, nil)
			return
		}
		SendErrorResponse(w, "Failed to fetch bill", http.StatusInternalServerError, nil)
		return
	}
	if bill.UserID != userID {
		SendErrorResponse(w, "Bill not found", http.StatusNotFound, nil)
		return
	}
	if bill.Status == models.BillPaid {
		SendErrorResponse(w, "Bill already paid", http.StatusConflict, nil)
		return
	}

	account, err := bs.ledger.ResolveActiveAccount(r.Context(), userID)
	if err != nil {
		writeAccountLookupError(w, err)
		return
	}

	tx := &models.Transaction{
		ID:              bs.ids.NewID(),
		SenderAccountID: account.ID,
		Receiver: models.ReceiverDetails{
			Name: bill.BillerName,
			Type: models.TypeBillPay,
		},
		Amount:      bill.Amount,
		Note:        bill.Category,
		Status:      models.StatusInitiated,
		ReferenceID: bs.ids.PaymentRef(),
		CreatedAt:   time.Now(),
	}
	if err := bs.store.AddTransaction(r.Context(), tx); err != nil {
		log.Printf("[BILLS] Failed to record bill payment %s: %v", tx.ID, err)
		SendErrorResponse(w, "Failed to record transaction", http.StatusInternalServerError, nil)
		return
	}

	entry, err := bs.ledger.ExecuteTransaction(r.Context(), tx)
	if err != nil {
		if errors.Is(err, ErrInsufficientFunds) {
			SendErrorResponse(w, "Insufficient funds", http.StatusUnprocessableEntity, nil)
			return
		}
		if errors.Is(err, ErrAccountFrozen) {
			SendErrorResponse(w, "Account is frozen", http.StatusForbidden, nil)
			return
		}
		log.Printf("[BILLS] Bill payment %s failed: %v", bill.ID, err)
		SendErrorResponse(w, "Failed to pay bill", http.StatusInternalServerError, nil)
		return
	}

	if err := bs.store.UpdateBillStatus(r.Context(), bill.ID, models.BillPaid); err != nil {
		// The money moved; the bill record lagging behind is a display
		// problem, not a ledger problem.
		log.Printf("[BILLS] Failed to mark bill %s paid: %v", bill.ID, err)
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"transaction": tx,
		"receipt":     entry,
	})
}
