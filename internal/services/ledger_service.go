package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/neopaysim/backend/internal/models"
	"github.com/neopaysim/backend/internal/store"
)

// LedgerService is the transaction execution pipeline. It is the only
// component that writes ledger entries and the only place that decides a
// transaction's terminal status; callers never mutate status directly.
type LedgerService struct {
	store store.Store
	ids   IDSource
	now   func() time.Time
}

func NewLedgerService(st store.Store, ids IDSource) *LedgerService {
	return &LedgerService{
		store: st,
		ids:   ids,
		now:   time.Now,
	}
}

// Balance derives the account balance from its full entry history: the sum
// of Amount over every SUCCESS entry. Entries in any other status are
// excluded defensively; none should exist, since entries are only written
// on success. No caching, recomputed on every call.
func (ls *LedgerService) Balance(ctx context.Context, accountID string) (int64, error) {
	entries, err := ls.store.GetLedgerEntries(ctx, accountID)
	if err != nil {
		return 0, fmt.Errorf("balance %s: %w", accountID, err)
	}

	var balance int64
	for _, e := range entries {
		if e.Status != models.StatusSuccess {
			continue
		}
		balance += e.Amount
	}
	return balance, nil
}

// ResolveActiveAccount returns the single active account of a user. The
// data model holds exactly one account per user; this lookup is named
// rather than relying on "first account found" at call sites.
func (ls *LedgerService) ResolveActiveAccount(ctx context.Context, userID string) (*models.VirtualAccount, error) {
	accounts, err := ls.store.GetAccountsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, store.ErrAccountNotFound
	}
	return &accounts[0], nil
}

// ExecuteTransaction runs the seven-step pipeline for a single
// money-movement request and returns the persisted debit entry, the
// canonical receipt object. The transaction must be INITIATED with a
// positive amount. On any rejection the transaction is marked FAILED and
// no ledger entry exists; there is no partial-write path.
//
// Only the sender's debit entry is written: the receiver is external to
// the simulation, a deliberate simplification from full double-entry
// bookkeeping.
func (ls *LedgerService) ExecuteTransaction(ctx context.Context, tx *models.Transaction) (*models.LedgerEntry, error) {
	if tx.Status != models.StatusInitiated {
		return nil, ErrTransactionNotReady
	}
	if tx.Amount <= 0 {
		ls.markFailed(ctx, tx)
		return nil, ErrInvalidAmount
	}

	account, err := ls.store.GetAccountByID(ctx, tx.SenderAccountID)
	if err != nil {
		ls.markFailed(ctx, tx)
		return nil, err
	}
	if account.IsFrozen {
		ls.markFailed(ctx, tx)
		return nil, ErrAccountFrozen
	}

	// Step 1: balance fetch
	balanceBefore, err := ls.Balance(ctx, tx.SenderAccountID)
	if err != nil {
		ls.markFailed(ctx, tx)
		return nil, err
	}

	// Step 2: sufficiency check. Not atomic with the append below, which
	// is acceptable only because the model is single-writer.
	if balanceBefore < tx.Amount {
		log.Printf("[LEDGER] Insufficient funds for transaction %s: balance=%d requested=%d",
			tx.ID, balanceBefore, tx.Amount)
		ls.markFailed(ctx, tx)
		return nil, ErrInsufficientFunds
	}

	// Step 3: fresh correlation references for the entry
	paymentRef := ls.ids.PaymentRef()
	settlementRef := ls.ids.SettlementRef()

	// Step 4: entry construction, debit side only
	entry := &models.LedgerEntry{
		ID:            ls.ids.NewID(),
		TransactionID: tx.ID,
		UserID:        account.UserID,
		AccountID:     tx.SenderAccountID,
		Amount:        -tx.Amount,
		Direction:     models.DirectionDebit,
		BalanceBefore: balanceBefore,
		BalanceAfter:  balanceBefore - tx.Amount,
		PaymentRef:    paymentRef,
		SettlementRef: settlementRef,
		PaymentMethod: tx.Receiver.Type,
		Counterparty: models.Counterparty{
			Name: tx.Receiver.Name,
			ID:   receiverID(tx.Receiver),
		},
		Status:    models.StatusSuccess,
		CreatedAt: ls.now(),
	}

	// Step 5: parity check, exact in integer paise
	if entry.BalanceAfter != entry.BalanceBefore+entry.Amount {
		ls.markFailed(ctx, tx)
		perr := &LedgerParityError{
			TransactionID: tx.ID,
			BalanceBefore: entry.BalanceBefore,
			BalanceAfter:  entry.BalanceAfter,
			Amount:        entry.Amount,
		}
		log.Printf("[LEDGER] FATAL %v", perr)
		return nil, perr
	}

	// Step 6: persist, then flip the transaction to SUCCESS
	if err := ls.store.AppendLedgerEntry(ctx, entry); err != nil {
		ls.markFailed(ctx, tx)
		return nil, fmt.Errorf("persist ledger entry: %w", err)
	}
	if err := ls.store.UpdateTransactionStatus(ctx, tx.ID, models.StatusSuccess); err != nil {
		// The entry is already on the books; the balance model is intact.
		// Surface the bookkeeping failure without inventing a FAILED mark.
		return nil, fmt.Errorf("mark transaction success: %w", err)
	}
	tx.Status = models.StatusSuccess

	// Step 7: best-effort notification, never rolls back the entry
	ls.notifySuccess(ctx, account.UserID, tx)

	log.Printf("[LEDGER] Transaction %s executed: account=%s amount=%d ref=%s",
		tx.ID, tx.SenderAccountID, entry.Amount, paymentRef)
	return entry, nil
}

func (ls *LedgerService) markFailed(ctx context.Context, tx *models.Transaction) {
	if err := ls.store.UpdateTransactionStatus(ctx, tx.ID, models.StatusFailed); err != nil {
		log.Printf("[LEDGER] Failed to mark transaction %s FAILED: %v", tx.ID, err)
		return
	}
	tx.Status = models.StatusFailed
}

func (ls *LedgerService) notifySuccess(ctx context.Context, userID string, tx *models.Transaction) {
	notification := &models.Notification{
		ID:        ls.ids.NewID(),
		UserID:    userID,
		Title:     "Payment Successful",
		Message:   fmt.Sprintf("Sent ₹%s to %s", models.FormatPaise(tx.Amount), tx.Receiver.Name),
		Type:      models.NotifySuccess,
		CreatedAt: ls.now(),
	}
	if err := ls.store.AddNotification(ctx, notification); err != nil {
		log.Printf("[LEDGER] Failed to add notification for transaction %s: %v", tx.ID, err)
	}
}

func receiverID(r models.ReceiverDetails) string {
	if r.UPIID != "" {
		return r.UPIID
	}
	return r.AccountNumber
}
