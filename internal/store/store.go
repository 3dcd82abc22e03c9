// Package store is the persistence layer behind the ledger engine. It holds
// six collections (users, accounts, transactions, ledger entries,
// notifications, bills) keyed by their id field. The Store interface is
// injected into services so tests can substitute doubles; it provides plain
// append/read/update primitives and no locking beyond the invariants the
// executor enforces itself.
package store

import (
	"context"

	"github.com/neopaysim/backend/internal/models"
)

type Store interface {
	AddUser(ctx context.Context, u *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByMobile(ctx context.Context, mobile string) (*models.User, error)

	AddAccount(ctx context.Context, a *models.VirtualAccount) error
	GetAccountByID(ctx context.Context, id string) (*models.VirtualAccount, error)
	GetAccountsByUser(ctx context.Context, userID string) ([]models.VirtualAccount, error)

	AddTransaction(ctx context.Context, tx *models.Transaction) error
	GetTransactionByID(ctx context.Context, id string) (*models.Transaction, error)
	GetTransactionsByAccount(ctx context.Context, accountID string) ([]models.Transaction, error)
	// UpdateTransactionStatus moves an INITIATED transaction to a terminal
	// status. Attempting to move a transaction that is already terminal
	// fails with ErrTransactionFinal.
	UpdateTransactionStatus(ctx context.Context, id string, status models.TransactionStatus) error

	// AppendLedgerEntry writes an entry exactly once. There is deliberately
	// no update or delete primitive for the ledger collection.
	AppendLedgerEntry(ctx context.Context, e *models.LedgerEntry) error
	GetLedgerEntries(ctx context.Context, accountID string) ([]models.LedgerEntry, error)

	AddNotification(ctx context.Context, n *models.Notification) error
	GetNotifications(ctx context.Context, userID string) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error

	AddBill(ctx context.Context, b *models.Bill) error
	GetBillByID(ctx context.Context, id string) (*models.Bill, error)
	GetBillsByUser(ctx context.Context, userID string) ([]models.Bill, error)
	UpdateBillStatus(ctx context.Context, id string, status models.BillStatus) error
}
