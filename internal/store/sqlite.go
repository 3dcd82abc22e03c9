package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/neopaysim/backend/internal/models"
)

// SQLiteStore implements Store on top of an embedded SQLite database.
// Timestamps are stored as unix milliseconds.
type SQLiteStore struct {
	db *sql.DB
}

func New(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func mapInsertErr(err error) error {
	var serr sqlite3.Error
	if errors.As(err, &serr) && serr.Code == sqlite3.ErrConstraint {
		return ErrDuplicateID
	}
	return err
}

func (s *SQLiteStore) AddUser(ctx context.Context, u *models.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, mobile, name, pin_hash, kyc_status, onboarded_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.Mobile, u.Name, u.PINHash, u.KYCStatus, u.OnboardedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("add user: %w", mapInsertErr(err))
	}
	return nil
}

func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.getUser(ctx, `SELECT id, mobile, name, pin_hash, kyc_status, onboarded_at
		FROM users WHERE id = $1`, id)
}

func (s *SQLiteStore) GetUserByMobile(ctx context.Context, mobile string) (*models.User, error) {
	return s.getUser(ctx, `SELECT id, mobile, name, pin_hash, kyc_status, onboarded_at
		FROM users WHERE mobile = $1`, mobile)
}

func (s *SQLiteStore) getUser(ctx context.Context, query, arg string) (*models.User, error) {
	var (
		u  models.User
		ts int64
	)
	err := s.db.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Mobile, &u.Name, &u.PINHash, &u.KYCStatus, &ts)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	u.OnboardedAt = time.UnixMilli(ts)
	return &u, nil
}

func (s *SQLiteStore) AddAccount(ctx context.Context, a *models.VirtualAccount) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, user_id, account_number, ifsc, type, label, is_frozen)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.UserID, a.AccountNumber, a.IFSC, a.Type, a.Label, a.IsFrozen)
	if err != nil {
		return fmt.Errorf("add account: %w", mapInsertErr(err))
	}
	return nil
}

func (s *SQLiteStore) GetAccountByID(ctx context.Context, id string) (*models.VirtualAccount, error) {
	var a models.VirtualAccount
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, account_number, ifsc, type, label, is_frozen
		FROM accounts WHERE id = $1`, id).
		Scan(&a.ID, &a.UserID, &a.AccountNumber, &a.IFSC, &a.Type, &a.Label, &a.IsFrozen)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return &a, nil
}

func (s *SQLiteStore) GetAccountsByUser(ctx context.Context, userID string) ([]models.VirtualAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, account_number, ifsc, type, label, is_frozen
		FROM accounts WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.VirtualAccount
	for rows.Next() {
		var a models.VirtualAccount
		if err := rows.Scan(&a.ID, &a.UserID, &a.AccountNumber, &a.IFSC, &a.Type, &a.Label, &a.IsFrozen); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (s *SQLiteStore) AddTransaction(ctx context.Context, tx *models.Transaction) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (id, sender_account_id, receiver_upi_id, receiver_account_number,
			receiver_ifsc, receiver_name, receiver_type, amount, note, status, reference_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		tx.ID, tx.SenderAccountID, tx.Receiver.UPIID, tx.Receiver.AccountNumber,
		tx.Receiver.IFSC, tx.Receiver.Name, tx.Receiver.Type, tx.Amount, tx.Note,
		tx.Status, tx.ReferenceID, tx.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("add transaction: %w", mapInsertErr(err))
	}
	return nil
}

func (s *SQLiteStore) GetTransactionByID(ctx context.Context, id string) (*models.Transaction, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, sender_account_id, receiver_upi_id, receiver_account_number,
			receiver_ifsc, receiver_name, receiver_type, amount, note, status, reference_id, created_at
		FROM transactions WHERE id = $1`, id)

	tx, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return tx, nil
}

func (s *SQLiteStore) GetTransactionsByAccount(ctx context.Context, accountID string) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sender_account_id, receiver_upi_id, receiver_account_number,
			receiver_ifsc, receiver_name, receiver_type, amount, note, status, reference_id, created_at
		FROM transactions WHERE sender_account_id = $1 ORDER BY created_at DESC`, accountID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, *tx)
	}
	return txs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var (
		tx models.Transaction
		ts int64
	)
	err := row.Scan(&tx.ID, &tx.SenderAccountID, &tx.Receiver.UPIID, &tx.Receiver.AccountNumber,
		&tx.Receiver.IFSC, &tx.Receiver.Name, &tx.Receiver.Type, &tx.Amount, &tx.Note,
		&tx.Status, &tx.ReferenceID, &ts)
	if err != nil {
		return nil, err
	}
	tx.CreatedAt = time.UnixMilli(ts)
	return &tx, nil
}

func (s *SQLiteStore) UpdateTransactionStatus(ctx context.Context, id string, status models.TransactionStatus) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE transactions SET status = $1
		WHERE id = $2 AND status = $3`,
		status, id, models.StatusInitiated)
	if err != nil {
		return fmt.Errorf("update transaction status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update transaction status: %w", err)
	}
	if affected == 0 {
		if _, err := s.GetTransactionByID(ctx, id); err != nil {
			return err
		}
		return ErrTransactionFinal
	}
	return nil
}

func (s *SQLiteStore) AppendLedgerEntry(ctx context.Context, e *models.LedgerEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ledger_entries (id, transaction_id, user_id, account_id, amount, direction,
			balance_before, balance_after, payment_ref, settlement_ref, payment_method,
			counterparty_name, counterparty_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		e.ID, e.TransactionID, e.UserID, e.AccountID, e.Amount, e.Direction,
		e.BalanceBefore, e.BalanceAfter, e.PaymentRef, e.SettlementRef, e.PaymentMethod,
		e.Counterparty.Name, e.Counterparty.ID, e.Status, e.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("append ledger entry: %w", mapInsertErr(err))
	}
	return nil
}

func (s *SQLiteStore) GetLedgerEntries(ctx context.Context, accountID string) ([]models.LedgerEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, transaction_id, user_id, account_id, amount, direction,
			balance_before, balance_after, payment_ref, settlement_ref, payment_method,
			counterparty_name, counterparty_id, status, created_at
		FROM ledger_entries WHERE account_id = $1 ORDER BY created_at ASC`, accountID)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []models.LedgerEntry
	for rows.Next() {
		var (
			e  models.LedgerEntry
			ts int64
		)
		if err := rows.Scan(&e.ID, &e.TransactionID, &e.UserID, &e.AccountID, &e.Amount, &e.Direction,
			&e.BalanceBefore, &e.BalanceAfter, &e.PaymentRef, &e.SettlementRef, &e.PaymentMethod,
			&e.Counterparty.Name, &e.Counterparty.ID, &e.Status, &ts); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		e.CreatedAt = time.UnixMilli(ts)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SQLiteStore) AddNotification(ctx context.Context, n *models.Notification) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, title, message, type, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		n.ID, n.UserID, n.Title, n.Message, n.Type, n.IsRead, n.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("add notification: %w", mapInsertErr(err))
	}
	return nil
}

func (s *SQLiteStore) GetNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, title, message, type, is_read, created_at
		FROM notifications WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var (
			n  models.Notification
			ts int64
		)
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &n.IsRead, &ts); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.CreatedAt = time.UnixMilli(ts)
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (s *SQLiteStore) MarkNotificationRead(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `UPDATE notifications SET is_read = 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if affected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (s *SQLiteStore) AddBill(ctx context.Context, b *models.Bill) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bills (id, user_id, biller_name, category, amount, due_date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		b.ID, b.UserID, b.BillerName, b.Category, b.Amount, b.DueDate.UnixMilli(), b.Status)
	if err != nil {
		return fmt.Errorf("add bill: %w", mapInsertErr(err))
	}
	return nil
}

func (s *SQLiteStore) GetBillByID(ctx context.Context, id string) (*models.Bill, error) {
	var (
		b  models.Bill
		ts int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, biller_name, category, amount, due_date, status
		FROM bills WHERE id = $1`, id).
		Scan(&b.ID, &b.UserID, &b.BillerName, &b.Category, &b.Amount, &ts, &b.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBillNotFound
		}
		return nil, fmt.Errorf("get bill: %w", err)
	}
	b.DueDate = time.UnixMilli(ts)
	return &b, nil
}

func (s *SQLiteStore) GetBillsByUser(ctx context.Context, userID string) ([]models.Bill, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, biller_name, category, amount, due_date, status
		FROM bills WHERE user_id = $1 ORDER BY due_date ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	defer rows.Close()

	var bills []models.Bill
	for rows.Next() {
		var (
			b  models.Bill
			ts int64
		)
		if err := rows.Scan(&b.ID, &b.UserID, &b.BillerName, &b.Category, &b.Amount, &ts, &b.Status); err != nil {
			return nil, fmt.Errorf("scan bill: %w", err)
		}
		b.DueDate = time.UnixMilli(ts)
		bills = append(bills, b)
	}
	return bills, rows.Err()
}

func (s *SQLiteStore) UpdateBillStatus(ctx context.Context, id string, status models.BillStatus) error {
	result, err := s.db.ExecContext(ctx, `UPDATE bills SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("update bill status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update bill status: %w", err)
	}
	if affected == 0 {
		return ErrBillNotFound
	}
	return nil
}
