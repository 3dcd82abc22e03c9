package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/neopaysim/backend/internal/models"
	"github.com/neopaysim/backend/internal/store"
)

// seqIDSource hands out a deterministic id sequence so assertions on
// references are stable.
type seqIDSource struct {
	n int
}

func (s *seqIDSource) NewID() string {
	s.n++
	return fmt.Sprintf("id-%04d", s.n)
}

func (s *seqIDSource) PaymentRef() string {
	s.n++
	return fmt.Sprintf("REF%09d", s.n)
}

func (s *seqIDSource) SettlementRef() string {
	s.n++
	return fmt.Sprintf("settle-%04d", s.n)
}

// memStore is a stateful in-memory Store for executor flow tests.
type memStore struct {
	users         map[string]*models.User
	accounts      map[string]*models.VirtualAccount
	transactions  map[string]*models.Transaction
	ledger        []models.LedgerEntry
	notifications []models.Notification
	bills         map[string]*models.Bill
}

func newMemStore() *memStore {
	return &memStore{
		users:        make(map[string]*models.User),
		accounts:     make(map[string]*models.VirtualAccount),
		transactions: make(map[string]*models.Transaction),
		bills:        make(map[string]*models.Bill),
	}
}

func (m *memStore) AddUser(_ context.Context, u *models.User) error {
	if _, ok := m.users[u.ID]; ok {
		return store.ErrDuplicateID
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) GetUserByMobile(_ context.Context, mobile string) (*models.User, error) {
	for _, u := range m.users {
		if u.Mobile == mobile {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (m *memStore) AddAccount(_ context.Context, a *models.VirtualAccount) error {
	cp := *a
	m.accounts[a.ID] = &cp
	return nil
}

func (m *memStore) GetAccountByID(_ context.Context, id string) (*models.VirtualAccount, error) {
	a, ok := m.accounts[id]
	if !ok {
		return nil, store.ErrAccountNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memStore) GetAccountsByUser(_ context.Context, userID string) ([]models.VirtualAccount, error) {
	var out []models.VirtualAccount
	for _, a := range m.accounts {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) AddTransaction(_ context.Context, tx *models.Transaction) error {
	if _, ok := m.transactions[tx.ID]; ok {
		return store.ErrDuplicateID
	}
	cp := *tx
	m.transactions[tx.ID] = &cp
	return nil
}

func (m *memStore) GetTransactionByID(_ context.Context, id string) (*models.Transaction, error) {
	tx, ok := m.transactions[id]
	if !ok {
		return nil, store.ErrTransactionNotFound
	}
	cp := *tx
	return &cp, nil
}

func (m *memStore) GetTransactionsByAccount(_ context.Context, accountID string) ([]models.Transaction, error) {
	var out []models.Transaction
	for _, tx := range m.transactions {
		if tx.SenderAccountID == accountID {
			out = append(out, *tx)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) UpdateTransactionStatus(_ context.Context, id string, status models.TransactionStatus) error {
	tx, ok := m.transactions[id]
	if !ok {
		return store.ErrTransactionNotFound
	}
	if tx.Status != models.StatusInitiated {
		return store.ErrTransactionFinal
	}
	tx.Status = status
	return nil
}

func (m *memStore) AppendLedgerEntry(_ context.Context, e *models.LedgerEntry) error {
	m.ledger = append(m.ledger, *e)
	return nil
}

func (m *memStore) GetLedgerEntries(_ context.Context, accountID string) ([]models.LedgerEntry, error) {
	var out []models.LedgerEntry
	for _, e := range m.ledger {
		if e.AccountID == accountID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memStore) AddNotification(_ context.Context, n *models.Notification) error {
	m.notifications = append(m.notifications, *n)
	return nil
}

func (m *memStore) GetNotifications(_ context.Context, userID string) ([]models.Notification, error) {
	var out []models.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *memStore) MarkNotificationRead(_ context.Context, id string) error {
	for i := range m.notifications {
		if m.notifications[i].ID == id {
			m.notifications[i].IsRead = true
			return nil
		}
	}
	return store.ErrNotificationNotFound
}

func (m *memStore) AddBill(_ context.Context, b *models.Bill) error {
	cp := *b
	m.bills[b.ID] = &cp
	return nil
}

func (m *memStore) GetBillByID(_ context.Context, id string) (*models.Bill, error) {
	b, ok := m.bills[id]
	if !ok {
		return nil, store.ErrBillNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memStore) GetBillsByUser(_ context.Context, userID string) ([]models.Bill, error) {
	var out []models.Bill
	for _, b := range m.bills {
		if b.UserID == userID {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

func (m *memStore) UpdateBillStatus(_ context.Context, id string, status models.BillStatus) error {
	b, ok := m.bills[id]
	if !ok {
		return store.ErrBillNotFound
	}
	b.Status = status
	return nil
}

// seedAccount puts a user, an account and an opening credit entry into the
// store and returns the account id.
func (m *memStore) seedAccount(balance int64, frozen bool) string {
	m.users["user-1"] = &models.User{ID: "user-1", Mobile: "9999900000", Name: "Test User"}
	m.accounts["acc-1"] = &models.VirtualAccount{
		ID:            "acc-1",
		UserID:        "user-1",
		AccountNumber: "5010000000001",
		IFSC:          "NEOP0000001",
		Type:          models.AccountSavings,
		IsFrozen:      frozen,
	}
	if balance > 0 {
		m.ledger = append(m.ledger, models.LedgerEntry{
			ID:            "seed-entry",
			TransactionID: "seed-tx",
			UserID:        "user-1",
			AccountID:     "acc-1",
			Amount:        balance,
			Direction:     models.DirectionCredit,
			BalanceBefore: 0,
			BalanceAfter:  balance,
			Status:        models.StatusSuccess,
			CreatedAt:     time.Now(),
		})
	}
	return "acc-1"
}

// MockStore is a testify mock of store.Store for error-injection tests.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) AddUser(ctx context.Context, u *models.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStore) GetUserByMobile(ctx context.Context, mobile string) (*models.User, error) {
	args := m.Called(ctx, mobile)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStore) AddAccount(ctx context.Context, a *models.VirtualAccount) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockStore) GetAccountByID(ctx context.Context, id string) (*models.VirtualAccount, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VirtualAccount), args.Error(1)
}

func (m *MockStore) GetAccountsByUser(ctx context.Context, userID string) ([]models.VirtualAccount, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.VirtualAccount), args.Error(1)
}

func (m *MockStore) AddTransaction(ctx context.Context, tx *models.Transaction) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockStore) GetTransactionByID(ctx context.Context, id string) (*models.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockStore) GetTransactionsByAccount(ctx context.Context, accountID string) ([]models.Transaction, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Transaction), args.Error(1)
}

func (m *MockStore) UpdateTransactionStatus(ctx context.Context, id string, status models.TransactionStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockStore) AppendLedgerEntry(ctx context.Context, e *models.LedgerEntry) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockStore) GetLedgerEntries(ctx context.Context, accountID string) ([]models.LedgerEntry, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.LedgerEntry), args.Error(1)
}

func (m *MockStore) AddNotification(ctx context.Context, n *models.Notification) error {
	return m.Called(ctx, n).Error(0)
}

func (m *MockStore) GetNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Notification), args.Error(1)
}

func (m *MockStore) MarkNotificationRead(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockStore) AddBill(ctx context.Context, b *models.Bill) error {
	return m.Called(ctx, b).Error(0)
}

func (m *MockStore) GetBillByID(ctx context.Context, id string) (*models.Bill, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bill), args.Error(1)
}

func (m *MockStore) GetBillsByUser(ctx context.Context, userID string) ([]models.Bill, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Bill), args.Error(1)
}

func (m *MockStore) UpdateBillStatus(ctx context.Context, id string, status models.BillStatus) error {
	return m.Called(ctx, id, status).Error(0)
}
