package store_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neopaysim/backend/internal/database"
	"github.com/neopaysim/backend/internal/models"
	"github.com/neopaysim/backend/internal/store"
)

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	db, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=on")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(context.Background(), db))
	return store.New(db)
}

func addTestUser(t *testing.T, st *store.SQLiteStore, id, mobile string) *models.User {
	t.Helper()
	u := &models.User{
		ID:          id,
		Mobile:      mobile,
		Name:        "Armaan Thakkar",
		PINHash:     "salt$hash",
		KYCStatus:   models.KYCVerified,
		OnboardedAt: time.Now(),
	}
	require.NoError(t, st.AddUser(context.Background(), u))
	return u
}

func addTestAccount(t *testing.T, st *store.SQLiteStore, id, userID, number string) *models.VirtualAccount {
	t.Helper()
	a := &models.VirtualAccount{
		ID:            id,
		UserID:        userID,
		AccountNumber: number,
		IFSC:          "NEOP0000001",
		Type:          models.AccountSavings,
		Label:         "Savings Account",
	}
	require.NoError(t, st.AddAccount(context.Background(), a))
	return a
}

func TestSQLiteStore_Users(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	u := addTestUser(t, st, "user-1", "9727180908")

	byID, err := st.GetUserByID(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, u.Mobile, byID.Mobile)
	assert.Equal(t, models.KYCVerified, byID.KYCStatus)

	byMobile, err := st.GetUserByMobile(ctx, "9727180908")
	require.NoError(t, err)
	assert.Equal(t, "user-1", byMobile.ID)

	_, err = st.GetUserByID(ctx, "nope")
	assert.ErrorIs(t, err, store.ErrUserNotFound)

	// duplicate mobile hits the unique constraint
	dup := &models.User{ID: "user-2", Mobile: "9727180908", Name: "X", PINHash: "h", KYCStatus: models.KYCPending, OnboardedAt: time.Now()}
	assert.ErrorIs(t, st.AddUser(ctx, dup), store.ErrDuplicateID)
}

func TestSQLiteStore_Accounts(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	addTestUser(t, st, "user-1", "9727180908")
	addTestAccount(t, st, "acc-1", "user-1", "5010042728350")
	addTestAccount(t, st, "acc-2", "user-1", "5010042728351")

	a, err := st.GetAccountByID(ctx, "acc-1")
	require.NoError(t, err)
	assert.Equal(t, "5010042728350", a.AccountNumber)
	assert.False(t, a.IsFrozen)

	accounts, err := st.GetAccountsByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, accounts, 2)

	_, err = st.GetAccountByID(ctx, "nope")
	assert.ErrorIs(t, err, store.ErrAccountNotFound)

	assert.ErrorIs(t, st.AddAccount(ctx, &models.VirtualAccount{
		ID: "acc-3", UserID: "user-1", AccountNumber: "5010042728350",
		IFSC: "NEOP0000001", Type: models.AccountSavings, Label: "dup",
	}), store.ErrDuplicateID)
}

func TestSQLiteStore_Transactions(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	tx := &models.Transaction{
		ID:              "tx-1",
		SenderAccountID: "acc-1",
		Receiver: models.ReceiverDetails{
			UPIID: "shop@okhdfcbank",
			Name:  "HDFC Cafe",
			Type:  models.TypeUPI,
		},
		Amount:      15000,
		Note:        "coffee",
		Status:      models.StatusInitiated,
		ReferenceID: "REF000000001",
		CreatedAt:   time.Now(),
	}
	require.NoError(t, st.AddTransaction(ctx, tx))

	got, err := st.GetTransactionByID(ctx, "tx-1")
	require.NoError(t, err)
	assert.Equal(t, "shop@okhdfcbank", got.Receiver.UPIID)
	assert.Equal(t, int64(15000), got.Amount)
	assert.Equal(t, models.StatusInitiated, got.Status)

	_, err = st.GetTransactionByID(ctx, "nope")
	assert.ErrorIs(t, err, store.ErrTransactionNotFound)

	t.Run("status moves once", func(t *testing.T) {
		require.NoError(t, st.UpdateTransactionStatus(ctx, "tx-1", models.StatusSuccess))

		got, err := st.GetTransactionByID(ctx, "tx-1")
		require.NoError(t, err)
		assert.Equal(t, models.StatusSuccess, got.Status)

		// terminal transactions never change again
		err = st.UpdateTransactionStatus(ctx, "tx-1", models.StatusFailed)
		assert.ErrorIs(t, err, store.ErrTransactionFinal)

		got, err = st.GetTransactionByID(ctx, "tx-1")
		require.NoError(t, err)
		assert.Equal(t, models.StatusSuccess, got.Status)
	})

	t.Run("update of unknown transaction", func(t *testing.T) {
		err := st.UpdateTransactionStatus(ctx, "nope", models.StatusFailed)
		assert.ErrorIs(t, err, store.ErrTransactionNotFound)
	})

	t.Run("history is newest first", func(t *testing.T) {
		base := time.Now()
		for i, id := range []string{"tx-old", "tx-new"} {
			require.NoError(t, st.AddTransaction(ctx, &models.Transaction{
				ID:              id,
				SenderAccountID: "acc-hist",
				Receiver:        models.ReceiverDetails{Name: "X", Type: models.TypeUPI},
				Amount:          100,
				Status:          models.StatusSuccess,
				ReferenceID:     id,
				CreatedAt:       base.Add(time.Duration(i) * time.Minute),
			}))
		}

		txs, err := st.GetTransactionsByAccount(ctx, "acc-hist")
		require.NoError(t, err)
		require.Len(t, txs, 2)
		assert.Equal(t, "tx-new", txs[0].ID)
		assert.Equal(t, "tx-old", txs[1].ID)
	})
}

func TestSQLiteStore_LedgerEntries(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	base := time.Now()

	entry := func(id string, offset time.Duration, amount int64) *models.LedgerEntry {
		dir := models.DirectionCredit
		if amount < 0 {
			dir = models.DirectionDebit
		}
		return &models.LedgerEntry{
			ID:            id,
			TransactionID: "tx-" + id,
			UserID:        "user-1",
			AccountID:     "acc-1",
			Amount:        amount,
			Direction:     dir,
			BalanceBefore: 0,
			BalanceAfter:  amount,
			PaymentRef:    "REF123456789",
			SettlementRef: "settle-" + id,
			PaymentMethod: models.TypeUPI,
			Counterparty:  models.Counterparty{Name: "HDFC Cafe", ID: "shop@okhdfcbank"},
			Status:        models.StatusSuccess,
			CreatedAt:     base.Add(offset),
		}
	}

	require.NoError(t, st.AppendLedgerEntry(ctx, entry("e1", 0, 100000)))
	require.NoError(t, st.AppendLedgerEntry(ctx, entry("e2", time.Minute, -20000)))

	entries, err := st.GetLedgerEntries(ctx, "acc-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// oldest first so balances replay in order
	assert.Equal(t, "e1", entries[0].ID)
	assert.Equal(t, "e2", entries[1].ID)
	assert.Equal(t, models.DirectionDebit, entries[1].Direction)
	assert.Equal(t, "HDFC Cafe", entries[1].Counterparty.Name)

	// the ledger is append-only, same id cannot land twice
	assert.ErrorIs(t, st.AppendLedgerEntry(ctx, entry("e1", time.Hour, 5)), store.ErrDuplicateID)

	empty, err := st.GetLedgerEntries(ctx, "acc-empty")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSQLiteStore_Notifications(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	n := &models.Notification{
		ID:        "notif-1",
		UserID:    "user-1",
		Title:     "Payment Successful",
		Message:   "Sent ₹150.00 to HDFC Cafe",
		Type:      models.NotifySuccess,
		CreatedAt: time.Now(),
	}
	require.NoError(t, st.AddNotification(ctx, n))

	list, err := st.GetNotifications(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].IsRead)

	require.NoError(t, st.MarkNotificationRead(ctx, "notif-1"))
	list, err = st.GetNotifications(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, list[0].IsRead)

	assert.ErrorIs(t, st.MarkNotificationRead(ctx, "nope"), store.ErrNotificationNotFound)
}

func TestSQLiteStore_Bills(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.AddBill(ctx, &models.Bill{
		ID: "bill-2", UserID: "user-1", BillerName: "HDFC Credit Card",
		Category: "Credit Card", Amount: 1284050,
		DueDate: time.Now().Add(10 * 24 * time.Hour), Status: models.BillDue,
	}))
	require.NoError(t, st.AddBill(ctx, &models.Bill{
		ID: "bill-1", UserID: "user-1", BillerName: "Reliance Energy",
		Category: "Electricity", Amount: 425000,
		DueDate: time.Now().Add(3 * 24 * time.Hour), Status: models.BillDue,
	}))

	bills, err := st.GetBillsByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, bills, 2)
	// soonest due date first
	assert.Equal(t, "bill-1", bills[0].ID)

	require.NoError(t, st.UpdateBillStatus(ctx, "bill-1", models.BillPaid))
	b, err := st.GetBillByID(ctx, "bill-1")
	require.NoError(t, err)
	assert.Equal(t, models.BillPaid, b.Status)

	_, err = st.GetBillByID(ctx, "nope")
	assert.ErrorIs(t, err, store.ErrBillNotFound)
	assert.ErrorIs(t, st.UpdateBillStatus(ctx, "nope", models.BillPaid), store.ErrBillNotFound)
}

// Driver failures should surface wrapped, not swallowed. sqlmock stands in
// for a database that errors mid-flight.
func TestSQLiteStore_DriverErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	st := store.New(db)
	ctx := context.Background()

	t.Run("insert failure propagates", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO ledger_entries").
			WillReturnError(sql.ErrConnDone)

		err := st.AppendLedgerEntry(ctx, &models.LedgerEntry{ID: "e1", CreatedAt: time.Now()})
		require.Error(t, err)
		assert.ErrorIs(t, err, sql.ErrConnDone)
		assert.NotErrorIs(t, err, store.ErrDuplicateID)
	})

	t.Run("query failure propagates", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM ledger_entries").
			WillReturnError(sql.ErrConnDone)

		_, err := st.GetLedgerEntries(ctx, "acc-1")
		assert.ErrorIs(t, err, sql.ErrConnDone)
	})

	t.Run("status update failure propagates", func(t *testing.T) {
		mock.ExpectExec("UPDATE transactions SET status").
			WillReturnError(sql.ErrConnDone)

		err := st.UpdateTransactionStatus(ctx, "tx-1", models.StatusSuccess)
		assert.ErrorIs(t, err, sql.ErrConnDone)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
