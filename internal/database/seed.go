package database

import (
	"context"
	"log"
	"time"

	"github.com/neopaysim/backend/internal/models"
	"github.com/neopaysim/backend/internal/store"
)

const (
	DemoUserID    = "demo-armaan"
	DemoAccountID = "demo-acc-nre"
	DemoMobile    = "9727180908"
)

// Seed loads the demo user, account, opening deposit, welcome notification
// and due bills when the store is empty. The opening balance arrives as a
// regular CREDIT ledger entry so that balance derivation needs no special
// case for seed data.
func Seed(ctx context.Context, st store.Store, demoPINHash string) error {
	if _, err := st.GetUserByID(ctx, DemoUserID); err == nil {
		return nil // already seeded
	}

	now := time.Now()

	user := &models.User{
		ID:          DemoUserID,
		Mobile:      DemoMobile,
		Name:        "Armaan Thakkar",
		PINHash:     demoPINHash,
		KYCStatus:   models.KYCVerified,
		OnboardedAt: now.AddDate(0, -6, 0),
	}
	if err := st.AddUser(ctx, user); err != nil {
		return err
	}

	account := &models.VirtualAccount{
		ID:            DemoAccountID,
		UserID:        DemoUserID,
		AccountNumber: "5010042728350",
		IFSC:          "NEOP0000001",
		Type:          models.AccountSavings,
		Label:         "NRE Savings Account",
	}
	if err := st.AddAccount(ctx, account); err != nil {
		return err
	}

	deposit := &models.LedgerEntry{
		ID:            "seed-ledger-1",
		TransactionID: "INITIAL_DEPOSIT",
		UserID:        DemoUserID,
		AccountID:     DemoAccountID,
		Amount:        142728350, // 1,427,283.50 in paise
		Direction:     models.DirectionCredit,
		BalanceBefore: 0,
		BalanceAfter:  142728350,
		PaymentRef:    "SEED00000001",
		SettlementRef: "seed-settlement-1",
		PaymentMethod: models.TypeBankTransfer,
		Counterparty:  models.Counterparty{Name: "Opening Deposit"},
		Status:        models.StatusSuccess,
		CreatedAt:     now.AddDate(0, -1, 0),
	}
	if err := st.AppendLedgerEntry(ctx, deposit); err != nil {
		return err
	}

	welcome := &models.Notification{
		ID:        "notif-welcome",
		UserID:    DemoUserID,
		Title:     "Welcome to NeoPay",
		Message:   "Securely manage your finances with the NeoPay banking simulator.",
		Type:      models.NotifySuccess,
		CreatedAt: now,
	}
	if err := st.AddNotification(ctx, welcome); err != nil {
		return err
	}

	bills := []models.Bill{
		{
			ID:         "bill-1",
			UserID:     DemoUserID,
			BillerName: "Reliance Energy",
			Category:   "Electricity",
			Amount:     425000,
			DueDate:    now.AddDate(0, 0, 5),
			Status:     models.BillDue,
		},
		{
			ID:         "bill-2",
			UserID:     DemoUserID,
			BillerName: "HDFC Credit Card",
			Category:   "Credit Card",
			Amount:     1284050,
			DueDate:    now.AddDate(0, 0, 2),
			Status:     models.BillDue,
		},
	}
	for i := range bills {
		if err := st.AddBill(ctx, &bills[i]); err != nil {
			return err
		}
	}

	log.Printf("[SEED] Demo data loaded - user %s, account %s", DemoUserID, DemoAccountID)
	return nil
}
