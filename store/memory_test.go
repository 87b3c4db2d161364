package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"pbank/models"
)

func seedMemory(t *testing.T) (*Memory, models.User, models.Stock) {
	t.Helper()
	mem := NewMemory()
	user := models.User{Username: "admin", HashedPassword: "x"}
	if err := mem.Users().Create(context.Background(), &user); err != nil {
		t.Fatalf("Create: %v", err)
	}
	stock := mem.PutStock(models.Stock{Symbol: "TEST", Price: 42.0})
	return mem, user, stock
}

func TestMemoryLookups(t *testing.T) {
	mem, user, stock := seedMemory(t)
	ctx := context.Background()

	got, err := mem.Users().ByUsername(ctx, "admin")
	if err != nil || got.ID != user.ID {
		t.Errorf("ByUsername = %v, %v", got, err)
	}
	if _, err := mem.Users().ByUsername(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ByUsername unknown: got %v, want ErrNotFound", err)
	}

	gotStock, err := mem.Stocks().BySymbol(ctx, "TEST")
	if err != nil || gotStock.ID != stock.ID {
		t.Errorf("BySymbol = %v, %v", gotStock, err)
	}
	// Symbol match is case-sensitive.
	if _, err := mem.Stocks().BySymbol(ctx, "test"); !errors.Is(err, ErrNotFound) {
		t.Errorf("BySymbol lowercase: got %v, want ErrNotFound", err)
	}
}

func TestMemoryTradeRollback(t *testing.T) {
	mem, user, stock := seedMemory(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := mem.Transactions().Trade(ctx, user.ID, func(tx TradeTx) error {
		if err := tx.Append(&models.Transaction{
			UserID: user.ID, StockID: stock.ID, Quantity: 5, Type: models.TransactionTypeBuy,
		}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Trade: got %v, want boom", err)
	}

	txns, err := mem.Transactions().ListByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(txns) != 0 {
		t.Errorf("log has %d entries after failed trade, want 0", len(txns))
	}
}

func TestMemoryTradeUnknownUser(t *testing.T) {
	mem, _, _ := seedMemory(t)
	err := mem.Transactions().Trade(context.Background(), uuid.New(), func(tx TradeTx) error {
		t.Fatal("fn should not run for unknown user")
		return nil
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Trade unknown user: got %v, want ErrNotFound", err)
	}
}

func TestMemoryTradeTxSeesStagedAppends(t *testing.T) {
	mem, user, stock := seedMemory(t)
	ctx := context.Background()

	err := mem.Transactions().Trade(ctx, user.ID, func(tx TradeTx) error {
		if err := tx.Append(&models.Transaction{
			UserID: user.ID, StockID: stock.ID, Quantity: 5, Type: models.TransactionTypeBuy,
		}); err != nil {
			return err
		}
		held, err := tx.Holding(stock.ID)
		if err != nil {
			return err
		}
		if held != 5 {
			t.Errorf("holding inside tx = %d, want 5", held)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Trade: %v", err)
	}

	held, err := mem.Transactions().Holding(ctx, user.ID, stock.ID)
	if err != nil || held != 5 {
		t.Errorf("Holding = %d, %v, want 5", held, err)
	}
}

func TestMemoryListOrderSurvivesTimestampTies(t *testing.T) {
	mem, user, stock := seedMemory(t)
	ctx := context.Background()

	// Force identical timestamps: ordering must still follow insertion.
	stamp := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	for _, qty := range []int{1, 2, 3} {
		err := mem.Transactions().Trade(ctx, user.ID, func(tx TradeTx) error {
			return tx.Append(&models.Transaction{
				UserID: user.ID, StockID: stock.ID, Quantity: qty,
				Type: models.TransactionTypeBuy, CreatedAt: stamp,
			})
		})
		if err != nil {
			t.Fatalf("Trade: %v", err)
		}
	}

	txns, err := mem.Transactions().ListByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(txns) != 3 {
		t.Fatalf("got %d transactions, want 3", len(txns))
	}
	for i, txn := range txns {
		if txn.Quantity != i+1 {
			t.Errorf("position %d has quantity %d, want %d", i, txn.Quantity, i+1)
		}
		if i > 0 && txns[i].Seq <= txns[i-1].Seq {
			t.Errorf("seq not strictly increasing: %d then %d", txns[i-1].Seq, txns[i].Seq)
		}
	}
}

func TestMemoryListByUserScoped(t *testing.T) {
	mem, user, stock := seedMemory(t)
	ctx := context.Background()

	other := models.User{Username: "other", HashedPassword: "x"}
	if err := mem.Users().Create(ctx, &other); err != nil {
		t.Fatalf("Create: %v", err)
	}

	for _, uid := range []uuid.UUID{user.ID, other.ID, user.ID} {
		err := mem.Transactions().Trade(ctx, uid, func(tx TradeTx) error {
			return tx.Append(&models.Transaction{
				UserID: uid, StockID: stock.ID, Quantity: 1, Type: models.TransactionTypeBuy,
			})
		})
		if err != nil {
			t.Fatalf("Trade: %v", err)
		}
	}

	txns, err := mem.Transactions().ListByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(txns) != 2 {
		t.Fatalf("got %d transactions, want 2", len(txns))
	}
	for _, txn := range txns {
		if txn.UserID != user.ID {
			t.Errorf("foreign transaction in list: %v", txn.UserID)
		}
	}
}
