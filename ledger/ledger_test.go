package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"pbank/models"
	"pbank/store"
)

type fixture struct {
	ledger *Ledger
	mem    *store.Memory
	userID uuid.UUID
	stock  models.Stock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := store.NewMemory()
	user := models.User{Username: "admin", HashedPassword: "x"}
	if err := mem.Users().Create(context.Background(), &user); err != nil {
		t.Fatalf("Create user: %v", err)
	}
	stock := mem.PutStock(models.Stock{Symbol: "TEST", Price: 42.0})
	return &fixture{
		ledger: New(mem.Stocks(), mem.Transactions()),
		mem:    mem,
		userID: user.ID,
		stock:  stock,
	}
}

func (f *fixture) holding(t *testing.T) int {
	t.Helper()
	held, err := f.ledger.Holding(context.Background(), f.userID, f.stock.ID)
	if err != nil {
		t.Fatalf("Holding: %v", err)
	}
	return held
}

func TestBuySellScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.ledger.Buy(ctx, f.userID, f.stock.ID, 10); err != nil {
		t.Fatalf("Buy 10: %v", err)
	}
	if got := f.holding(t); got != 10 {
		t.Fatalf("holding after buy = %d, want 10", got)
	}

	// Overselling fails and leaves the log unchanged.
	if _, err := f.ledger.Sell(ctx, f.userID, f.stock.ID, 15); !errors.Is(err, ErrInsufficientHoldings) {
		t.Fatalf("Sell 15: got %v, want ErrInsufficientHoldings", err)
	}
	if got := f.holding(t); got != 10 {
		t.Fatalf("holding after failed sell = %d, want 10", got)
	}
	txns, err := f.ledger.Transactions(ctx, f.userID)
	if err != nil {
		t.Fatalf("Transactions: %v", err)
	}
	if len(txns) != 1 {
		t.Fatalf("log has %d entries after failed sell, want 1", len(txns))
	}

	if _, err := f.ledger.Sell(ctx, f.userID, f.stock.ID, 10); err != nil {
		t.Fatalf("Sell 10: %v", err)
	}
	if got := f.holding(t); got != 0 {
		t.Fatalf("holding after sell = %d, want 0", got)
	}

	txns, err = f.ledger.Transactions(ctx, f.userID)
	if err != nil {
		t.Fatalf("Transactions: %v", err)
	}
	if len(txns) != 2 {
		t.Fatalf("log has %d entries, want 2", len(txns))
	}
	if txns[0].Type != models.TransactionTypeBuy || txns[1].Type != models.TransactionTypeSell {
		t.Errorf("transactions out of creation order: %s then %s", txns[0].Type, txns[1].Type)
	}
	if txns[0].Quantity != 10 || txns[1].Quantity != 10 {
		t.Errorf("unexpected quantities: %d, %d", txns[0].Quantity, txns[1].Quantity)
	}
}

func TestInvalidQuantity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, qty := range []int{0, -5} {
		if _, err := f.ledger.Buy(ctx, f.userID, f.stock.ID, qty); !errors.Is(err, ErrInvalidQuantity) {
			t.Errorf("Buy %d: got %v, want ErrInvalidQuantity", qty, err)
		}
		if _, err := f.ledger.Sell(ctx, f.userID, f.stock.ID, qty); !errors.Is(err, ErrInvalidQuantity) {
			t.Errorf("Sell %d: got %v, want ErrInvalidQuantity", qty, err)
		}
	}
}

func TestUnknownStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.ledger.Buy(ctx, f.userID, uuid.New(), 1); !errors.Is(err, ErrStockNotFound) {
		t.Errorf("Buy unknown stock: got %v, want ErrStockNotFound", err)
	}
	if _, err := f.ledger.Sell(ctx, f.userID, uuid.New(), 1); !errors.Is(err, ErrStockNotFound) {
		t.Errorf("Sell unknown stock: got %v, want ErrStockNotFound", err)
	}
}

func TestHoldingNeverNegative(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ops := []struct {
		typ models.TransactionType
		qty int
	}{
		{models.TransactionTypeBuy, 5},
		{models.TransactionTypeSell, 3},
		{models.TransactionTypeSell, 3}, // rejected, would go to -1
		{models.TransactionTypeBuy, 1},
		{models.TransactionTypeSell, 3},
		{models.TransactionTypeSell, 1}, // rejected, holding is 0
	}
	for i, op := range ops {
		var err error
		if op.typ == models.TransactionTypeBuy {
			_, err = f.ledger.Buy(ctx, f.userID, f.stock.ID, op.qty)
		} else {
			_, err = f.ledger.Sell(ctx, f.userID, f.stock.ID, op.qty)
		}
		if err != nil && !errors.Is(err, ErrInsufficientHoldings) {
			t.Fatalf("op %d: unexpected error %v", i, err)
		}
		if got := f.holding(t); got < 0 {
			t.Fatalf("op %d: holding went negative (%d)", i, got)
		}
	}
	if got := f.holding(t); got != 0 {
		t.Errorf("final holding = %d, want 0", got)
	}
}

func TestConcurrentSells(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.ledger.Buy(ctx, f.userID, f.stock.ID, 10); err != nil {
		t.Fatalf("Buy: %v", err)
	}

	// Each sell is valid against the pre-trade state but they are jointly
	// invalid: exactly one must succeed.
	const sellers = 2
	start := make(chan struct{})
	errs := make(chan error, sellers)
	var wg sync.WaitGroup
	for i := 0; i < sellers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.ledger.Sell(ctx, f.userID, f.stock.ID, 10)
			errs <- err
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	var succeeded, rejected int
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrInsufficientHoldings):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 || rejected != 1 {
		t.Fatalf("got %d successes and %d rejections, want exactly 1 and 1", succeeded, rejected)
	}
	if got := f.holding(t); got != 0 {
		t.Errorf("final holding = %d, want 0", got)
	}
}
