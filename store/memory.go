package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"pbank/models"
)

// Memory is an in-process store for tests and local development. One Memory
// value backs all three store interfaces so trades and reads observe the
// same data.
type Memory struct {
	mu     sync.Mutex
	users  map[uuid.UUID]models.User
	stocks map[uuid.UUID]models.Stock
	log    []models.Transaction
	seq    int64

	userLocks map[uuid.UUID]*sync.Mutex
}

func NewMemory() *Memory {
	return &Memory{
		users:     make(map[uuid.UUID]models.User),
		stocks:    make(map[uuid.UUID]models.Stock),
		userLocks: make(map[uuid.UUID]*sync.Mutex),
	}
}

type memoryUsers struct{ m *Memory }
type memoryStocks struct{ m *Memory }
type memoryTransactions struct{ m *Memory }

func (m *Memory) Users() Users               { return memoryUsers{m} }
func (m *Memory) Stocks() Stocks             { return memoryStocks{m} }
func (m *Memory) Transactions() Transactions { return memoryTransactions{m} }

// PutStock seeds a stock, assigning an ID if absent.
func (m *Memory) PutStock(s models.Stock) models.Stock {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	m.stocks[s.ID] = s
	return s
}

func (u memoryUsers) ByUsername(ctx context.Context, username string) (*models.User, error) {
	u.m.mu.Lock()
	defer u.m.mu.Unlock()
	for _, user := range u.m.users {
		if user.Username == username {
			copied := user
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (u memoryUsers) ByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u.m.mu.Lock()
	defer u.m.mu.Unlock()
	user, ok := u.m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := user
	return &copied, nil
}

func (u memoryUsers) Create(ctx context.Context, user *models.User) error {
	u.m.mu.Lock()
	defer u.m.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	u.m.users[user.ID] = *user
	return nil
}

func (s memoryStocks) BySymbol(ctx context.Context, symbol string) (*models.Stock, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, stock := range s.m.stocks {
		if stock.Symbol == symbol {
			copied := stock
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (s memoryStocks) ByID(ctx context.Context, id uuid.UUID) (*models.Stock, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	stock, ok := s.m.stocks[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := stock
	return &copied, nil
}

// Trade takes the per-user lock, mirroring the row lock the SQL store uses.
func (t memoryTransactions) Trade(ctx context.Context, userID uuid.UUID, fn func(tx TradeTx) error) error {
	t.m.mu.Lock()
	if _, ok := t.m.users[userID]; !ok {
		t.m.mu.Unlock()
		return ErrNotFound
	}
	lock, ok := t.m.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		t.m.userLocks[userID] = lock
	}
	t.m.mu.Unlock()

	lock.Lock()
	defer lock.Unlock()

	tx := &memoryTradeTx{m: t.m, userID: userID}
	if err := fn(tx); err != nil {
		return err
	}
	t.m.mu.Lock()
	for _, txn := range tx.staged {
		t.m.seq++
		txn.Seq = t.m.seq
		t.m.log = append(t.m.log, *txn)
	}
	t.m.mu.Unlock()
	return nil
}

func (t memoryTransactions) Holding(ctx context.Context, userID, stockID uuid.UUID) (int, error) {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	return t.m.holdingLocked(userID, stockID), nil
}

func (t memoryTransactions) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Transaction, error) {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	var txs []models.Transaction
	for _, txn := range t.m.log {
		if txn.UserID == userID {
			txs = append(txs, txn)
		}
	}
	return txs, nil
}

func (m *Memory) holdingLocked(userID, stockID uuid.UUID) int {
	net := 0
	for _, txn := range m.log {
		if txn.UserID != userID || txn.StockID != stockID {
			continue
		}
		if txn.Type == models.TransactionTypeBuy {
			net += txn.Quantity
		} else {
			net -= txn.Quantity
		}
	}
	return net
}

// memoryTradeTx stages appends so a failed trade leaves the log untouched.
// Staged entries are pointers so the caller's transaction picks up the
// sequence number assigned at commit.
type memoryTradeTx struct {
	m      *Memory
	userID uuid.UUID
	staged []*models.Transaction
}

func (t *memoryTradeTx) Holding(stockID uuid.UUID) (int, error) {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	net := t.m.holdingLocked(t.userID, stockID)
	for _, txn := range t.staged {
		if txn.StockID != stockID {
			continue
		}
		if txn.Type == models.TransactionTypeBuy {
			net += txn.Quantity
		} else {
			net -= txn.Quantity
		}
	}
	return net, nil
}

func (t *memoryTradeTx) Append(txn *models.Transaction) error {
	if txn.ID == uuid.Nil {
		txn.ID = uuid.New()
	}
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = time.Now()
	}
	t.staged = append(t.staged, txn)
	return nil
}
