package integration

import (
	"context"
	"fmt"
	"sync"
	"time"

	"qr-wallet-service/internal/core/domain"
	"qr-wallet-service/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// --- In-Memory User Repo ---

type inMemoryUserRepo struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*domain.User
}

func newInMemoryUserRepo() *inMemoryUserRepo {
	return &inMemoryUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *inMemoryUserRepo) Create(ctx context.Context, tx pgx.Tx, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return fmt.Errorf("insert user: %w", domain.ErrDuplicateEmail)
		}
	}
	r.users[u.ID] = u
	return nil
}

func (r *inMemoryUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return u, nil
}

func (r *inMemoryUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

// --- In-Memory Wallet Repo ---

type inMemoryWalletRepo struct {
	mu      sync.Mutex
	wallets map[uuid.UUID]*domain.Wallet // keyed by admin id
}

func newInMemoryWalletRepo() *inMemoryWalletRepo {
	return &inMemoryWalletRepo{wallets: make(map[uuid.UUID]*domain.Wallet)}
}

func (r *inMemoryWalletRepo) Create(ctx context.Context, tx pgx.Tx, w *domain.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.wallets[w.AdminID] = w
	return nil
}

func (r *inMemoryWalletRepo) GetByAdminID(ctx context.Context, adminID uuid.UUID) (*domain.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[adminID]
	if !ok {
		return nil, nil
	}
	copied := *w
	return &copied, nil
}

// AdjustBalance mirrors the conditional UPDATE: the guard check and the
// mutation happen under one lock, so concurrent debits can never drive the
// balance negative.
func (r *inMemoryWalletRepo) AdjustBalance(ctx context.Context, tx pgx.Tx, adminID uuid.UUID, delta int64) (int64, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[adminID]
	if !ok {
		return 0, false, nil
	}
	if w.Balance+delta < 0 {
		return 0, false, nil
	}
	w.Balance += delta
	w.UpdatedAt = time.Now()
	return w.Balance, true, nil
}

// --- In-Memory QR Repo ---

type inMemoryQRRepo struct {
	mu    sync.Mutex
	codes map[uuid.UUID]*domain.QRCode
}

func newInMemoryQRRepo() *inMemoryQRRepo {
	return &inMemoryQRRepo{codes: make(map[uuid.UUID]*domain.QRCode)}
}

func (r *inMemoryQRRepo) Create(ctx context.Context, tx pgx.Tx, qr *domain.QRCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codes[qr.ID] = qr
	return nil
}

func (r *inMemoryQRRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.QRCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	qr, ok := r.codes[id]
	if !ok {
		return nil, nil
	}
	copied := *qr
	return &copied, nil
}

// MarkInactive mirrors the conditional UPDATE single-use gate: only the
// first caller observes the flip.
func (r *inMemoryQRRepo) MarkInactive(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	qr, ok := r.codes[id]
	if !ok || !qr.IsActive {
		return false, nil
	}
	qr.IsActive = false
	return true, nil
}

func (r *inMemoryQRRepo) ListByAdmin(ctx context.Context, adminID uuid.UUID) ([]domain.QRCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.QRCode
	for _, qr := range r.codes {
		if qr.AdminID == adminID {
			result = append(result, *qr)
		}
	}
	return result, nil
}

func (r *inMemoryQRRepo) ListActiveByAdmin(ctx context.Context, adminID uuid.UUID) ([]domain.QRCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.QRCode
	for _, qr := range r.codes {
		if qr.AdminID == adminID && qr.IsActive {
			result = append(result, *qr)
		}
	}
	return result, nil
}

func (r *inMemoryQRRepo) GetStats(ctx context.Context, adminID uuid.UUID) (*ports.QRStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := &ports.QRStats{}
	for _, qr := range r.codes {
		if qr.AdminID != adminID {
			continue
		}
		stats.Total++
		stats.TotalAmountIssued += qr.Amount
		if qr.IsActive {
			stats.Active++
		} else {
			stats.Inactive++
		}
	}
	return stats, nil
}

// --- In-Memory Customer Transaction Repo ---

type inMemoryCustomerTxRepo struct {
	mu     sync.Mutex
	txns   map[uuid.UUID]*domain.CustomerTransaction
	qrRepo *inMemoryQRRepo
}

func newInMemoryCustomerTxRepo(qrRepo *inMemoryQRRepo) *inMemoryCustomerTxRepo {
	return &inMemoryCustomerTxRepo{
		txns:   make(map[uuid.UUID]*domain.CustomerTransaction),
		qrRepo: qrRepo,
	}
}

func (r *inMemoryCustomerTxRepo) Create(ctx context.Context, tx pgx.Tx, ct *domain.CustomerTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.txns[ct.ID] = ct
	return nil
}

func (r *inMemoryCustomerTxRepo) ListByAdmin(ctx context.Context, adminID uuid.UUID) ([]domain.CustomerTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.CustomerTransaction
	for _, ct := range r.txns {
		qr, err := r.qrRepo.GetByID(ctx, ct.QRID)
		if err != nil {
			return nil, err
		}
		if qr != nil && qr.AdminID == adminID {
			result = append(result, *ct)
		}
	}
	return result, nil
}

// --- In-Memory Payment Order Repo ---

type inMemoryPaymentOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*domain.PaymentOrder // keyed by gateway order id
}

func newInMemoryPaymentOrderRepo() *inMemoryPaymentOrderRepo {
	return &inMemoryPaymentOrderRepo{orders: make(map[string]*domain.PaymentOrder)}
}

func (r *inMemoryPaymentOrderRepo) Create(ctx context.Context, order *domain.PaymentOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[order.OrderID]; ok {
		return fmt.Errorf("order already exists")
	}
	r.orders[order.OrderID] = order
	return nil
}

func (r *inMemoryPaymentOrderRepo) GetByOrderID(ctx context.Context, orderID string) (*domain.PaymentOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return nil, nil
	}
	copied := *o
	return &copied, nil
}

// SettleIfPending mirrors the conditional UPDATE: the status check and the
// transition happen under one lock, so only one of N concurrent settles wins.
func (r *inMemoryPaymentOrderRepo) SettleIfPending(ctx context.Context, tx pgx.Tx, orderID string, processedAt time.Time) (*domain.PaymentOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok || o.Status != domain.OrderStatusPending {
		return nil, nil
	}
	o.Status = domain.OrderStatusSuccess
	o.ProcessedAt = &processedAt
	copied := *o
	return &copied, nil
}

func (r *inMemoryPaymentOrderRepo) FailIfPending(ctx context.Context, orderID string, processedAt time.Time) (*domain.PaymentOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok || o.Status != domain.OrderStatusPending {
		return nil, nil
	}
	o.Status = domain.OrderStatusFailed
	o.ProcessedAt = &processedAt
	copied := *o
	return &copied, nil
}

func (r *inMemoryPaymentOrderRepo) ListByAdmin(ctx context.Context, adminID uuid.UUID) ([]domain.PaymentOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.PaymentOrder
	for _, o := range r.orders {
		if o.AdminID == adminID {
			result = append(result, *o)
		}
	}
	return result, nil
}

func (r *inMemoryPaymentOrderRepo) GetStats(ctx context.Context, adminID uuid.UUID) (*ports.PaymentOrderStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := &ports.PaymentOrderStats{}
	for _, o := range r.orders {
		if o.AdminID != adminID {
			continue
		}
		stats.Total++
		switch o.Status {
		case domain.OrderStatusSuccess:
			stats.Successful++
			stats.TotalAmountAdded += o.Amount
		case domain.OrderStatusFailed:
			stats.Failed++
		case domain.OrderStatusPending:
			stats.Pending++
		}
	}
	return stats, nil
}

// --- In-Memory Transactor (no-op tx) ---

type inMemoryTransactor struct{}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return &noopTx{}, nil
}

// noopTx is a no-op pgx.Tx implementation for in-memory testing.
type noopTx struct{}

func (t *noopTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *noopTx) Commit(ctx context.Context) error          { return nil }
func (t *noopTx) Rollback(ctx context.Context) error        { return nil }
func (t *noopTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *noopTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *noopTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *noopTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *noopTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *noopTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *noopTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *noopTx) Conn() *pgx.Conn { return nil }
