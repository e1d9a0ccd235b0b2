package tests

// In-memory repository stubs. Services run with a nil *gorm.DB, which makes
// runTx call its body directly, so the stubs ignore the tx argument.
//
// Reads return detached copies of the stored rows, matching what a real
// database read gives the service: holding a row loaded earlier never shows
// mutations committed by someone else afterwards. Mutating methods write
// through to the stored row.

import (
	"context"
	"strings"
	"time"

	"github.com/YousofDev/Invoice-Tracker/internal/dto"
	"github.com/YousofDev/Invoice-Tracker/internal/model"
	"github.com/YousofDev/Invoice-Tracker/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── Invoice repository stub ───────────────────────────────────────────────────

type stubInvoiceRepo struct {
	invoices map[uuid.UUID]*model.Invoice
	payments *stubPaymentRepo
	seq      int
}

func newStubInvoiceRepo(payments *stubPaymentRepo) *stubInvoiceRepo {
	return &stubInvoiceRepo{
		invoices: make(map[uuid.UUID]*model.Invoice),
		payments: payments,
	}
}

func (r *stubInvoiceRepo) DB() *gorm.DB { return nil }

func (r *stubInvoiceRepo) Create(_ context.Context, _ *gorm.DB, inv *model.Invoice) error {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	for i := range inv.Lines {
		if inv.Lines[i].ID == uuid.Nil {
			inv.Lines[i].ID = uuid.New()
		}
		inv.Lines[i].InvoiceID = inv.ID
	}
	r.invoices[inv.ID] = inv
	return nil
}

func (r *stubInvoiceRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Invoice, error) {
	inv, ok := r.invoices[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *inv
	return &cp, nil
}

func (r *stubInvoiceRepo) FindByIDForUpdate(_ context.Context, _ *gorm.DB, id uuid.UUID) (*model.Invoice, error) {
	inv, ok := r.invoices[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *inv
	return &cp, nil
}

func (r *stubInvoiceRepo) UpdateHeader(_ context.Context, _ *gorm.DB, inv *model.Invoice) error {
	if _, ok := r.invoices[inv.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.invoices[inv.ID] = inv
	return nil
}

func (r *stubInvoiceRepo) ReplaceLines(_ context.Context, _ *gorm.DB, invoiceID uuid.UUID, lines []model.InvoiceLine) error {
	inv, ok := r.invoices[invoiceID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range lines {
		if lines[i].ID == uuid.Nil {
			lines[i].ID = uuid.New()
		}
		lines[i].InvoiceID = invoiceID
	}
	inv.Lines = lines
	return nil
}

func (r *stubInvoiceRepo) UpdateBalance(_ context.Context, _ *gorm.DB, id uuid.UUID, paid decimal.Decimal, status string, fullyPaidDate *time.Time) error {
	inv, ok := r.invoices[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	inv.PaidAmount = paid
	inv.Status = status
	inv.FullyPaidDate = fullyPaidDate
	return nil
}

func (r *stubInvoiceRepo) Delete(_ context.Context, _ *gorm.DB, id uuid.UUID) error {
	delete(r.invoices, id)
	return nil
}

func (r *stubInvoiceRepo) CountPayments(_ context.Context, _ *gorm.DB, invoiceID uuid.UUID) (int64, error) {
	var n int64
	for _, p := range r.payments.payments {
		if p.InvoiceID == invoiceID {
			n++
		}
	}
	return n, nil
}

func (r *stubInvoiceRepo) NextInvoiceNumber(_ context.Context, _ *gorm.DB) (int, error) {
	r.seq++
	return r.seq, nil
}

func (r *stubInvoiceRepo) MarkSent(_ context.Context, id uuid.UUID) error {
	inv, ok := r.invoices[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	inv.IsSent = true
	inv.NextSendAt = nil
	inv.LastSendError = nil
	return nil
}

func (r *stubInvoiceRepo) MarkSendFailed(_ context.Context, id uuid.UUID, reason string, nextAttempt time.Time) error {
	inv, ok := r.invoices[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	inv.SendRetryCount++
	inv.LastSendError = &reason
	inv.NextSendAt = &nextAttempt
	return nil
}

func (r *stubInvoiceRepo) AbandonSend(_ context.Context, id uuid.UUID, reason string) error {
	inv, ok := r.invoices[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	inv.LastSendError = &reason
	inv.NextSendAt = nil
	return nil
}

func (r *stubInvoiceRepo) ListPendingSendRetries(_ context.Context, before time.Time, limit int) ([]model.Invoice, error) {
	var out []model.Invoice
	for _, inv := range r.invoices {
		if !inv.IsSent && inv.NextSendAt != nil && !inv.NextSendAt.After(before) {
			out = append(out, *inv)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *stubInvoiceRepo) List(_ context.Context, filter dto.InvoiceFilter) ([]model.Invoice, int64, error) {
	var out []model.Invoice
	for _, inv := range r.invoices {
		if filter.OwnerID != "" && inv.OwnerID.String() != filter.OwnerID {
			continue
		}
		if filter.Status != "" && filter.Status != "all" && inv.Status != filter.Status {
			continue
		}
		out = append(out, *inv)
	}
	return out, int64(len(out)), nil
}

var _ repository.InvoiceRepository = (*stubInvoiceRepo)(nil)

// lockHookInvoiceRepo wraps stubInvoiceRepo and runs a callback once, right
// before the invoice row lock would be acquired. Tests use it to commit a
// concurrent mutation inside the window between a pre-transaction read and
// the lock, the interleaving a real database produces under load.
type lockHookInvoiceRepo struct {
	*stubInvoiceRepo
	beforeLock func()
}

func (r *lockHookInvoiceRepo) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Invoice, error) {
	if r.beforeLock != nil {
		hook := r.beforeLock
		r.beforeLock = nil
		hook()
	}
	return r.stubInvoiceRepo.FindByIDForUpdate(ctx, tx, id)
}

var _ repository.InvoiceRepository = (*lockHookInvoiceRepo)(nil)

// ── Payment repository stub ───────────────────────────────────────────────────

type stubPaymentRepo struct {
	payments map[uuid.UUID]*model.Payment
	seq      int
}

func newStubPaymentRepo() *stubPaymentRepo {
	return &stubPaymentRepo{payments: make(map[uuid.UUID]*model.Payment)}
}

func (r *stubPaymentRepo) DB() *gorm.DB { return nil }

func (r *stubPaymentRepo) Create(_ context.Context, _ *gorm.DB, p *model.Payment) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.payments[p.ID] = p
	return nil
}

func (r *stubPaymentRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Payment, error) {
	p, ok := r.payments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubPaymentRepo) FindByIDForUpdate(_ context.Context, _ *gorm.DB, id uuid.UUID) (*model.Payment, error) {
	p, ok := r.payments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubPaymentRepo) UpdateAmount(_ context.Context, _ *gorm.DB, id uuid.UUID, amount decimal.Decimal) error {
	p, ok := r.payments[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Amount = amount
	return nil
}

func (r *stubPaymentRepo) Delete(_ context.Context, _ *gorm.DB, id uuid.UUID) error {
	delete(r.payments, id)
	return nil
}

func (r *stubPaymentRepo) NextPaymentNumber(_ context.Context, _ *gorm.DB) (int, error) {
	r.seq++
	return r.seq, nil
}

func (r *stubPaymentRepo) List(_ context.Context, filter dto.PaymentFilter) ([]model.Payment, int64, error) {
	var out []model.Payment
	for _, p := range r.payments {
		if filter.OwnerID != "" && p.OwnerID.String() != filter.OwnerID {
			continue
		}
		if filter.InvoiceID != "" && p.InvoiceID.String() != filter.InvoiceID {
			continue
		}
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

var _ repository.PaymentRepository = (*stubPaymentRepo)(nil)

// ── Client repository stub ────────────────────────────────────────────────────

type stubClientRepo struct {
	clients  map[uuid.UUID]*model.Client
	invoices *stubInvoiceRepo
	seq      int
}

func newStubClientRepo(invoices *stubInvoiceRepo) *stubClientRepo {
	return &stubClientRepo{clients: make(map[uuid.UUID]*model.Client), invoices: invoices}
}

func (r *stubClientRepo) DB() *gorm.DB { return nil }

func (r *stubClientRepo) Create(_ context.Context, _ *gorm.DB, c *model.Client) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.clients[c.ID] = c
	return nil
}

func (r *stubClientRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Client, error) {
	c, ok := r.clients[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubClientRepo) List(_ context.Context, ownerID uuid.UUID, _, _ int) ([]model.Client, int64, error) {
	var out []model.Client
	for _, c := range r.clients {
		if c.OwnerID == ownerID {
			out = append(out, *c)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubClientRepo) Update(_ context.Context, c *model.Client) error {
	r.clients[c.ID] = c
	return nil
}

func (r *stubClientRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.clients, id)
	return nil
}

func (r *stubClientRepo) CountInvoices(_ context.Context, clientID uuid.UUID) (int64, error) {
	if r.invoices == nil {
		return 0, nil
	}
	var n int64
	for _, inv := range r.invoices.invoices {
		if inv.ClientID == clientID {
			n++
		}
	}
	return n, nil
}

func (r *stubClientRepo) NextClientNumber(_ context.Context, _ *gorm.DB) (int, error) {
	r.seq++
	return r.seq, nil
}

var _ repository.ClientRepository = (*stubClientRepo)(nil)

// ── Item repository stub ──────────────────────────────────────────────────────

type stubItemRepo struct {
	items    map[uuid.UUID]*model.Item
	invoices *stubInvoiceRepo
}

func newStubItemRepo(invoices *stubInvoiceRepo) *stubItemRepo {
	return &stubItemRepo{items: make(map[uuid.UUID]*model.Item), invoices: invoices}
}

func (r *stubItemRepo) Create(_ context.Context, i *model.Item) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	r.items[i.ID] = i
	return nil
}

func (r *stubItemRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Item, error) {
	i, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return i, nil
}

func (r *stubItemRepo) List(_ context.Context, ownerID uuid.UUID, _, _ int) ([]model.Item, int64, error) {
	var out []model.Item
	for _, i := range r.items {
		if i.OwnerID == ownerID {
			out = append(out, *i)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubItemRepo) Update(_ context.Context, i *model.Item) error {
	r.items[i.ID] = i
	return nil
}

func (r *stubItemRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.items, id)
	return nil
}

func (r *stubItemRepo) CountInvoiceLines(_ context.Context, itemID uuid.UUID) (int64, error) {
	if r.invoices == nil {
		return 0, nil
	}
	var n int64
	for _, inv := range r.invoices.invoices {
		for _, l := range inv.Lines {
			if l.ItemID == itemID {
				n++
			}
		}
	}
	return n, nil
}

var _ repository.ItemRepository = (*stubItemRepo)(nil)

// ── User repository stub ──────────────────────────────────────────────────────

type stubUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.users[u.ID] = u
	return nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if !u.Active {
			continue
		}
		if u.Username == username || strings.EqualFold(u.Email, username) {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *stubUserRepo) List(_ context.Context) ([]model.User, error) {
	out := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, u *model.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *stubUserRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Active = false
	return nil
}

var _ repository.UserRepository = (*stubUserRepo)(nil)
