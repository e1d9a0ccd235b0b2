package tests

import (
	"testing"
	"time"

	"github.com/YousofDev/Invoice-Tracker/internal/config"
	"github.com/YousofDev/Invoice-Tracker/internal/dto"
	"github.com/YousofDev/Invoice-Tracker/internal/model"
	"github.com/YousofDev/Invoice-Tracker/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "unit-test-secret"

func newTestCfg() *config.Config {
	return &config.Config{
		JWTSecret:          testSecret,
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
		DefaultCurrency:    "USD",
	}
}

// fixture wires the in-memory stubs and the services under test the same way
// the composition root does, minus the database and the queue.
type fixture struct {
	users    *stubUserRepo
	clients  *stubClientRepo
	items    *stubItemRepo
	invoices *stubInvoiceRepo
	payments *stubPaymentRepo

	authSvc    service.AuthService
	clientSvc  service.ClientService
	itemSvc    service.ItemService
	invoiceSvc service.InvoiceService
	paymentSvc service.PaymentService

	ownerID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	payments := newStubPaymentRepo()
	invoices := newStubInvoiceRepo(payments)
	clients := newStubClientRepo(invoices)
	items := newStubItemRepo(invoices)
	users := newStubUserRepo()

	f := &fixture{
		users:    users,
		clients:  clients,
		items:    items,
		invoices: invoices,
		payments: payments,
		ownerID:  uuid.New(),
	}
	f.authSvc = service.NewAuthService(users, newTestCfg())
	f.clientSvc = service.NewClientService(clients)
	f.itemSvc = service.NewItemService(items)
	f.invoiceSvc = service.NewInvoiceService(invoices, clients, items, nil, "USD")
	f.paymentSvc = service.NewPaymentService(payments, invoices)
	return f
}

func seedUser(t *testing.T, f *fixture, email, password string) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := &model.User{
		ID:           uuid.New(),
		Username:     email,
		Email:        email,
		FullName:     "Test User",
		PasswordHash: string(hash),
		Active:       true,
	}
	f.users.users[u.ID] = u
	return u
}

func seedClient(t *testing.T, f *fixture, email string) *model.Client {
	t.Helper()
	c := &model.Client{
		ID:        uuid.New(),
		Reference: "CLI1",
		OwnerID:   f.ownerID,
		FirstName: "Ada",
		Active:    true,
	}
	if email != "" {
		c.Email = &email
	}
	f.clients.clients[c.ID] = c
	return c
}

func seedItem(t *testing.T, f *fixture, name, price string) *model.Item {
	t.Helper()
	i := &model.Item{
		ID:      uuid.New(),
		OwnerID: f.ownerID,
		Name:    name,
		Price:   decimal.RequireFromString(price),
		Active:  true,
	}
	f.items.items[i.ID] = i
	return i
}

// seedInvoice inserts an invoice directly into the stub, bypassing the
// service, for tests that only exercise the payment side.
func seedInvoice(t *testing.T, f *fixture, client *model.Client, total string) *model.Invoice {
	t.Helper()
	inv := &model.Invoice{
		ID:          uuid.New(),
		Reference:   "INV1",
		OwnerID:     f.ownerID,
		ClientID:    client.ID,
		Status:      model.InvoiceStatusUnpaid,
		IssuingDate: time.Now().UTC(),
		DueDate:     time.Now().UTC().Add(14 * 24 * time.Hour),
		TotalAmount: decimal.RequireFromString(total),
		PaidAmount:  decimal.Zero,
		Currency:    "USD",
		Client:      client,
	}
	f.invoices.invoices[inv.ID] = inv
	return inv
}

func lineReq(item *model.Item, qty int) dto.InvoiceLineRequest {
	return dto.InvoiceLineRequest{ItemID: item.ID.String(), Quantity: qty}
}
