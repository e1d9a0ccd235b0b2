package tests

import (
	"context"
	"testing"

	"github.com/YousofDev/Invoice-Tracker/internal/apierror"
	"github.com/YousofDev/Invoice-Tracker/internal/dto"
	"github.com/YousofDev/Invoice-Tracker/internal/model"
	"github.com/YousofDev/Invoice-Tracker/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordPayment(t *testing.T, f *fixture, inv *model.Invoice, amount string) *dto.PaymentResponse {
	t.Helper()
	resp, err := f.paymentSvc.Record(context.Background(), f.ownerID, dto.RecordPaymentRequest{
		InvoiceID: inv.ID.String(),
		Amount:    decimal.RequireFromString(amount),
	})
	require.NoError(t, err)
	return resp
}

func TestPaymentRecordPartial(t *testing.T) {
	f := newFixture(t)
	client := seedClient(t, f, "ada@example.com")
	inv := seedInvoice(t, f, client, "100.00")

	resp := recordPayment(t, f, inv, "40.00")

	assert.Equal(t, "PY1", resp.Reference)
	assert.Equal(t, model.PaymentStatusCompleted, resp.Status)
	assert.Equal(t, model.PaymentMethodCash, resp.Method)
	assert.Equal(t, "USD", resp.Currency)

	assert.True(t, inv.PaidAmount.Equal(decimal.RequireFromString("40.00")))
	assert.Equal(t, model.InvoiceStatusPartiallyPaid, inv.Status)
	assert.Nil(t, inv.FullyPaidDate)
}

func TestPaymentRecordExactRemainingMarksPaid(t *testing.T) {
	f := newFixture(t)
	client := seedClient(t, f, "ada@example.com")
	inv := seedInvoice(t, f, client, "100.00")

	recordPayment(t, f, inv, "40.00")
	recordPayment(t, f, inv, "60.00")

	assert.True(t, inv.PaidAmount.Equal(inv.TotalAmount))
	assert.Equal(t, model.InvoiceStatusPaid, inv.Status)
	require.NotNil(t, inv.FullyPaidDate)
}

func TestPaymentRecordExceedingBalanceRejected(t *testing.T) {
	f := newFixture(t)
	client := seedClient(t, f, "ada@example.com")
	inv := seedInvoice(t, f, client, "100.00")
	recordPayment(t, f, inv, "40.00")

	_, err := f.paymentSvc.Record(context.Background(), f.ownerID, dto.RecordPaymentRequest{
		InvoiceID: inv.ID.String(),
		Amount:    decimal.RequireFromString("60.01"),
	})
	require.Error(t, err)
	assert.Equal(t, apierror.InvalidArgument, apierror.KindOf(err))
	assert.Contains(t, err.Error(), "60.01")
	assert.Contains(t, err.Error(), "60.00")

	// The failed attempt must not have moved the balance.
	assert.True(t, inv.PaidAmount.Equal(decimal.RequireFromString("40.00")))
	assert.Equal(t, model.InvoiceStatusPartiallyPaid, inv.Status)
}

func TestPaymentRecordAgainstPaidInvoiceRejected(t *testing.T) {
	f := newFixture(t)
	client := seedClient(t, f, "ada@example.com")
	inv := seedInvoice(t, f, client, "100.00")
	recordPayment(t, f, inv, "100.00")

	_, err := f.paymentSvc.Record(context.Background(), f.ownerID, dto.RecordPaymentRequest{
		InvoiceID: inv.ID.String(),
		Amount:    decimal.RequireFromString("0.01"),
	})
	require.Error(t, err)
	assert.Equal(t, apierror.Conflict, apierror.KindOf(err))
	assert.Contains(t, err.Error(), "already fully paid")
}

func TestPaymentRecordUnknownInvoice(t *testing.T) {
	f := newFixture(t)

	_, err := f.paymentSvc.Record(context.Background(), f.ownerID, dto.RecordPaymentRequest{
		InvoiceID: uuid.NewString(),
		Amount:    decimal.RequireFromString("10.00"),
	})
	require.Error(t, err)
	assert.Equal(t, apierror.NotFound, apierror.KindOf(err))
}

func TestPaymentUpdateReconcilesBalance(t *testing.T) {
	f := newFixture(t)
	client := seedClient(t, f, "ada@example.com")
	inv := seedInvoice(t, f, client, "100.00")
	p := recordPayment(t, f, inv, "40.00")

	// Raising the payment to the full total flips the invoice to paid.
	_, err := f.paymentSvc.Update(context.Background(), uuid.MustParse(p.ID), dto.UpdatePaymentRequest{
		Amount: decimal.RequireFromString("100.00"),
	})
	require.NoError(t, err)
	assert.True(t, inv.PaidAmount.Equal(decimal.RequireFromString("100.00")))
	assert.Equal(t, model.InvoiceStatusPaid, inv.Status)
	require.NotNil(t, inv.FullyPaidDate)

	// The payment that made the invoice paid stays correctable: lowering it
	// drops the invoice back to partially paid.
	_, err = f.paymentSvc.Update(context.Background(), uuid.MustParse(p.ID), dto.UpdatePaymentRequest{
		Amount: decimal.RequireFromString("30.00"),
	})
	require.NoError(t, err)
	assert.True(t, inv.PaidAmount.Equal(decimal.RequireFromString("30.00")))
	assert.Equal(t, model.InvoiceStatusPartiallyPaid, inv.Status)
	assert.Nil(t, inv.FullyPaidDate)
}

func TestPaymentUpdateExceedingTotalRejected(t *testing.T) {
	f := newFixture(t)
	client := seedClient(t, f, "ada@example.com")
	inv := seedInvoice(t, f, client, "100.00")
	recordPayment(t, f, inv, "50.00")
	p := recordPayment(t, f, inv, "20.00")

	// Projected paid = 100 - 20 + 60 = 130 > 100.
	_, err := f.paymentSvc.Update(context.Background(), uuid.MustParse(p.ID), dto.UpdatePaymentRequest{
		Amount: decimal.RequireFromString("60.00"),
	})
	require.Error(t, err)
	assert.Equal(t, apierror.InvalidArgument, apierror.KindOf(err))

	assert.True(t, inv.PaidAmount.Equal(decimal.RequireFromString("70.00")))
}

func TestPaymentDeleteReconcilesBalance(t *testing.T) {
	f := newFixture(t)
	client := seedClient(t, f, "ada@example.com")
	inv := seedInvoice(t, f, client, "100.00")
	p1 := recordPayment(t, f, inv, "40.00")
	recordPayment(t, f, inv, "60.00")
	require.Equal(t, model.InvoiceStatusPaid, inv.Status)

	require.NoError(t, f.paymentSvc.Delete(context.Background(), uuid.MustParse(p1.ID)))

	assert.True(t, inv.PaidAmount.Equal(decimal.RequireFromString("60.00")))
	assert.Equal(t, model.InvoiceStatusPartiallyPaid, inv.Status)
	assert.Nil(t, inv.FullyPaidDate)
}

func TestPaymentDeleteLastPaymentResetsToUnpaid(t *testing.T) {
	f := newFixture(t)
	client := seedClient(t, f, "ada@example.com")
	inv := seedInvoice(t, f, client, "100.00")
	p := recordPayment(t, f, inv, "100.00")
	require.Equal(t, model.InvoiceStatusPaid, inv.Status)

	require.NoError(t, f.paymentSvc.Delete(context.Background(), uuid.MustParse(p.ID)))

	assert.True(t, inv.PaidAmount.IsZero())
	assert.Equal(t, model.InvoiceStatusUnpaid, inv.Status)
	assert.Nil(t, inv.FullyPaidDate)
}

func TestPaymentDeleteUnknownPayment(t *testing.T) {
	f := newFixture(t)

	err := f.paymentSvc.Delete(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, apierror.NotFound, apierror.KindOf(err))
}

// Full walkthrough: record, reconcile, correct, delete.
func TestPaymentLifecycleSequence(t *testing.T) {
	f := newFixture(t)
	client := seedClient(t, f, "ada@example.com")
	inv := seedInvoice(t, f, client, "100.00")

	p1 := recordPayment(t, f, inv, "40.00")
	assert.Equal(t, model.InvoiceStatusPartiallyPaid, inv.Status)

	recordPayment(t, f, inv, "60.00")
	assert.Equal(t, model.InvoiceStatusPaid, inv.Status)

	require.NoError(t, f.paymentSvc.Delete(context.Background(), uuid.MustParse(p1.ID)))
	assert.True(t, inv.PaidAmount.Equal(decimal.RequireFromString("60.00")))
	assert.Equal(t, model.InvoiceStatusPartiallyPaid, inv.Status)

	list, err := f.paymentSvc.List(context.Background(), dto.PaymentFilter{
		OwnerID:   f.ownerID.String(),
		InvoiceID: inv.ID.String(),
	})
	require.NoError(t, err)
	assert.Len(t, list.Data, 1)
	assert.Equal(t, int64(1), list.Total)
}

// The amount delta must come from the payment row as it stands under the
// invoice lock. Here a second update of the same payment commits in the
// window before this update acquires the lock: reconciling against the
// pre-transaction amount would mark the invoice fully paid on 50.00.
func TestPaymentUpdateUsesAmountReadUnderLock(t *testing.T) {
	f := newFixture(t)
	client := seedClient(t, f, "ada@example.com")
	inv := seedInvoice(t, f, client, "100.00")
	p := recordPayment(t, f, inv, "40.00")
	pid := uuid.MustParse(p.ID)

	hooked := &lockHookInvoiceRepo{stubInvoiceRepo: f.invoices}
	svc := service.NewPaymentService(f.payments, hooked)

	hooked.beforeLock = func() {
		_, err := svc.Update(context.Background(), pid, dto.UpdatePaymentRequest{
			Amount: decimal.RequireFromString("90.00"),
		})
		require.NoError(t, err)
	}

	_, err := svc.Update(context.Background(), pid, dto.UpdatePaymentRequest{
		Amount: decimal.RequireFromString("50.00"),
	})
	require.NoError(t, err)

	assert.True(t, inv.PaidAmount.Equal(decimal.RequireFromString("50.00")),
		"paid_amount must equal the surviving payment, got %s", inv.PaidAmount)
	assert.Equal(t, model.InvoiceStatusPartiallyPaid, inv.Status)
	assert.Nil(t, inv.FullyPaidDate)
}

// A delete racing another delete of the same payment must not subtract the
// amount twice; the loser gets NotFound and the balance stays at zero.
func TestPaymentDeleteConcurrentDeleteNotDoubled(t *testing.T) {
	f := newFixture(t)
	client := seedClient(t, f, "ada@example.com")
	inv := seedInvoice(t, f, client, "100.00")
	p := recordPayment(t, f, inv, "100.00")
	pid := uuid.MustParse(p.ID)

	hooked := &lockHookInvoiceRepo{stubInvoiceRepo: f.invoices}
	svc := service.NewPaymentService(f.payments, hooked)

	hooked.beforeLock = func() {
		require.NoError(t, svc.Delete(context.Background(), pid))
	}

	err := svc.Delete(context.Background(), pid)
	require.Error(t, err)
	assert.Equal(t, apierror.NotFound, apierror.KindOf(err))

	assert.True(t, inv.PaidAmount.IsZero(), "paid_amount must stop at zero, got %s", inv.PaidAmount)
	assert.Equal(t, model.InvoiceStatusUnpaid, inv.Status)
	assert.Nil(t, inv.FullyPaidDate)
}

func TestPaymentReferencesAreSequential(t *testing.T) {
	f := newFixture(t)
	client := seedClient(t, f, "ada@example.com")
	inv := seedInvoice(t, f, client, "100.00")

	p1 := recordPayment(t, f, inv, "10.00")
	p2 := recordPayment(t, f, inv, "10.00")
	assert.Equal(t, "PY1", p1.Reference)
	assert.Equal(t, "PY2", p2.Reference)
}
