package tests

import (
	"context"
	"testing"

	"github.com/YousofDev/Invoice-Tracker/internal/apierror"
	"github.com/YousofDev/Invoice-Tracker/internal/dto"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientCreateAssignsReference(t *testing.T) {
	f := newFixture(t)

	first, err := f.clientSvc.Create(context.Background(), f.ownerID, dto.CreateClientRequest{
		FirstName: "Ada",
	})
	require.NoError(t, err)
	second, err := f.clientSvc.Create(context.Background(), f.ownerID, dto.CreateClientRequest{
		FirstName: "Grace",
	})
	require.NoError(t, err)

	assert.Equal(t, "CLI1", first.Reference)
	assert.Equal(t, "CLI2", second.Reference)
	assert.True(t, first.Active)
}

func TestClientUpdate(t *testing.T) {
	f := newFixture(t)
	c := seedClient(t, f, "ada@example.com")

	phone := "+1-555-0100"
	resp, err := f.clientSvc.Update(context.Background(), c.ID, dto.UpdateClientRequest{
		FirstName: "Ada",
		Phone:     &phone,
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Phone)
	assert.Equal(t, phone, *resp.Phone)
	// Reference never changes on update.
	assert.Equal(t, c.Reference, resp.Reference)
}

func TestClientDeleteBlockedByInvoices(t *testing.T) {
	f := newFixture(t)
	c := seedClient(t, f, "ada@example.com")
	seedInvoice(t, f, c, "100.00")

	err := f.clientSvc.Delete(context.Background(), c.ID)
	require.Error(t, err)
	assert.Equal(t, apierror.Conflict, apierror.KindOf(err))

	_, err = f.clientSvc.Get(context.Background(), c.ID)
	assert.NoError(t, err)
}

func TestClientDeleteWithoutInvoices(t *testing.T) {
	f := newFixture(t)
	c := seedClient(t, f, "ada@example.com")

	require.NoError(t, f.clientSvc.Delete(context.Background(), c.ID))

	_, err := f.clientSvc.Get(context.Background(), c.ID)
	require.Error(t, err)
	assert.Equal(t, apierror.NotFound, apierror.KindOf(err))
}

func TestClientGetUnknown(t *testing.T) {
	f := newFixture(t)

	_, err := f.clientSvc.Get(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, apierror.NotFound, apierror.KindOf(err))
}

func TestItemCreateRejectsNegativePrice(t *testing.T) {
	f := newFixture(t)

	_, err := f.itemSvc.Create(context.Background(), f.ownerID, dto.CreateItemRequest{
		Name:  "Widget",
		Price: decimal.RequireFromString("-1.00"),
	})
	require.Error(t, err)
	assert.Equal(t, apierror.InvalidArgument, apierror.KindOf(err))
}

func TestItemDeleteBlockedByInvoiceLines(t *testing.T) {
	f := newFixture(t)
	client := seedClient(t, f, "ada@example.com")
	item := seedItem(t, f, "Widget", "10.00")

	_, err := f.invoiceSvc.Create(context.Background(), f.ownerID, dto.CreateInvoiceRequest{
		ClientID:    client.ID.String(),
		IssuingDate: "2026-08-01",
		DueDate:     "2026-08-15",
		Lines:       []dto.InvoiceLineRequest{lineReq(item, 1)},
	})
	require.NoError(t, err)

	err = f.itemSvc.Delete(context.Background(), item.ID)
	require.Error(t, err)
	assert.Equal(t, apierror.Conflict, apierror.KindOf(err))
}

func TestItemUpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	item := seedItem(t, f, "Widget", "10.00")

	resp, err := f.itemSvc.Update(context.Background(), item.ID, dto.UpdateItemRequest{
		Name:  "Widget v2",
		Price: decimal.RequireFromString("12.50"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Widget v2", resp.Name)
	assert.True(t, resp.Price.Equal(decimal.RequireFromString("12.50")))

	require.NoError(t, f.itemSvc.Delete(context.Background(), item.ID))

	_, err = f.itemSvc.Get(context.Background(), item.ID)
	require.Error(t, err)
	assert.Equal(t, apierror.NotFound, apierror.KindOf(err))
}

func TestItemListScopedToOwner(t *testing.T) {
	f := newFixture(t)
	seedItem(t, f, "Mine", "10.00")

	other := seedItem(t, f, "Theirs", "20.00")
	other.OwnerID = uuid.New()

	resp, err := f.itemSvc.List(context.Background(), f.ownerID, 1, 50)
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "Mine", resp.Data[0].Name)
}
