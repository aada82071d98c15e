package snapshot_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/factorycraft/factory-economy/internal/adapters/snapshot"
	"github.com/factorycraft/factory-economy/internal/application/factory/services"
	"github.com/factorycraft/factory-economy/internal/domain/billing"
	"github.com/factorycraft/factory-economy/internal/domain/marketplace"
	"github.com/factorycraft/factory-economy/internal/domain/shared"
	"github.com/factorycraft/factory-economy/test/helpers"
)

func TestExporter_RoundTrip(t *testing.T) {
	// Arrange
	te := helpers.NewTestEngine(t, services.DefaultSettings())
	ctx := context.Background()
	owner := te.OwnFactory(t, "f1", shared.FactoryTypeWorkshop, 1000)
	te.CreateFactory(t, "f2", shared.FactoryTypeFoundry, 500)
	require.NoError(t, te.Storage.AddInput(ctx, "f1", "iron_ore", 10))
	require.NoError(t, te.Storage.AddOutput(ctx, "f1", "steel_ingot", 2))
	_, err := te.Production.Start(ctx, owner, "f1", "r1")
	require.NoError(t, err)

	invoices := helpers.NewMockInvoiceRepository()
	inv, err := billing.NewInvoice("f1", owner, billing.InvoiceTypeTax, 50, te.Clock.Now(), time.Hour)
	require.NoError(t, err)
	require.NoError(t, invoices.Save(ctx, inv))

	listings := helpers.NewMockListingRepository()
	listing, err := marketplace.NewListing(owner, "f1", "steel_ingot", 1, 9, te.Clock.Now())
	require.NoError(t, err)
	require.NoError(t, listings.Save(ctx, listing))

	exporter := snapshot.NewExporter(te.Registry, te.Storage, invoices, listings, te.Clock)
	path := filepath.Join(t.TempDir(), "state", "snapshot.json.zst")

	// Act
	header, err := exporter.Export(ctx, path)
	require.NoError(t, err)

	// Assert
	assert.Equal(t, 2, header.Factories)
	assert.Equal(t, 1, header.Invoices)
	assert.Equal(t, 1, header.Listings)

	onDisk, err := snapshot.ReadHeader(path)
	require.NoError(t, err)
	assert.Equal(t, *header, *onDisk)

	doc, err := snapshot.Read(path)
	require.NoError(t, err)
	require.Len(t, doc.Factories, 2)
	f1 := doc.Factories[0]
	assert.Equal(t, "f1", f1.ID)
	assert.Equal(t, owner.String(), f1.OwnerID)
	require.NotNil(t, f1.Task)
	assert.Equal(t, "r1", f1.Task.RecipeID)
	assert.Equal(t, map[string]int{"iron_ore": 5}, f1.Input)
	assert.Equal(t, map[string]int{"steel_ingot": 2}, f1.Output)
	assert.Empty(t, doc.Factories[1].OwnerID)
	assert.Equal(t, inv.ID(), doc.Invoices[0].ID)
	assert.Equal(t, listing.ID(), doc.Listings[0].ID)
}

func TestExporter_OptionalSources(t *testing.T) {
	te := helpers.NewTestEngine(t, services.DefaultSettings())
	te.CreateFactory(t, "solo", shared.FactoryTypeRefinery, 10)

	doc, err := snapshot.NewExporter(te.Registry, nil, nil, nil, te.Clock).Collect(context.Background())
	require.NoError(t, err)
	assert.Len(t, doc.Factories, 1)
	assert.Empty(t, doc.Invoices)
	assert.Empty(t, doc.Listings)
}

func TestRead_RejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.zst")
	require.NoError(t, os.WriteFile(path, []byte("not zstd"), 0o644))

	_, err := snapshot.Read(path)
	assert.Error(t, err)
}
