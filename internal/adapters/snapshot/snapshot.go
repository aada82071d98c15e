// Package snapshot exports the live engine state as a zstd-compressed JSON
// document: one header line followed by the state body.
package snapshot

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/factorycraft/factory-economy/internal/domain/billing"
	"github.com/factorycraft/factory-economy/internal/domain/factory"
	"github.com/factorycraft/factory-economy/internal/domain/marketplace"
	"github.com/factorycraft/factory-economy/internal/domain/shared"
)

// FormatVersion is bumped whenever the body layout changes incompatibly
const FormatVersion = 1

// FactorySource lists the in-memory factories
type FactorySource interface {
	All() []*factory.Factory
}

// StorageSource returns per-factory storage contents
type StorageSource interface {
	SnapshotInput(factoryID string) (map[string]int, error)
	SnapshotOutput(factoryID string) (map[string]int, error)
}

type InvoiceSource interface {
	FindUnpaid(ctx context.Context) ([]*billing.Invoice, error)
}

type ListingSource interface {
	FindAll(ctx context.Context) ([]*marketplace.Listing, error)
}

type Header struct {
	Version   int       `json:"version"`
	TakenAt   time.Time `json:"taken_at"`
	Factories int       `json:"factories"`
	Invoices  int       `json:"invoices"`
	Listings  int       `json:"listings"`
}

type Document struct {
	Header    Header    `json:"header"`
	Factories []Factory `json:"factories"`
	Invoices  []Invoice `json:"unpaid_invoices"`
	Listings  []Listing `json:"listings"`
}

type Factory struct {
	ID        string         `json:"id"`
	RegionRef string         `json:"region_ref"`
	Type      string         `json:"type"`
	OwnerID   string         `json:"owner_id,omitempty"`
	Price     float64        `json:"price"`
	Level     int            `json:"level"`
	Suspended bool           `json:"suspended,omitempty"`
	Task      *Task          `json:"task,omitempty"`
	UpgradeTo int            `json:"upgrade_to,omitempty"`
	Employees int            `json:"employees"`
	Wages     float64        `json:"wages"`
	Input     map[string]int `json:"input,omitempty"`
	Output    map[string]int `json:"output,omitempty"`
}

type Task struct {
	RecipeID        string         `json:"recipe_id"`
	StartedAt       int64          `json:"started_at"`
	DurationSeconds int            `json:"duration_seconds"`
	Outputs         map[string]int `json:"outputs"`
}

type Invoice struct {
	ID        string    `json:"id"`
	FactoryID string    `json:"factory_id"`
	OwnerID   string    `json:"owner_id"`
	Type      string    `json:"type"`
	Amount    float64   `json:"amount"`
	DueAt     time.Time `json:"due_at"`
}

type Listing struct {
	ID         string    `json:"id"`
	SellerID   string    `json:"seller_id"`
	FactoryID  string    `json:"factory_id"`
	ResourceID string    `json:"resource_id"`
	Amount     int       `json:"amount"`
	UnitPrice  float64   `json:"unit_price"`
	CreatedAt  time.Time `json:"created_at"`
}

// Exporter gathers engine state into a Document and writes it to disk
type Exporter struct {
	factories FactorySource
	storage   StorageSource
	invoices  InvoiceSource
	listings  ListingSource
	clock     shared.Clock
}

// NewExporter wires the state sources. invoices and listings may be nil.
func NewExporter(factories FactorySource, storage StorageSource, invoices InvoiceSource, listings ListingSource, clock shared.Clock) *Exporter {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &Exporter{factories: factories, storage: storage, invoices: invoices, listings: listings, clock: clock}
}

// Collect builds the document from the current state
func (e *Exporter) Collect(ctx context.Context) (*Document, error) {
	doc := &Document{}

	for _, f := range e.factories.All() {
		entry := Factory{
			ID:        f.ID(),
			RegionRef: f.RegionRef(),
			Type:      string(f.Type()),
			Price:     f.Price(),
			Level:     f.Level(),
			Suspended: f.IsSuspended(),
			Employees: f.EmployeeCount(),
			Wages:     f.TotalWages(),
		}
		if owner := f.Owner(); owner != nil {
			entry.OwnerID = owner.String()
		}
		if task := f.Task(); task != nil {
			entry.Task = &Task{
				RecipeID:        task.RecipeID(),
				StartedAt:       task.StartedAt(),
				DurationSeconds: task.DurationSeconds(),
				Outputs:         task.Outputs(),
			}
		}
		if up := f.Upgrade(); up != nil {
			entry.UpgradeTo = up.TargetLevel()
		}
		if e.storage != nil {
			in, err := e.storage.SnapshotInput(f.ID())
			if err != nil {
				return nil, fmt.Errorf("failed to read input storage of %s: %w", f.ID(), err)
			}
			out, err := e.storage.SnapshotOutput(f.ID())
			if err != nil {
				return nil, fmt.Errorf("failed to read output storage of %s: %w", f.ID(), err)
			}
			if len(in) > 0 {
				entry.Input = in
			}
			if len(out) > 0 {
				entry.Output = out
			}
		}
		doc.Factories = append(doc.Factories, entry)
	}
	sort.Slice(doc.Factories, func(i, j int) bool { return doc.Factories[i].ID < doc.Factories[j].ID })

	if e.invoices != nil {
		unpaid, err := e.invoices.FindUnpaid(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read unpaid invoices: %w", err)
		}
		for _, inv := range unpaid {
			doc.Invoices = append(doc.Invoices, Invoice{
				ID:        inv.ID(),
				FactoryID: inv.FactoryID(),
				OwnerID:   inv.OwnerID().String(),
				Type:      string(inv.Type()),
				Amount:    inv.Amount(),
				DueAt:     inv.DueAt(),
			})
		}
	}

	if e.listings != nil {
		listings, err := e.listings.FindAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read listings: %w", err)
		}
		for _, l := range listings {
			doc.Listings = append(doc.Listings, Listing{
				ID:         l.ID(),
				SellerID:   l.SellerID().String(),
				FactoryID:  l.FactoryID(),
				ResourceID: l.ResourceID(),
				Amount:     l.Amount(),
				UnitPrice:  l.UnitPrice(),
				CreatedAt:  l.CreatedAt(),
			})
		}
	}

	doc.Header = Header{
		Version:   FormatVersion,
		TakenAt:   e.clock.Now(),
		Factories: len(doc.Factories),
		Invoices:  len(doc.Invoices),
		Listings:  len(doc.Listings),
	}
	return doc, nil
}

// Export collects the state and writes it to path, replacing any previous snapshot
func (e *Exporter) Export(ctx context.Context, path string) (*Header, error) {
	doc, err := e.Collect(ctx)
	if err != nil {
		return nil, err
	}
	if err := Write(path, doc); err != nil {
		return nil, err
	}
	return &doc.Header, nil
}

// Write encodes doc to path through a temporary file so readers never see a partial snapshot
func Write(path string, doc *Document) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := encode(tmp, doc); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func encode(f *os.File, doc *Document) error {
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 64*1024)

	hb, err := json.Marshal(doc.Header)
	if err != nil {
		enc.Close()
		return err
	}
	if _, err := bw.Write(append(hb, '\n')); err != nil {
		enc.Close()
		return err
	}
	if err := json.NewEncoder(bw).Encode(doc); err != nil {
		enc.Close()
		return fmt.Errorf("json encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// ReadHeader decodes only the first line of a snapshot
func ReadHeader(path string) (*Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	line, err := bufio.NewReader(dec).ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot header: %w", err)
	}
	var h Header
	if err := json.Unmarshal(line, &h); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot header: %w", err)
	}
	return &h, nil
}

// Read decodes a full snapshot
func Read(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	br := bufio.NewReader(dec)
	if _, err := br.ReadBytes('\n'); err != nil {
		return nil, fmt.Errorf("failed to skip snapshot header: %w", err)
	}
	var doc Document
	if err := json.NewDecoder(br).Decode(&doc); err != nil {
		return nil, fmt.Errorf("json decode: %w", err)
	}
	if doc.Header.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", doc.Header.Version)
	}
	return &doc, nil
}
