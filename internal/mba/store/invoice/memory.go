package invoice

import (
	"context"
	"sort"
	"sync"

	"mbatrack/internal/mba/models"
	id "mbatrack/pkg/domain"
	"mbatrack/pkg/platform/sentinel"
)

// InMemory holds invoices and their allocations behind one mutex so the
// invoice-plus-allocations write is atomic the same way the Postgres
// transaction makes it.
type InMemory struct {
	mu          sync.RWMutex
	invoices    map[id.InvoiceID]models.Invoice
	allocations map[id.AllocationID]models.InvoiceAllocation
}

func NewInMemory() *InMemory {
	return &InMemory{
		invoices:    make(map[id.InvoiceID]models.Invoice),
		allocations: make(map[id.AllocationID]models.InvoiceAllocation),
	}
}

func (s *InMemory) Create(_ context.Context, invoice *models.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.invoices[invoice.ID]; exists {
		return sentinel.ErrConflict
	}
	for _, existing := range s.invoices {
		if existing.Vendor == invoice.Vendor && existing.Number == invoice.Number {
			return sentinel.ErrConflict
		}
	}
	s.invoices[invoice.ID] = *invoice
	return nil
}

func (s *InMemory) FindByID(_ context.Context, invoiceID id.InvoiceID) (*models.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	invoice, ok := s.invoices[invoiceID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &invoice, nil
}

// List returns invoices, newest invoice date first.
func (s *InMemory) List(_ context.Context) ([]models.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	invoices := make([]models.Invoice, 0, len(s.invoices))
	for _, invoice := range s.invoices {
		invoices = append(invoices, invoice)
	}
	sort.Slice(invoices, func(i, j int) bool {
		return invoices[i].InvoiceDate.After(invoices[j].InvoiceDate)
	})
	return invoices, nil
}

func (s *InMemory) Update(_ context.Context, invoice *models.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.invoices[invoice.ID]; !exists {
		return sentinel.ErrNotFound
	}
	s.invoices[invoice.ID] = *invoice
	return nil
}

// Delete removes the invoice and every allocation hanging off it.
func (s *InMemory) Delete(_ context.Context, invoiceID id.InvoiceID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.invoices[invoiceID]; !exists {
		return sentinel.ErrNotFound
	}
	delete(s.invoices, invoiceID)
	for allocID, alloc := range s.allocations {
		if alloc.InvoiceID == invoiceID {
			delete(s.allocations, allocID)
		}
	}
	return nil
}

func (s *InMemory) CreateAllocation(_ context.Context, alloc *models.InvoiceAllocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.invoices[alloc.InvoiceID]; !exists {
		return sentinel.ErrNotFound
	}
	if _, exists := s.allocations[alloc.ID]; exists {
		return sentinel.ErrConflict
	}
	s.allocations[alloc.ID] = *alloc
	return nil
}

func (s *InMemory) ListAllocationsByInvoice(_ context.Context, invoiceID id.InvoiceID) ([]models.InvoiceAllocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectAllocations(func(a models.InvoiceAllocation) bool {
		return a.InvoiceID == invoiceID
	}), nil
}

func (s *InMemory) ListAllocationsByMBA(_ context.Context, mbaID id.MBAID) ([]models.InvoiceAllocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectAllocations(func(a models.InvoiceAllocation) bool {
		return a.MBAID == mbaID
	}), nil
}

func (s *InMemory) ListAllocations(_ context.Context) ([]models.InvoiceAllocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectAllocations(func(models.InvoiceAllocation) bool { return true }), nil
}

func (s *InMemory) DeleteAllocationsByMBA(_ context.Context, mbaID id.MBAID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for allocID, alloc := range s.allocations {
		if alloc.MBAID == mbaID {
			delete(s.allocations, allocID)
		}
	}
	return nil
}

func (s *InMemory) collectAllocations(keep func(models.InvoiceAllocation) bool) []models.InvoiceAllocation {
	var allocs []models.InvoiceAllocation
	for _, alloc := range s.allocations {
		if keep(alloc) {
			allocs = append(allocs, alloc)
		}
	}
	sort.Slice(allocs, func(i, j int) bool {
		return allocs[i].CreatedAt.Before(allocs[j].CreatedAt)
	})
	return allocs
}
