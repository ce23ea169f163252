package acceptance

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"credit-system/internal/domain/credit"
	"credit-system/internal/domain/customer"
	"credit-system/internal/pkg/apperrors"

	"github.com/google/uuid"
)

// memoryStore mirrors the constraints of the SQL schema: unique CPF and
// email, unique credit code and credits removed together with their owner.
type memoryStore struct {
	mu        sync.Mutex
	customers map[int64]customer.Customer
	credits   map[uuid.UUID]credit.Credit
	nextID    int64
	nextCrID  int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		customers: make(map[int64]customer.Customer),
		credits:   make(map[uuid.UUID]credit.Credit),
	}
}

type memoryCustomers struct{ s *memoryStore }

type memoryCredits struct{ s *memoryStore }

var (
	_ customer.CustomerRepository = memoryCustomers{}
	_ credit.Repository           = memoryCredits{}
)

func (r memoryCustomers) Save(_ context.Context, c *customer.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, other := range r.s.customers {
		if id == c.ID {
			continue
		}
		if other.CPF == c.CPF {
			return fmt.Errorf("%w: Customer with this CPF already exists", apperrors.ErrAlreadyExists)
		}
		if other.Email == c.Email {
			return fmt.Errorf("%w: Customer with this email already exists", apperrors.ErrAlreadyExists)
		}
	}

	now := time.Now()
	if c.IsNew() {
		r.s.nextID++
		c.ID = r.s.nextID
		c.CreatedAt = now
	} else if _, ok := r.s.customers[c.ID]; !ok {
		return apperrors.ErrNotFound
	}
	c.UpdatedAt = now
	r.s.customers[c.ID] = *c
	return nil
}

func (r memoryCustomers) FindByID(_ context.Context, customerID int64) (*customer.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.customers[customerID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &c, nil
}

func (r memoryCustomers) Delete(_ context.Context, customerID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.customers[customerID]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.s.customers, customerID)
	for code, cr := range r.s.credits {
		if cr.CustomerID == customerID {
			delete(r.s.credits, code)
		}
	}
	return nil
}

func (r memoryCredits) Save(_ context.Context, cr *credit.Credit) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.customers[cr.CustomerID]; !ok {
		return fmt.Errorf("%w: credits_customer_id_fkey", apperrors.ErrDatabase)
	}
	if _, ok := r.s.credits[cr.CreditCode]; ok {
		return fmt.Errorf("%w: credit code %s", apperrors.ErrAlreadyExists, cr.CreditCode)
	}
	r.s.nextCrID++
	cr.ID = r.s.nextCrID
	cr.CreatedAt = time.Now()

	stored := *cr
	stored.Customer = nil
	r.s.credits[cr.CreditCode] = stored
	return nil
}

func (r memoryCredits) FindByCreditCode(_ context.Context, code uuid.UUID) (*credit.Credit, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cr, ok := r.s.credits[code]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	r.s.attachOwner(&cr)
	return &cr, nil
}

func (r memoryCredits) FindAllByCustomerID(_ context.Context, customerID int64) ([]*credit.Credit, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*credit.Credit
	for _, cr := range r.s.credits {
		if cr.CustomerID == customerID {
			cr := cr
			r.s.attachOwner(&cr)
			out = append(out, &cr)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memoryCredits) CountByStatus(context.Context) (map[credit.Status]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	counts := make(map[credit.Status]int64)
	for _, cr := range r.s.credits {
		counts[cr.Status]++
	}
	return counts, nil
}

func (s *memoryStore) attachOwner(cr *credit.Credit) {
	if owner, ok := s.customers[cr.CustomerID]; ok {
		cr.Customer = &owner
	}
}
