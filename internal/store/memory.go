package store

import (
	"sync"

	"github.com/finsalud/finbot/internal/models"
)

// Compile-time check that InMemoryStore implements CompanyStore.
var _ CompanyStore = (*InMemoryStore)(nil)

// InMemoryStore is a non-durable CompanyStore used for tests and DSN-less runs.
type InMemoryStore struct {
	mu        sync.RWMutex
	companies map[string]models.Company
}

// NewInMemoryStore creates an empty in-memory company store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{companies: make(map[string]models.Company)}
}

func (s *InMemoryStore) LoadAll() (map[string]models.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]models.Company, len(s.companies))
	for name, c := range s.companies {
		out[name] = c
	}
	return out, nil
}

func (s *InMemoryStore) ReplaceAll(companies map[string]models.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.companies = make(map[string]models.Company, len(companies))
	for name, c := range companies {
		s.companies[name] = c
	}
	return nil
}

func (s *InMemoryStore) Save(company models.Company) error {
	if err := company.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.companies[company.Name] = company
	return nil
}

func (s *InMemoryStore) Get(name string) (models.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.companies[name]
	if !ok {
		return models.Company{}, models.ErrCompanyNotFound
	}
	return c, nil
}

func (s *InMemoryStore) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.companies, name)
	return nil
}

func (s *InMemoryStore) List() ([]models.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Company, 0, len(s.companies))
	for _, c := range s.companies {
		out = append(out, c)
	}
	return out, nil
}

func (s *InMemoryStore) Close() error { return nil }
