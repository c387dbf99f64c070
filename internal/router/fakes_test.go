package router

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"catalog-api/internal/model"
)

type memoryUsers struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]model.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byID: map[int64]model.User{}}
}

func (s *memoryUsers) Create(_ context.Context, u model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.byID {
		if strings.EqualFold(existing.Email, u.Email) {
			return model.User{}, model.ErrUserAlreadyExists
		}
	}

	s.nextID++
	now := time.Now().UTC()
	u.ID = s.nextID
	u.CreatedAt = now
	u.UpdatedAt = now
	s.byID[u.ID] = u
	return u, nil
}

func (s *memoryUsers) FindByID(_ context.Context, id int64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (s *memoryUsers) FindByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.byID {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (s *memoryUsers) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

func (s *memoryUsers) remove(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
}

// memoryProducts counts reads so tests can observe cache hits.
type memoryProducts struct {
	mu        sync.Mutex
	nextID    int64
	byID      map[int64]model.Product
	pageReads atomic.Int32
	findReads atomic.Int32
}

func newMemoryProducts() *memoryProducts {
	return &memoryProducts{byID: map[int64]model.Product{}}
}

func (s *memoryProducts) Create(_ context.Context, p model.Product) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	now := time.Now().UTC()
	p.ID = s.nextID
	p.CreatedAt = now
	p.UpdatedAt = now
	s.byID[p.ID] = p
	return p, nil
}

func (s *memoryProducts) FindByID(_ context.Context, id int64) (model.Product, error) {
	s.findReads.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.byID[id]
	if !ok {
		return model.Product{}, model.ErrProductNotFound
	}
	return p, nil
}

func (s *memoryProducts) FindPage(_ context.Context, page int, limit int) ([]model.Product, int, error) {
	s.pageReads.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()

	all := make([]model.Product, 0, len(s.byID))
	for _, p := range s.byID {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	start := model.PageOffset(page, limit)
	if start >= len(all) {
		return []model.Product{}, len(all), nil
	}
	end := min(start+limit, len(all))
	return all[start:end], len(all), nil
}

func (s *memoryProducts) Update(_ context.Context, id int64, patch model.ProductPatch) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.byID[id]
	if !ok {
		return model.Product{}, model.ErrProductNotFound
	}
	applyPatch(&p, patch)
	p.UpdatedAt = time.Now().UTC()
	s.byID[id] = p
	return p, nil
}

func applyPatch(p *model.Product, patch model.ProductPatch) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Stock != nil {
		p.Stock = *patch.Stock
	}
}

func (s *memoryProducts) Delete(_ context.Context, id int64) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.byID[id]
	if !ok {
		return model.Product{}, model.ErrProductNotFound
	}
	delete(s.byID, id)
	return p, nil
}

type staticPinger struct {
	err error
}

func (p staticPinger) Ping(context.Context) error {
	return p.err
}
