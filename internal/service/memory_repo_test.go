package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/employee-directory/internal/domain"
	"github.com/spec-kit/employee-directory/internal/repository"
)

// memoryEmployeeRepo is an in-memory EmployeeRepository used by service
// tests. It mirrors the store contract: unique lower(email), ErrNoRows on
// missing ids, newest-created-first listing.
type memoryEmployeeRepo struct {
	mu   sync.Mutex
	byID map[string]domain.Employee
	seq  int
}

func newMemoryEmployeeRepo() *memoryEmployeeRepo {
	return &memoryEmployeeRepo{byID: make(map[string]domain.Employee)}
}

func (r *memoryEmployeeRepo) Create(_ context.Context, employee *domain.Employee) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := strings.ToLower(employee.Email)
	for _, existing := range r.byID {
		if strings.ToLower(existing.Email) == email {
			return repository.ErrEmailTaken
		}
	}

	if employee.ID == "" {
		employee.ID = uuid.NewString()
	}
	r.seq++
	employee.Email = email
	employee.CreatedAt = time.Unix(int64(r.seq), 0)
	employee.UpdatedAt = employee.CreatedAt
	r.byID[employee.ID] = *employee
	return nil
}

func (r *memoryEmployeeRepo) Update(_ context.Context, employee *domain.Employee) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[employee.ID]
	if !ok {
		return pgx.ErrNoRows
	}

	email := strings.ToLower(employee.Email)
	for id, existing := range r.byID {
		if id != employee.ID && strings.ToLower(existing.Email) == email {
			return repository.ErrEmailTaken
		}
	}

	employee.Email = email
	employee.CreatedAt = stored.CreatedAt
	employee.UpdatedAt = time.Now()
	r.byID[employee.ID] = *employee
	return nil
}

func (r *memoryEmployeeRepo) GetByID(_ context.Context, id string) (*domain.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	employee, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &employee, nil
}

func (r *memoryEmployeeRepo) GetByEmail(_ context.Context, email string) (*domain.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lowered := strings.ToLower(email)
	for _, employee := range r.byID {
		if strings.ToLower(employee.Email) == lowered {
			copied := employee
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memoryEmployeeRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.byID, id)
	return nil
}

func (r *memoryEmployeeRepo) List(_ context.Context, filter repository.EmployeeFilter) ([]domain.Employee, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []domain.Employee
	search := strings.ToLower(filter.Search)
	for _, employee := range r.byID {
		if search != "" &&
			!strings.Contains(strings.ToLower(employee.FirstName), search) &&
			!strings.Contains(strings.ToLower(employee.LastName), search) {
			continue
		}
		if filter.Department != "" && filter.Department != "All" && employee.Department != filter.Department {
			continue
		}
		matched = append(matched, employee)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := filter.Offset
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}
