package styles

import (
	"context"
	"sort"
	"strconv"
	"sync"
)

// MemoryRepository stores styles in process memory.
type MemoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]*Style
}

// NewMemoryRepository constructs an empty memory-backed style repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[int64]*Style)}
}

func (r *MemoryRepository) Create(_ context.Context, style *Style) (*Style, error) {
	if style == nil {
		return nil, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	cloned := cloneStyle(style)
	cloned.ID = r.nextID
	r.byID[cloned.ID] = cloned
	return cloneStyle(cloned), nil
}

func (r *MemoryRepository) Update(_ context.Context, style *Style) (*Style, error) {
	if style == nil {
		return nil, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[style.ID]; !ok {
		return nil, &NotFoundError{Resource: "style", Key: strconv.FormatInt(style.ID, 10)}
	}
	cloned := cloneStyle(style)
	r.byID[cloned.ID] = cloned
	return cloneStyle(cloned), nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id int64) (*Style, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "style", Key: strconv.FormatInt(id, 10)}
	}
	return cloneStyle(record), nil
}

func (r *MemoryRepository) ListByRevenueProgram(_ context.Context, revenueProgramID int64) ([]*Style, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Style, 0, len(r.byID))
	for _, record := range r.byID {
		if record.RevenueProgramID == revenueProgramID {
			out = append(out, cloneStyle(record))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
