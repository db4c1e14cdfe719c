package editor

import (
	"sync"
	"sync/atomic"

	"github.com/goliatone/go-donation-pages/internal/blocks"
	"github.com/goliatone/go-donation-pages/internal/logging"
	"github.com/goliatone/go-donation-pages/internal/pages"
	"github.com/goliatone/go-donation-pages/pkg/interfaces"
)

// Session holds the staged changes for one page edit: the base page as last
// saved, the pending change set, and at most one open element batch.
type Session struct {
	mu       sync.Mutex
	base     pages.Page
	changes  pages.Update
	batch    Batch
	registry *blocks.Registry
	logger   interfaces.Logger
	saving   atomic.Bool
}

// SessionOption configures a session.
type SessionOption func(*Session)

// WithRegistry sets the registry used to decide which blocks are required.
func WithRegistry(registry *blocks.Registry) SessionOption {
	return func(s *Session) {
		if registry != nil {
			s.registry = registry
		}
	}
}

// WithSessionLogger attaches a logger.
func WithSessionLogger(logger interfaces.Logger) SessionOption {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSession starts editing base.
func NewSession(base pages.Page, opts ...SessionOption) *Session {
	s := &Session{
		base:     base.Clone(),
		registry: blocks.DefaultRegistry(),
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.WithPageContext(s.logger, base.ID.String(), base.RevenueProgram.Slug, "edit")
	return s
}

// Base returns the page as last saved.
func (s *Session) Base() pages.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.base.Clone()
}

// Changes returns the staged change set.
func (s *Session) Changes() pages.Update {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.changes.Clone()
}

// Preview returns the base page with the staged changes applied.
func (s *Session) Preview() pages.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.changes.Apply(s.base)
}

// SetChange merges change into the staged set key by key.
func (s *Session) SetChange(change pages.Update) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.changes = s.changes.Merge(change)
	s.logger.Debug("editor.change.staged", "keys", change.Keys())
}

// RemoveBlock drops a block from the location list of the preview and stages
// the filtered list. Blocks of a required type are never removed. It reports
// whether a change was staged.
func (s *Session) RemoveBlock(uuid string, location Location) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	preview := s.changes.Apply(s.base)
	list, err := location.list(preview)
	if err != nil {
		return false
	}
	idx := blocks.IndexOf(list, uuid)
	if idx < 0 {
		return false
	}
	if s.registry.IsRequired(list[idx].Type) {
		s.logger.Debug("editor.remove.required", "uuid", uuid, "type", string(list[idx].Type))
		return false
	}
	filtered := make([]blocks.Block, 0, len(list)-1)
	for _, block := range list {
		if block.UUID != uuid {
			filtered = append(filtered, block.Clone())
		}
	}
	s.changes = s.changes.Merge(location.stage(filtered))
	return true
}

// ResetAll discards every staged change and any open element batch.
func (s *Session) ResetAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.changes = pages.Update{}
	s.batch = ClosedBatch()
}

// HasChanges reports whether any key is staged.
func (s *Session) HasChanges() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.changes.HasChanges()
}

// Rebase replaces the base page after a successful save and clears the
// staged state.
func (s *Session) Rebase(page pages.Page) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.base = page.Clone()
	s.changes = pages.Update{}
	s.batch = ClosedBatch()
}

// OpenElement starts an element batch on uuid. Any batch already open is
// discarded first.
func (s *Session) OpenElement(uuid string, location Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batch = ClosedBatch()
	batch, err := OpenBatch(s.changes.Apply(s.base), uuid, location)
	if err != nil {
		return err
	}
	s.batch = batch
	return nil
}

// ElementOpen returns the target of the open element batch.
func (s *Session) ElementOpen() (string, Location, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.batch.Target()
}

// Working returns the working copy of the open block.
func (s *Session) Working() (blocks.Block, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.batch.Working()
}

// StageElementChange merges change into the open element batch only.
func (s *Session) StageElementChange(change ElementChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	batch, err := s.batch.Stage(change)
	if err != nil {
		return err
	}
	s.batch = batch
	return nil
}

// CommitElement writes the working copy into the staged change set and
// closes the batch. When the block no longer exists in the preview the batch
// stays open and ErrBlockVanished is returned.
func (s *Session) CommitElement() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	change, err := s.batch.Commit(s.changes.Apply(s.base))
	if err != nil {
		if uuid, location, ok := s.batch.Target(); ok {
			s.logger.Error("editor.commit.failed", "uuid", uuid, "location", string(location), "error", err)
		}
		return err
	}
	s.changes = s.changes.Merge(change)
	s.batch = ClosedBatch()
	return nil
}

// ResetElement discards the open element batch.
func (s *Session) ResetElement() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batch = ClosedBatch()
}

func (s *Session) beginSave() bool {
	return s.saving.CompareAndSwap(false, true)
}

func (s *Session) endSave() {
	s.saving.Store(false)
}
