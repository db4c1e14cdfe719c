package editor

import (
	"fmt"
	"slices"

	"github.com/goliatone/go-donation-pages/internal/blocks"
	"github.com/goliatone/go-donation-pages/internal/pages"
)

// ElementChange is a partial edit of one block. A nil Content or nil
// RequiredFields leaves that part of the working copy untouched.
type ElementChange struct {
	Content        blocks.Content
	RequiredFields []string
}

// Batch is the element edit state: closed, or open on a single block with a
// working copy of it. The zero value is closed.
type Batch struct {
	open     bool
	location Location
	working  blocks.Block
}

// ClosedBatch returns the closed state.
func ClosedBatch() Batch {
	return Batch{}
}

// OpenBatch starts editing the block uuid found in the location list of
// preview.
func OpenBatch(preview pages.Page, uuid string, location Location) (Batch, error) {
	list, err := location.list(preview)
	if err != nil {
		return Batch{}, err
	}
	idx := blocks.IndexOf(list, uuid)
	if idx < 0 {
		return Batch{}, fmt.Errorf("%w: %s in %s", ErrBlockNotFound, uuid, location)
	}
	return Batch{open: true, location: location, working: list[idx].Clone()}, nil
}

// Target returns the uuid and location of the open block.
func (b Batch) Target() (string, Location, bool) {
	if !b.open {
		return "", "", false
	}
	return b.working.UUID, b.location, true
}

// Working returns a copy of the working block.
func (b Batch) Working() (blocks.Block, bool) {
	if !b.open {
		return blocks.Block{}, false
	}
	return b.working.Clone(), true
}

// Stage merges change into the working copy.
func (b Batch) Stage(change ElementChange) (Batch, error) {
	if !b.open {
		return b, ErrNoOpenElement
	}
	next := b
	next.working = b.working.Clone()
	if change.Content != nil {
		next.working.Content = blocks.MergeContent(next.working.Content, change.Content)
	}
	if change.RequiredFields != nil {
		next.working.RequiredFields = slices.Clone(change.RequiredFields)
	}
	return next, nil
}

// Commit replaces the edited block inside the preview list and returns the
// change to stage for that list. It fails when the block has disappeared from
// the preview since the batch was opened.
func (b Batch) Commit(preview pages.Page) (pages.Update, error) {
	if !b.open {
		return pages.Update{}, ErrNoOpenElement
	}
	list, err := b.location.list(preview)
	if err != nil {
		return pages.Update{}, err
	}
	idx := blocks.IndexOf(list, b.working.UUID)
	if idx < 0 {
		return pages.Update{}, fmt.Errorf("%w: %s in %s", ErrBlockVanished, b.working.UUID, b.location)
	}
	updated := blocks.CloneList(list)
	updated[idx] = b.working.Clone()
	return b.location.stage(updated), nil
}
