package editor

import (
	"fmt"

	"github.com/goliatone/go-donation-pages/internal/blocks"
	"github.com/goliatone/go-donation-pages/internal/pages"
)

// Location selects one of the two block lists of a page.
type Location string

const (
	LocationMain    Location = pages.KeyElements
	LocationSidebar Location = pages.KeySidebarElements
)

// ParseLocation validates a location name.
func ParseLocation(value string) (Location, error) {
	switch Location(value) {
	case LocationMain, LocationSidebar:
		return Location(value), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownLocation, value)
	}
}

func (l Location) list(page pages.Page) ([]blocks.Block, error) {
	switch l {
	case LocationMain:
		return page.Elements, nil
	case LocationSidebar:
		return page.SidebarElements, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownLocation, string(l))
	}
}

func (l Location) stage(list []blocks.Block) pages.Update {
	if l == LocationSidebar {
		return pages.Update{SidebarElements: pages.Set(list)}
	}
	return pages.Update{Elements: pages.Set(list)}
}
