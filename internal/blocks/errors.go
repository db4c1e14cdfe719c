package blocks

import "errors"

var (
	// ErrUnknownType indicates a block tag outside the closed set.
	ErrUnknownType = errors.New("blocks: unknown block type")
	// ErrDescriptorMissing indicates a registry without an entry for a type.
	ErrDescriptorMissing = errors.New("blocks: registry has no descriptor for type")
	// ErrDuplicateDescriptor indicates a type registered twice.
	ErrDuplicateDescriptor = errors.New("blocks: descriptor registered twice")
	// ErrMissingRequiredBlocks is the sentinel behind MissingBlocksReport.Err.
	ErrMissingRequiredBlocks = errors.New("blocks: page is missing required blocks")
)

const textCodeMissingBlocks = "MISSING_REQUIRED_BLOCKS"
