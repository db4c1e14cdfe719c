package editor

import "errors"

var (
	ErrUnknownLocation = errors.New("editor: unknown block location")
	ErrBlockNotFound   = errors.New("editor: block not found in preview")
	ErrNoOpenElement   = errors.New("editor: no element batch open")
	ErrBlockVanished   = errors.New("editor: committed block no longer exists in preview")
	ErrSaveInProgress  = errors.New("editor: save already in progress")
	ErrNothingToSave   = errors.New("editor: no staged changes")
	ErrPageStoreNeeded = errors.New("editor: page store required")
)
