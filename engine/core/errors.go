package core

import (
	"errors"
)

var (
	// No search path yielded a usable scene for the requested name.
	ErrMeshNotFound = errors.New("mesh not found in any search path")

	// No importer backend is registered for the file's extension.
	ErrUnsupportedFormat = errors.New("unsupported model format")

	// The importer produced a scene marked incomplete.
	ErrSceneIncomplete = errors.New("imported scene is incomplete")

	// The imported scene has no root node.
	ErrMissingRootNode = errors.New("imported scene has no root node")

	// A geometry block is internally inconsistent (mismatched vertex
	// channel lengths or a face without exactly 3 indices).
	ErrMalformedGeometry = errors.New("malformed geometry block")
)
