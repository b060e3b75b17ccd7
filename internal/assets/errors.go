package assets

import "errors"

var (
	// ErrStyleNotFound: no stylesheet with that name in styles/.
	ErrStyleNotFound = errors.New("stylesheet not found")

	// ErrTemplateNotFound: no form template with that name in templates/.
	ErrTemplateNotFound = errors.New("form template not found")

	// ErrInvalidAssetName rejects names carrying separators, dots or
	// traversal, since names map straight to files.
	ErrInvalidAssetName = errors.New("invalid asset name")

	// ErrInvalidBasePath: the --assets directory is missing or unreadable.
	ErrInvalidBasePath = errors.New("invalid assets directory")

	// ErrAssetRead wraps an I/O failure on an override file that exists.
	// The resolver does not fall back to the built-in form on it.
	ErrAssetRead = errors.New("reading asset override")

	// ErrPathTraversal: an override resolves (via symlink) outside the
	// --assets directory.
	ErrPathTraversal = errors.New("asset override escapes assets directory")
)
