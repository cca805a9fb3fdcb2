package importer

import "errors"

var (
	// ErrInvalidURL rejects URLs that are malformed or point at
	// network ranges the importer must not reach.
	ErrInvalidURL = errors.New("invalid or disallowed URL")

	// ErrDuplicateSource reports that a recipe with this source URL
	// already exists.
	ErrDuplicateSource = errors.New("a recipe with this source URL already exists")

	// ErrNoRecipeFound reports that the page yielded no usable recipe.
	ErrNoRecipeFound = errors.New("no recipe found at URL")
)
