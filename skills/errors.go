package skills

import "errors"

var (
	// ErrEmptyTaxonomy is returned when a taxonomy has no canonical skills.
	ErrEmptyTaxonomy = errors.New("taxonomy is empty")

	// ErrInvalidCanonical is returned when a canonical key normalizes to nothing.
	ErrInvalidCanonical = errors.New("invalid canonical skill")

	// ErrDuplicateSynonym is returned when a synonym maps to more than one canonical key.
	ErrDuplicateSynonym = errors.New("synonym maps to multiple canonical skills")

	// ErrTaxonomyRequired is returned when a normalizer is built without a taxonomy.
	ErrTaxonomyRequired = errors.New("taxonomy required")
)
