package uid

// StringID generates opaque string identifiers.
type StringID interface {
	// Generate returns a new string identifier.
	Generate() string
}

// NumberID generates int64 identifiers suitable for primary keys.
type NumberID interface {
	// Generate returns a new int64 identifier.
	Generate() int64
}
