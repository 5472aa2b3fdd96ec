package ruleset

import "errors"

// ErrConfiguration is wrapped by every error caused by an unknown game variant,
// an unknown die-type key or denomination, or invalid variant content.
var ErrConfiguration = errors.New("configuration error")

// ErrInvariant is wrapped by every error that signals an engine bug or a
// corrupted input: a non-converging modifier loop, a push past the ceiling,
// negative dice counts, or a malformed roll snapshot.
var ErrInvariant = errors.New("invariant violation")
