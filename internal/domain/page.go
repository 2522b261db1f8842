package domain

// DefaultListLimit is the number of slips returned by a listing when the caller
// does not supply a limit.
const DefaultListLimit = 100

// ListParams carries the listing limit from the HTTP layer to the repo layer.
type ListParams struct {
	// Limit is passed to the store verbatim. There is no enforced maximum, and
	// a negative value means "no limit" on SQLite but is rejected by Postgres.
	Limit int
}

// NewListParams builds a ListParams from an optional limit.
// A nil pointer falls back to DefaultListLimit.
func NewListParams(limit *int) ListParams {
	p := ListParams{Limit: DefaultListLimit}
	if limit != nil {
		p.Limit = *limit
	}
	return p
}
