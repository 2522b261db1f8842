package domain

// LookupItem is one client or project returned by the upstream time-tracking service.
type LookupItem struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
