// Package entity defines the domain models for the symbollist feature.
package entity

// Symbol is a ticker in the ingest universe.
// Code is the user-facing ticker (e.g. "7203.T", "KO").
type Symbol struct {
	Code     string
	Name     string
	Market   string
	IsActive bool
	SortKey  int
}
