package domain

import (
	"errors"
	"fmt"
	"slices"
)

// FilterKind distinguishes predicates over stored contact traits from
// predicates over contact activity timestamps.
type FilterKind string

const (
	FilterTrait FilterKind = "trait"
	FilterEvent FilterKind = "event"
)

// FilterOp is a comparison operator in an audience filter.
type FilterOp string

const (
	OpEq       FilterOp = "eq"
	OpNeq      FilterOp = "neq"
	OpContains FilterOp = "contains"
	OpExists   FilterOp = "exists"
	OpBefore   FilterOp = "before"
	OpAfter    FilterOp = "after"
)

// Filter is one predicate of an audience filter. A filter list is conjunctive:
// a contact matches when every filter matches.
type Filter struct {
	Kind  FilterKind `json:"kind"`
	Field string     `json:"field"`
	Op    FilterOp   `json:"op"`
	Value string     `json:"value,omitempty"`
}

var ErrInvalidFilter = errors.New("domain: invalid filter")

// filterFields is the fixed registry of filterable fields and the operators
// each admits. Unknown field/operator pairs are rejected before any store
// access.
var filterFields = map[FilterKind]map[string][]FilterOp{
	FilterTrait: {
		"name":  {OpEq, OpNeq, OpContains, OpExists},
		"phone": {OpEq, OpNeq, OpContains, OpExists},
		"email": {OpEq, OpNeq, OpContains, OpExists},
		"tag":   {OpEq, OpNeq, OpExists},
		"optIn": {OpEq, OpNeq},
	},
	FilterEvent: {
		"lastMessageAt": {OpBefore, OpAfter, OpExists},
		"createdAt":     {OpBefore, OpAfter},
	},
}

// Validate checks the filter against the field registry.
func (f Filter) Validate() error {
	fields, ok := filterFields[f.Kind]
	if !ok {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidFilter, f.Kind)
	}

	ops, ok := fields[f.Field]
	if !ok {
		return fmt.Errorf("%w: unknown %s field %q", ErrInvalidFilter, f.Kind, f.Field)
	}

	if !slices.Contains(ops, f.Op) {
		return fmt.Errorf("%w: operator %q not allowed on %s", ErrInvalidFilter, f.Op, f.Field)
	}

	if f.Op != OpExists && f.Value == "" {
		return fmt.Errorf("%w: operator %q requires a value", ErrInvalidFilter, f.Op)
	}

	return nil
}

// ValidateFilters validates a whole filter list.
func ValidateFilters(filters []Filter) error {
	for i, f := range filters {
		if err := f.Validate(); err != nil {
			return fmt.Errorf("filter %d: %w", i, err)
		}
	}
	return nil
}
