package models

import (
	"fmt"
	"strings"
	"time"
)

// Order enumerates the supported result orderings.
type Order int

const (
	// OrderAdded sorts by insertion time, newest first.
	OrderAdded Order = iota
	// OrderLastPlayed sorts by last-played time, newest first, never-played last.
	OrderLastPlayed
	// OrderRandom reshuffles on every call.
	OrderRandom
)

func (o Order) String() string {
	switch o {
	case OrderLastPlayed:
		return "last_played"
	case OrderRandom:
		return "random"
	default:
		return "added"
	}
}

// ParseOrder accepts "added", "last_played" (or "last-played") and "random".
// The empty string selects [OrderAdded].
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "added":
		return OrderAdded, nil
	case "last_played", "last-played", "lastplayed":
		return OrderLastPlayed, nil
	case "random":
		return OrderRandom, nil
	default:
		return OrderAdded, fmt.Errorf("unknown order %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (o Order) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Order) UnmarshalText(b []byte) error {
	parsed, err := ParseOrder(string(b))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// QueryOptions are the filters and ranking for one selection. All filters are
// conjunctive; zero/nil values impose no constraint.
type QueryOptions struct {
	MinRating     int        // rating >= MinRating
	Limit         int        // global result cap; <= 0 means DefaultLimit
	ExcludeGenres []string   // genre NOT IN ExcludeGenres
	MinDynPSVal   *float64   // dynamic play score > MinDynPSVal, when the library has it
	AlbumLimit    int        // tracks per album; <= 0 disables the cap
	Order         Order      // ranking for both the per-album and the global stage
	AddedBefore   *time.Time // track scan timestamp < AddedBefore
}

const (
	DefaultRating = 40
	DefaultLimit  = 50
)

// DefaultQueryOptions mirrors the defaults of the selection form.
func DefaultQueryOptions() QueryOptions {
	return QueryOptions{MinRating: DefaultRating, Limit: DefaultLimit, Order: OrderAdded}
}

// EffectiveLimit returns Limit, or [DefaultLimit] when unset.
func (q QueryOptions) EffectiveLimit() int {
	if q.Limit <= 0 {
		return DefaultLimit
	}
	return q.Limit
}

// DynPSFilter reports whether a dynamic play score threshold was requested.
func (q QueryOptions) DynPSFilter() bool {
	return q.MinDynPSVal != nil && *q.MinDynPSVal != 0
}
