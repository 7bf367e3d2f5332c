package db

import (
	"context"
	"fmt"
)

// State is the outcome of a diagnostics check.
type State string

const (
	StateUnavailable State = "unavailable"
	StateDegraded    State = "degraded"
	StateHealthy     State = "healthy"
)

const (
	maxReasonLen      = 80
	maxCollectionList = 10
)

// Diagnostics describes store connectivity for the /test endpoint.
type Diagnostics struct {
	State       State
	Reason      string
	Name        string
	Collections []string
}

// Diagnose checks the store. It never fails: errors and panics from the
// backend are folded into a degraded result with a truncated reason.
func Diagnose(ctx context.Context, s Store) (d Diagnostics) {
	d.Collections = []string{}
	if s == nil || !s.Enabled() {
		d.State = StateUnavailable
		return d
	}

	defer func() {
		if r := recover(); r != nil {
			d.State = StateDegraded
			d.Reason = truncate(fmt.Sprint(r), maxReasonLen)
		}
	}()

	d.Name = s.Name()
	names, err := s.Collections(ctx)
	if err != nil {
		d.State = StateDegraded
		d.Reason = truncate(err.Error(), maxReasonLen)
		return d
	}
	if len(names) > maxCollectionList {
		names = names[:maxCollectionList]
	}
	if names != nil {
		d.Collections = names
	}
	d.State = StateHealthy
	return d
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
