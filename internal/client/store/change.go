package store

import (
	"strings"
	"time"
)

// Scope is a set of record kinds touched by a committed Update.
type Scope uint8

const (
	ScopeConventions Scope = 1 << iota
	ScopeAttendees
	ScopeSyncState
	ScopeSettings
)

func (s Scope) Has(o Scope) bool { return s&o != 0 }

func (s Scope) String() string {
	var parts []string
	for _, p := range []struct {
		s    Scope
		name string
	}{
		{ScopeConventions, "conventions"},
		{ScopeAttendees, "attendees"},
		{ScopeSyncState, "sync_state"},
		{ScopeSettings, "settings"},
	} {
		if s.Has(p.s) {
			parts = append(parts, p.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ",")
}

// Change is published after every committed Update that modified data.
type Change struct {
	Scope Scope
	At    time.Time
}
