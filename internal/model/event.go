package model

import (
	"sort"
	"time"
)

// EventType is the Kubernetes event type enumeration (spec §3).
type EventType string

const (
	EventNormal  EventType = "Normal"
	EventWarning EventType = "Warning"
)

// InvolvedObject identifies the resource an EventRecord is about.
type InvolvedObject struct {
	Kind      string
	Namespace string
	Name      string
	UID       string
}

// EventRecord is the typed, coalesced form of a Kubernetes event
// (spec §3): "(type, reason, message, count, firstTimestamp,
// lastTimestamp, involvedObject)". Age is derived from LastTimestamp at
// diagnosis time, never stored.
type EventRecord struct {
	Type            EventType
	Reason          string
	Message         string
	Count           int32
	FirstTimestamp  time.Time
	LastTimestamp   time.Time
	InvolvedObject  InvolvedObject
}

// Age returns how long ago LastTimestamp occurred, relative to now.
func (e EventRecord) Age(now time.Time) time.Duration {
	if e.LastTimestamp.IsZero() {
		return 0
	}
	return now.Sub(e.LastTimestamp)
}

// CoalesceKey groups events the way spec §4.3 requires: "coalesce events
// with the same (reason, involvedObject) by taking last timestamp and
// summing count."
func (e EventRecord) CoalesceKey() string {
	return e.Reason + "|" + e.InvolvedObject.Kind + "|" + e.InvolvedObject.Namespace + "|" + e.InvolvedObject.Name
}

// CoalesceEvents merges events sharing a CoalesceKey: LastTimestamp becomes
// the max across the group, FirstTimestamp the min, and Count their sum.
// Groups are returned sorted by CoalesceKey, and a tie on LastTimestamp
// keeps the lexicographically greater Message, so input order does not
// affect which groups are returned, their order, counts, timestamps or
// messages (spec §5 determinism).
func CoalesceEvents(events []EventRecord) []EventRecord {
	byKey := map[string]*EventRecord{}
	order := []string{}
	for _, e := range events {
		key := e.CoalesceKey()
		existing, ok := byKey[key]
		if !ok {
			copyE := e
			byKey[key] = &copyE
			order = append(order, key)
			continue
		}
		existing.Count += e.Count
		if e.LastTimestamp.After(existing.LastTimestamp) ||
			(e.LastTimestamp.Equal(existing.LastTimestamp) && e.Message > existing.Message) {
			existing.LastTimestamp = e.LastTimestamp
			existing.Message = e.Message
		}
		if existing.FirstTimestamp.IsZero() || (!e.FirstTimestamp.IsZero() && e.FirstTimestamp.Before(existing.FirstTimestamp)) {
			existing.FirstTimestamp = e.FirstTimestamp
		}
	}
	sort.Strings(order)
	out := make([]EventRecord, 0, len(order))
	for _, key := range order {
		out = append(out, *byKey[key])
	}
	return out
}
