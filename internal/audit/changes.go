package audit

// Snapshot is a presence-aware view of an entity's tracked fields. Values must
// be primitive-comparable: float64, bool, string, or nil. Decimal money fields
// and dates are converted at the snapshot-construction boundary (see the
// entity Snapshot constructors in internal/mba/models), never inside the
// comparator.
type Snapshot map[string]any

// ComputeChanges diffs two snapshots over an explicit field allow-list.
//
// A nil previous snapshot means "no previous state" and yields nil
// unconditionally: a CREATE has nothing to diff against, even though next is
// fully populated. Fields outside the allow-list are ignored even if they
// differ. A field absent on one side and present on the other counts as a
// change; absent is not coalesced with nil. When nothing differs the result
// is nil, never an empty map.
//
// Pure function: no I/O, deterministic, no failure mode for normal inputs.
func ComputeChanges(previous, next Snapshot, fields []string) Changes {
	if previous == nil {
		return nil
	}

	changes := make(Changes)
	for _, field := range fields {
		oldVal, oldPresent := previous[field]
		newVal, newPresent := next[field]

		if oldPresent != newPresent || oldVal != newVal {
			changes[field] = FieldChange{Old: oldVal, New: newVal}
		}
	}

	if len(changes) == 0 {
		return nil
	}
	return changes
}
