package entities

// StoreEventKind enumerates word store changes.
type StoreEventKind string

const (
	StoreLoaded       StoreEventKind = "loaded"
	StoreFlagsChanged StoreEventKind = "flags_changed"
	StoreReset        StoreEventKind = "reset"
)

// StoreEvent notifies subscribers that entries changed.
type StoreEvent struct {
	Kind     StoreEventKind
	EntryIDs []string // affected entries, empty for whole-store events
}

// ProgressEvent notifies subscribers that the progress state changed.
type ProgressEvent struct {
	State       ProgressState
	GoalReached bool // this change made TodayCount reach the goal
}
