package reservation

// ===============================
// Reservation Status
// ===============================

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusRefunded  Status = "refunded"
)

var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
	StatusCompleted: {StatusRefunded},
}

func ParseStatus(s string) (Status, bool) {
	switch st := Status(s); st {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled, StatusRefunded:
		return st, true
	}
	return "", false
}

func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusRefunded
}

// Occupies reports whether a reservation in this status holds its time range.
func (s Status) Occupies() bool {
	return s == StatusPending || s == StatusConfirmed || s == StatusCompleted
}

// ===============================
// Validations
// ===============================

// CanTransition reports whether from -> to is a legal move.
func CanTransition(from, to Status) error {
	for _, next := range transitions[from] {
		if next == to {
			return nil
		}
	}
	return ErrInvalidTransition
}

// OccupyingStatuses lists the statuses that block a time range, for queries.
func OccupyingStatuses() []string {
	return []string{string(StatusPending), string(StatusConfirmed), string(StatusCompleted)}
}
