package lookup

import "fmt"

// NotFoundError reports a name absent from every location the lookup
// searches. It marks a misconfigured test, not a transient fault.
type NotFoundError struct {
	Name string
	What string // "parameter" or "signal"
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found in result", e.What, e.Name)
}

// NoLoggedDataError reports a result with no signal logging present at all.
type NoLoggedDataError struct{}

func (e *NoLoggedDataError) Error() string {
	return "result has no logged signal data"
}

// UnsupportedModeError reports a lookup against an equivalence result.
// An equivalence result carries two parallel result sets, and which of the
// two to search cannot be resolved generically.
type UnsupportedModeError struct {
	Op string
}

func (e *UnsupportedModeError) Error() string {
	return fmt.Sprintf("%s is not supported on an equivalence result", e.Op)
}
