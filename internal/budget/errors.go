package budget

import "fmt"

// ErrExhausted is returned when consumption crosses into the reserved
// portion of the ceiling.
type ErrExhausted struct {
	Usage string
	Limit string
}

func (e ErrExhausted) Error() string {
	if e.Limit != "" {
		return fmt.Sprintf("budget exhausted: usage=%s limit=%s", e.Usage, e.Limit)
	}
	return fmt.Sprintf("budget exhausted: usage=%s", e.Usage)
}
