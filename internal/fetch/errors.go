package fetch

import (
	"fmt"
	"strings"
)

// FetchError wraps a single strategy's failure to produce a result.
// A WAF block page is signalled as a FetchError by the browser strategy.
type FetchError struct {
	Strategy string
	Cause    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch via %s failed: %v", e.Strategy, e.Cause)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// AllStrategiesExhausted is returned by the manager when every strategy
// failed, carrying the per-strategy errors in attempt order.
type AllStrategiesExhausted struct {
	URL    string
	Errors []*FetchError
}

func (e *AllStrategiesExhausted) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Error())
	}
	return fmt.Sprintf("all fetch strategies exhausted for %s: %s", e.URL, strings.Join(parts, "; "))
}
