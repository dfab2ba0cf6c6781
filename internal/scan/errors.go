package scan

import (
	"errors"
	"fmt"
)

var (
	// ErrScanUnavailable indicates the external discovery tool is missing
	// or failed hard. The current tick is skipped; monitoring continues.
	ErrScanUnavailable = errors.New("discovery tool unavailable")

	// ErrScanTimeout indicates an external call exceeded its execution
	// budget. Treated the same as ErrScanUnavailable by callers.
	ErrScanTimeout = errors.New("scan timed out")
)

// InspectionError reports a failed deep inspection of a single host. It
// never aborts the sweep that dispatched it.
type InspectionError struct {
	IP  string
	Err error
}

func (e *InspectionError) Error() string {
	return fmt.Sprintf("inspection of %s failed: %v", e.IP, e.Err)
}

func (e *InspectionError) Unwrap() error {
	return e.Err
}
