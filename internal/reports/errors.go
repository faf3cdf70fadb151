package reports

import (
	"errors"
	"fmt"

	"github.com/guriri-express/dispatch/internal/commission"
)

// ErrUnreportable marks an order the mapper could not turn into a view.
var ErrUnreportable = errors.New("order cannot be reported")

// OrderError wraps a settlement failure with the offending order.
type OrderError struct {
	OrderID string
	Field   string
	Err     error
}

func (e *OrderError) Error() string {
	return fmt.Sprintf("order %s: %s: %v", e.OrderID, e.Field, e.Err)
}

func (e *OrderError) Unwrap() []error {
	return []error{ErrUnreportable, e.Err}
}

// IsSettlementError reports whether err came from the fee policy or from a
// malformed money field, the two failures that skip an order in reports.
func IsSettlementError(err error) bool {
	return errors.Is(err, commission.ErrInvalidFeeTier) || errors.Is(err, commission.ErrInvalidAmount)
}
