package orders

import (
	"fmt"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// TransitionStatus is the single gate for order status changes. Every move
// between known statuses is allowed today; a state machine belongs here.
func TransitionStatus(from, to enums.OrderStatus) error {
	if !from.IsValid() {
		return fmt.Errorf("invalid current status %q", from)
	}
	if !to.IsValid() {
		return fmt.Errorf("invalid status %q", to)
	}
	return nil
}
