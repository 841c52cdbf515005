package checkout

import (
	"errors"
	"fmt"
)

// State of a session's payment attempt.
//
//	idle -> processing -> idle (success) | failed
//
// failed is terminal for the attempt but not for the user: a new Submit
// starts a fresh attempt.
type State string

const (
	StateIdle       State = "idle"
	StateProcessing State = "processing"
	StateFailed     State = "failed"
)

// ErrAttemptInFlight rejects a Submit while a prior attempt is still
// processing. No call reaches the order service in that case.
var ErrAttemptInFlight = errors.New("a checkout attempt is already processing")

// Form is the delivery details a customer submits with an order. It lives
// per session as a draft until an order succeeds, then resets.
type Form struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Email   string `json:"email,omitempty"`
}

// ValidationError is a local, pre-network failure. It never causes a call
// to the order service.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return "checkout validation failed: " + e.Message
}

// Validate checks the required delivery fields.
func (f Form) Validate() error {
	for _, field := range []struct{ name, value string }{
		{"name", f.Name},
		{"phone", f.Phone},
		{"address", f.Address},
	} {
		if field.value == "" {
			return &ValidationError{Message: fmt.Sprintf("%s is required", field.name)}
		}
	}
	return nil
}
