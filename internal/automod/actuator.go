package automod

import "context"

// Offence describes why a message is being moderated.
type Offence struct {
	Class    OffenceClass
	Category Category
	Reason   string
	Matches  []string
}

// Actuator removes or neutralises an offending message. A message that is
// already gone must be reported as success. Implementations bound their own
// platform calls with a timeout.
type Actuator interface {
	Moderate(ctx context.Context, msg Message, offence Offence) error
}

type ActuatorFunc func(ctx context.Context, msg Message, offence Offence) error

func (f ActuatorFunc) Moderate(ctx context.Context, msg Message, offence Offence) error {
	return f(ctx, msg, offence)
}
