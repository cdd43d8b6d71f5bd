// Package notify abstracts delivery of short messages (one-time reset
// codes) to a user's email address or phone number. The authentication
// service only depends on the Gateway interface; transports are
// pluggable.
package notify

import (
	"context"
	"errors"
	"fmt"
)

type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

type Destination struct {
	Channel Channel
	Address string
}

func EmailDestination(address string) Destination {
	return Destination{Channel: ChannelEmail, Address: address}
}

func SMSDestination(number string) Destination {
	return Destination{Channel: ChannelSMS, Address: number}
}

var ErrUnsupportedChannel = errors.New("unsupported delivery channel")

// DeliveryError wraps a transport failure. The caller surfaces it but
// any pending challenge stays valid so delivery can be retried without
// regenerating the code.
type DeliveryError struct {
	Dest Destination
	Err  error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivering to %s %s: %v", e.Dest.Channel, e.Dest.Address, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

type Gateway interface {
	// Send delivers message to dest, honoring ctx for cancellation and
	// deadline. Implementations must not block past the context
	// deadline.
	Send(ctx context.Context, dest Destination, message string) error
}
