package billing

import (
	"encoding/json"
	"errors"
	"fmt"

	stripe "github.com/stripe/stripe-go/v76"
)

// ErrMalformedEvent marks a webhook payload that cannot be attributed to an
// account. Delivery must be failed so the processor retries it.
var ErrMalformedEvent = errors.New("malformed webhook event")

// EventKind identifies the recognized subscription lifecycle events.
type EventKind string

const (
	EventCreated   EventKind = "created"
	EventUpdated   EventKind = "updated"
	EventDeleted   EventKind = "deleted"
	EventPaused    EventKind = "paused"
	EventResumed   EventKind = "resumed"
	EventUnhandled EventKind = "unhandled"
)

// Event is the internal, typed form of a processor webhook payload.
// AccountID comes from subscription metadata: the checkout gateway stamps
// the owning account's id there at subscription-creation time, and that
// linkage is the only way events are attributed to accounts.
type Event struct {
	Kind           EventKind
	Type           string // raw processor event type, kept for logging
	SubscriptionID string
	Status         string // processor-reported subscription status
	AccountID      string
	Plan           string // processor product identifier, may be empty
}

// Normalize maps a raw processor event onto the closed Event union.
// Unrecognized types collapse to EventUnhandled with no further semantics;
// recognized types with missing linkage fail with ErrMalformedEvent.
func Normalize(event stripe.Event) (Event, error) {
	var kind EventKind
	switch event.Type {
	case "customer.subscription.created":
		kind = EventCreated
	case "customer.subscription.updated":
		kind = EventUpdated
	case "customer.subscription.deleted":
		kind = EventDeleted
	case "customer.subscription.paused":
		kind = EventPaused
	case "customer.subscription.resumed":
		kind = EventResumed
	default:
		return Event{Kind: EventUnhandled, Type: string(event.Type)}, nil
	}

	if event.Data == nil {
		return Event{}, fmt.Errorf("%w: missing payload", ErrMalformedEvent)
	}

	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if sub.ID == "" {
		return Event{}, fmt.Errorf("%w: missing subscription id", ErrMalformedEvent)
	}
	accountID := sub.Metadata["account_id"]
	if accountID == "" {
		return Event{}, fmt.Errorf("%w: missing account linkage for subscription %s", ErrMalformedEvent, sub.ID)
	}

	return Event{
		Kind:           kind,
		Type:           string(event.Type),
		SubscriptionID: sub.ID,
		Status:         string(sub.Status),
		AccountID:      accountID,
		Plan:           planFromItems(&sub),
	}, nil
}

func planFromItems(sub *stripe.Subscription) string {
	if sub.Items == nil || len(sub.Items.Data) == 0 {
		return ""
	}
	item := sub.Items.Data[0]
	if item.Price == nil || item.Price.Product == nil {
		return ""
	}
	return item.Price.Product.ID
}
