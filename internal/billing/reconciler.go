package billing

import (
	"context"
	"fmt"

	"github.com/BiggBoiLeo/Rothbard-Backend/internal/logger"
	"github.com/BiggBoiLeo/Rothbard-Backend/internal/models"
	"github.com/BiggBoiLeo/Rothbard-Backend/internal/store"
)

// Reconciler applies normalized subscription events to account billing
// state. Applications are idempotent: replaying an event computes the same
// state it already wrote. Events carry no sequence token, so out-of-order
// delivery can leave local state behind the processor's truth; transitions
// are logged so operators can spot that.
type Reconciler struct {
	store store.Store
}

// NewReconciler creates a reconciler backed by the given account store
func NewReconciler(st store.Store) *Reconciler {
	return &Reconciler{store: st}
}

// Apply runs one event through the state machine. Unhandled kinds and
// events for unknown accounts are acknowledged as no-ops; only a store
// failure is an error, which callers must surface as failed delivery.
func (r *Reconciler) Apply(ctx context.Context, ev Event) error {
	if ev.Kind == EventUnhandled {
		logger.WithContext(ctx).Info("Ignoring unhandled webhook event", "type", ev.Type)
		return nil
	}

	acct, err := r.store.GetByID(ctx, ev.AccountID)
	if err != nil {
		return fmt.Errorf("load account %s: %w", ev.AccountID, err)
	}
	if acct == nil {
		// Processor-side subscriptions may reference accounts that were
		// never fully provisioned; acknowledge to stop redelivery.
		logger.WithContext(ctx).Warn("Webhook event references unknown account",
			"account_id", ev.AccountID,
			"kind", string(ev.Kind),
			"subscription_id", ev.SubscriptionID,
		)
		return nil
	}

	up := transition(acct, ev)
	if err := r.store.UpdateBilling(ctx, acct.ID, up); err != nil {
		return fmt.Errorf("persist billing state for %s: %w", acct.ID, err)
	}

	logger.WithContext(ctx).Info("Applied subscription event",
		"account_id", acct.ID,
		"kind", string(ev.Kind),
		"from_status", string(acct.SubscriptionStatus),
		"to_status", string(up.Status),
		"has_paid", up.HasPaid,
	)
	return nil
}

// transition computes the billing update for one event against the current
// account state. hasPaid is true only in the active state after every
// transition.
func transition(acct *models.Account, ev Event) models.BillingUpdate {
	up := models.BillingUpdate{
		Status:  acct.SubscriptionStatus,
		HasPaid: acct.HasPaid,
	}

	switch ev.Kind {
	case EventCreated:
		up.SubscriptionID = &ev.SubscriptionID
		st := models.StatusFromProcessor(ev.Status)
		up.Status = st
		switch st {
		case models.StatusActive:
			up.HasPaid = true
			if ev.Plan != "" {
				up.SubscriptionPlan = &ev.Plan
			}
		case models.StatusIncomplete:
			// Payment not settled yet; plan assignment waits for a
			// later event.
			up.HasPaid = false
		default:
			up.HasPaid = false
			if ev.Plan != "" {
				up.SubscriptionPlan = &ev.Plan
			}
		}
	case EventDeleted:
		// Subscription id is retained for audit; only status flips.
		up.Status = models.StatusCancelled
		up.HasPaid = false
	case EventPaused:
		up.Status = models.StatusPaused
		up.HasPaid = false
	case EventResumed:
		up.Status = models.StatusActive
		up.HasPaid = true
	case EventUpdated:
		st := models.StatusFromProcessor(ev.Status)
		up.Status = st
		up.HasPaid = st == models.StatusActive
	}

	return up
}
