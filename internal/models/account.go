package models

import (
	"strings"
	"time"
)

// SubscriptionStatus is the locally tracked billing state of an account.
type SubscriptionStatus string

const (
	StatusUnpaid     SubscriptionStatus = "unpaid"
	StatusIncomplete SubscriptionStatus = "incomplete"
	StatusActive     SubscriptionStatus = "active"
	StatusPaused     SubscriptionStatus = "paused"
	StatusCancelled  SubscriptionStatus = "cancelled"
)

// StatusFromProcessor maps a payment-processor status string onto the local
// enum. The processor spells cancellation "canceled"; anything unrecognized
// mirrors through verbatim, since updated events copy the payload status.
func StatusFromProcessor(s string) SubscriptionStatus {
	switch strings.ToLower(s) {
	case "canceled", "cancelled":
		return StatusCancelled
	case "active":
		return StatusActive
	case "incomplete":
		return StatusIncomplete
	case "paused":
		return StatusPaused
	case "unpaid":
		return StatusUnpaid
	default:
		return SubscriptionStatus(s)
	}
}

// Account is the persisted record for one end user. Empty strings stand in
// for absent optional fields.
type Account struct {
	ID                 string             `json:"id"`
	Email              string             `json:"email"`
	SubjectID          string             `json:"subject_id"`
	HasPaid            bool               `json:"has_paid"`
	SubscriptionStatus SubscriptionStatus `json:"subscription_status"`
	SubscriptionID     string             `json:"subscription_id,omitempty"`
	SubscriptionPlan   string             `json:"subscription_plan,omitempty"`
	WalletDescriptor   string             `json:"wallet_descriptor,omitempty"`
	ClientKeys         string             `json:"client_keys,omitempty"`
	UserInformation    string             `json:"user_information,omitempty"`
	WantsDelete        bool               `json:"wants_delete"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// IsPrivate reports whether the account opted out of sharing user details.
// The provisioning flow marks privacy by prefixing the information blob
// with "null".
func (a *Account) IsPrivate() bool {
	return strings.HasPrefix(a.UserInformation, "null")
}

// BillingUpdate is the mutation a reconciled subscription event applies to
// an account. Nil pointer fields leave the stored value untouched.
type BillingUpdate struct {
	Status           SubscriptionStatus
	HasPaid          bool
	SubscriptionID   *string
	SubscriptionPlan *string
}
