package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/BiggBoiLeo/Rothbard-Backend/internal/models"
)

// InMemoryStore implements Store using in-memory storage
type InMemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]models.Account // keyed by account id
}

// NewInMemoryStore creates a new in-memory store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		accounts: make(map[string]models.Account),
	}
}

// CreateAccount stores a new account, or returns the existing one for an
// already-provisioned subject
func (s *InMemoryStore) CreateAccount(ctx context.Context, email, subjectID string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.accounts {
		if a.SubjectID == subjectID {
			existing := a
			return &existing, nil
		}
	}

	now := time.Now().UTC()
	a := models.Account{
		ID:                 uuid.NewString(),
		Email:              email,
		SubjectID:          subjectID,
		HasPaid:            false,
		SubscriptionStatus: models.StatusUnpaid,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	s.accounts[a.ID] = a
	return &a, nil
}

// GetByID retrieves an account by primary key
func (s *InMemoryStore) GetByID(ctx context.Context, id string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if a, exists := s.accounts[id]; exists {
		return &a, nil
	}
	return nil, nil
}

// GetBySubject retrieves an account by identity subject id
func (s *InMemoryStore) GetBySubject(ctx context.Context, subjectID string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.accounts {
		if a.SubjectID == subjectID {
			found := a
			return &found, nil
		}
	}
	return nil, nil
}

// GetByEmail retrieves an account by email
func (s *InMemoryStore) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.accounts {
		if a.Email == email {
			found := a
			return &found, nil
		}
	}
	return nil, nil
}

// UpdateVault overwrites the client key and user information blobs
func (s *InMemoryStore) UpdateVault(ctx context.Context, subjectID, clientKeys, userInfo string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, a := range s.accounts {
		if a.SubjectID == subjectID {
			a.ClientKeys = clientKeys
			a.UserInformation = userInfo
			a.UpdatedAt = time.Now().UTC()
			s.accounts[id] = a
			return nil
		}
	}
	return nil
}

// SetHasPaid overwrites the paid projection flag
func (s *InMemoryStore) SetHasPaid(ctx context.Context, subjectID string, hasPaid bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, a := range s.accounts {
		if a.SubjectID == subjectID {
			a.HasPaid = hasPaid
			a.UpdatedAt = time.Now().UTC()
			s.accounts[id] = a
			return nil
		}
	}
	return nil
}

// MarkForDeletion records the soft-delete intent flag
func (s *InMemoryStore) MarkForDeletion(ctx context.Context, subjectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, a := range s.accounts {
		if a.SubjectID == subjectID {
			a.WantsDelete = true
			a.UpdatedAt = time.Now().UTC()
			s.accounts[id] = a
			return nil
		}
	}
	return nil
}

// UpdateBilling applies a reconciled billing state to an account
func (s *InMemoryStore) UpdateBilling(ctx context.Context, accountID string, up models.BillingUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, exists := s.accounts[accountID]
	if !exists {
		return nil
	}
	a.SubscriptionStatus = up.Status
	a.HasPaid = up.HasPaid
	if up.SubscriptionID != nil {
		a.SubscriptionID = *up.SubscriptionID
	}
	if up.SubscriptionPlan != nil {
		a.SubscriptionPlan = *up.SubscriptionPlan
	}
	a.UpdatedAt = time.Now().UTC()
	s.accounts[accountID] = a
	return nil
}

// Health always returns nil for in-memory store
func (s *InMemoryStore) Health(ctx context.Context) error {
	return nil
}

// SetWalletDescriptor seeds a wallet descriptor; the descriptor is written
// by the external vault build process, so only tests use this.
func (s *InMemoryStore) SetWalletDescriptor(subjectID, descriptor string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, a := range s.accounts {
		if a.SubjectID == subjectID {
			a.WalletDescriptor = descriptor
			s.accounts[id] = a
			return
		}
	}
}
