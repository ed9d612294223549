// internal/crm/store.go
// Package crm owns read access to customer profiles. The pipeline treats
// profiles as read-only snapshots fetched by customer id.
package crm

import (
	"context"
	"errors"

	"loan-orchestrator/internal/models"
)

// ErrProfileNotFound distinguishes "no such customer" from a store fault.
var ErrProfileNotFound = errors.New("customer not found")

// Store is the profile lookup contract. Updates exist only for the demo CRM
// endpoints; the pipeline itself never writes.
type Store interface {
	GetProfile(ctx context.Context, customerID string) (*models.CustomerProfile, error)
	ListIDs(ctx context.Context) ([]string, error)
	UpdateProfile(ctx context.Context, customerID string, fields map[string]string) error
}
