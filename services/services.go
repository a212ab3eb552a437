// Package services implements the donation platform's business rules: the
// unified donation history pipeline and its statistics, organization totals,
// checkout of cash and physical donations, and subscription management.
package services

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/phillip/donation-hub-go/models"
	"github.com/phillip/donation-hub-go/store"
)

var (
	ErrUnauthenticated   = errors.New("authentication required")
	ErrForbidden         = errors.New("access denied")
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrPaymentFailed     = errors.New("payment failed")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Viewer is the authenticated caller as established by the auth middleware.
type Viewer struct {
	UserID primitive.ObjectID
	Email  string
	Role   string
}

func (v *Viewer) IsAdmin() bool {
	return v != nil && v.Role == models.RoleAdmin
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// CanManageOrganization returns nil when viewer administers the organization.
func CanManageOrganization(ctx context.Context, orgs store.OrganizationStore, viewer *Viewer, orgID primitive.ObjectID) (*models.Organization, error) {
	if viewer == nil {
		return nil, ErrUnauthenticated
	}
	org, err := orgs.GetOrganization(ctx, orgID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load organization: %w", err)
	}
	if !viewer.IsAdmin() && org.OwnerID != viewer.UserID {
		return nil, ErrForbidden
	}
	return org, nil
}
