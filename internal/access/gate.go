package access

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mateovergara/sitesupply-backend/pkg/db/models"
	"github.com/mateovergara/sitesupply-backend/pkg/enums"
	pkgerrors "github.com/mateovergara/sitesupply-backend/pkg/errors"
)

// Actor is the authenticated identity a request acts as.
type Actor struct {
	UserID   uuid.UUID
	Role     enums.ActorRole
	VendorID *uuid.UUID
}

type projectChecker interface {
	FindProject(ctx context.Context, id uuid.UUID) (*models.Project, error)
	IsEmployeeAssigned(ctx context.Context, projectID, userID uuid.UUID) (bool, error)
}

// Gate answers whether an actor may touch a purchase order. It is a pure
// predicate plus one project lookup; results are never cached across calls.
type Gate struct {
	projects projectChecker
}

// NewGate builds the access gate.
func NewGate(projects projectChecker) (*Gate, error) {
	if projects == nil {
		return nil, fmt.Errorf("projects repository required")
	}
	return &Gate{projects: projects}, nil
}

// Authorize returns nil when the actor may act on the order, a Forbidden
// error otherwise.
func (g *Gate) Authorize(ctx context.Context, order *models.PurchaseOrder, actor Actor) error {
	if order == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if actor.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	switch actor.Role {
	case enums.ActorRoleOwner, enums.ActorRoleAdmin:
		return nil

	case enums.ActorRoleVendor:
		if actor.VendorID != nil && *actor.VendorID == order.VendorID {
			return nil
		}
		return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to vendor")

	case enums.ActorRoleEmployee:
		assigned, err := g.projects.IsEmployeeAssigned(ctx, order.ProjectID, actor.UserID)
		if err != nil {
			return pkgerrors.New(pkgerrors.CodeForbidden, "project lookup failed")
		}
		if assigned {
			return nil
		}
		return pkgerrors.New(pkgerrors.CodeForbidden, "employee is not assigned to project")

	case enums.ActorRoleClient:
		project, err := g.projects.FindProject(ctx, order.ProjectID)
		if err != nil || project == nil {
			return pkgerrors.New(pkgerrors.CodeForbidden, "project lookup failed")
		}
		if project.ClientID == actor.UserID {
			return nil
		}
		return pkgerrors.New(pkgerrors.CodeForbidden, "project does not belong to client")

	default:
		return pkgerrors.New(pkgerrors.CodeForbidden, "role may not access orders")
	}
}
