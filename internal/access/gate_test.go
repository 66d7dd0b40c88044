package access

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/mateovergara/sitesupply-backend/pkg/db/models"
	"github.com/mateovergara/sitesupply-backend/pkg/enums"
	pkgerrors "github.com/mateovergara/sitesupply-backend/pkg/errors"
)

type stubProjects struct {
	project   *models.Project
	findErr   error
	assigned  bool
	assignErr error
}

func (s *stubProjects) FindProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.project, nil
}

func (s *stubProjects) IsEmployeeAssigned(ctx context.Context, projectID, userID uuid.UUID) (bool, error) {
	if s.assignErr != nil {
		return false, s.assignErr
	}
	return s.assigned, nil
}

func newTestOrder(vendorID, projectID uuid.UUID) *models.PurchaseOrder {
	return &models.PurchaseOrder{
		ID:        uuid.New(),
		VendorID:  vendorID,
		ProjectID: projectID,
	}
}

func TestGateOwnerAndAdminFullAccess(t *testing.T) {
	gate, err := NewGate(&stubProjects{})
	if err != nil {
		t.Fatalf("new gate: %v", err)
	}
	order := newTestOrder(uuid.New(), uuid.New())

	for _, role := range []enums.ActorRole{enums.ActorRoleOwner, enums.ActorRoleAdmin} {
		actor := Actor{UserID: uuid.New(), Role: role}
		if err := gate.Authorize(context.Background(), order, actor); err != nil {
			t.Fatalf("expected %s access, got %v", role, err)
		}
	}
}

func TestGateVendorOwnOrdersOnly(t *testing.T) {
	gate, _ := NewGate(&stubProjects{})
	vendorID := uuid.New()
	order := newTestOrder(vendorID, uuid.New())

	own := Actor{UserID: uuid.New(), Role: enums.ActorRoleVendor, VendorID: &vendorID}
	if err := gate.Authorize(context.Background(), order, own); err != nil {
		t.Fatalf("expected own-order access, got %v", err)
	}

	otherID := uuid.New()
	other := Actor{UserID: uuid.New(), Role: enums.ActorRoleVendor, VendorID: &otherID}
	err := gate.Authorize(context.Background(), order, other)
	if !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	missing := Actor{UserID: uuid.New(), Role: enums.ActorRoleVendor}
	if err := gate.Authorize(context.Background(), order, missing); !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden for vendor without vendor id, got %v", err)
	}
}

func TestGateEmployeeNeedsAssignment(t *testing.T) {
	order := newTestOrder(uuid.New(), uuid.New())
	actor := Actor{UserID: uuid.New(), Role: enums.ActorRoleEmployee}

	gate, _ := NewGate(&stubProjects{assigned: true})
	if err := gate.Authorize(context.Background(), order, actor); err != nil {
		t.Fatalf("expected assigned employee access, got %v", err)
	}

	gate, _ = NewGate(&stubProjects{assigned: false})
	if err := gate.Authorize(context.Background(), order, actor); !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	gate, _ = NewGate(&stubProjects{assignErr: errors.New("boom")})
	if err := gate.Authorize(context.Background(), order, actor); !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden on lookup failure, got %v", err)
	}
}

func TestGateClientNeedsOwningProject(t *testing.T) {
	projectID := uuid.New()
	clientID := uuid.New()
	order := newTestOrder(uuid.New(), projectID)

	gate, _ := NewGate(&stubProjects{project: &models.Project{ID: projectID, ClientID: clientID}})
	owning := Actor{UserID: clientID, Role: enums.ActorRoleClient}
	if err := gate.Authorize(context.Background(), order, owning); err != nil {
		t.Fatalf("expected owning client access, got %v", err)
	}

	stranger := Actor{UserID: uuid.New(), Role: enums.ActorRoleClient}
	if err := gate.Authorize(context.Background(), order, stranger); !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	gate, _ = NewGate(&stubProjects{findErr: errors.New("down")})
	if err := gate.Authorize(context.Background(), order, owning); !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden on project lookup failure, got %v", err)
	}
}

func TestGateUnknownRoleDenied(t *testing.T) {
	gate, _ := NewGate(&stubProjects{})
	order := newTestOrder(uuid.New(), uuid.New())
	actor := Actor{UserID: uuid.New(), Role: enums.ActorRole("contractor")}
	if err := gate.Authorize(context.Background(), order, actor); !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestGateNilOrderAndMissingIdentity(t *testing.T) {
	gate, _ := NewGate(&stubProjects{})
	if err := gate.Authorize(context.Background(), nil, Actor{UserID: uuid.New(), Role: enums.ActorRoleOwner}); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	order := newTestOrder(uuid.New(), uuid.New())
	if err := gate.Authorize(context.Background(), order, Actor{Role: enums.ActorRoleOwner}); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}
