package fleets

import (
	"context"
	"errors"
	"testing"
	"time"

	memclock "github.com/scc-freight/freight-api/internal/adapters/memory/clock"
	memfleetrepo "github.com/scc-freight/freight-api/internal/adapters/memory/fleetrepo"
	memuserrepo "github.com/scc-freight/freight-api/internal/adapters/memory/userrepo"
	"github.com/scc-freight/freight-api/internal/domain"
	"github.com/scc-freight/freight-api/internal/ports/out/userrepo"
)

type fleetsFixture struct {
	svc   *Service
	users *memuserrepo.Repo
	clock *memclock.ManualClock
}

func newFleetsFixture(t *testing.T) *fleetsFixture {
	t.Helper()
	users := memuserrepo.NewRepo()
	fleets := memfleetrepo.NewRepo(users)
	clk := memclock.NewManualClock(time.Unix(1_000_000, 0).UTC())
	return &fleetsFixture{svc: NewService(fleets, users, clk), users: users, clock: clk}
}

func (fx *fleetsFixture) addUser(t *testing.T, id string, role domain.Role) domain.UserID {
	t.Helper()
	now := fx.clock.Now()
	err := fx.users.Create(context.Background(), userrepo.User{
		ID:        domain.UserID(id),
		Name:      "User " + id,
		Email:     id + "@example.com",
		Role:      role,
		Verified:  true,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("create user %s: %v", id, err)
	}
	return domain.UserID(id)
}

func expectError(t *testing.T, err error, status int, code string) {
	t.Helper()
	ae := (*Error)(nil)
	if !errors.As(err, &ae) {
		t.Fatalf("expected *fleets.Error, got %v", err)
	}
	if ae.Status != status || ae.Code != code {
		t.Fatalf("expected %d %s, got %d %s", status, code, ae.Status, ae.Code)
	}
}

func TestCreate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fx := newFleetsFixture(t)
	owner := fx.addUser(t, "owner-1", domain.RoleFleetOwner)

	f, err := fx.svc.Create(ctx, owner, CreateFleetInput{Name: "  Northline Haulage ", MCNumber: " MC-1234 "})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if f.Name != "Northline Haulage" {
		t.Errorf("name %q", f.Name)
	}
	if f.MCNumber != "MC-1234" {
		t.Errorf("mcNumber %q", f.MCNumber)
	}
	if f.Owner != owner || f.Status != domain.FleetStatusActive {
		t.Errorf("unexpected fleet: %+v", f)
	}

	// The owner's membership mirror points at the new fleet.
	u, err := fx.users.GetByID(ctx, owner)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if u.FleetID == nil || *u.FleetID != f.ID {
		t.Fatalf("owner mirror not written: %v", u.FleetID)
	}
}

func TestCreate_Validation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fx := newFleetsFixture(t)
	owner := fx.addUser(t, "owner-1", domain.RoleFleetOwner)

	_, err := fx.svc.Create(ctx, owner, CreateFleetInput{Name: "  ", MCNumber: "MC-1"})
	expectError(t, err, 400, "VALIDATION_ERROR")

	_, err = fx.svc.Create(ctx, owner, CreateFleetInput{Name: "Northline", MCNumber: " "})
	expectError(t, err, 400, "VALIDATION_ERROR")
}

func TestCreate_AlreadyInFleet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fx := newFleetsFixture(t)
	owner := fx.addUser(t, "owner-1", domain.RoleFleetOwner)

	if _, err := fx.svc.Create(ctx, owner, CreateFleetInput{Name: "First", MCNumber: "MC-1"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err := fx.svc.Create(ctx, owner, CreateFleetInput{Name: "Second", MCNumber: "MC-2"})
	expectError(t, err, 400, "ALREADY_IN_FLEET")
}

func TestCreate_NameTaken(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fx := newFleetsFixture(t)
	a := fx.addUser(t, "owner-1", domain.RoleFleetOwner)
	b := fx.addUser(t, "owner-2", domain.RoleFleetOwner)

	if _, err := fx.svc.Create(ctx, a, CreateFleetInput{Name: "Northline", MCNumber: "MC-1"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err := fx.svc.Create(ctx, b, CreateFleetInput{Name: "Northline", MCNumber: "MC-2"})
	expectError(t, err, 400, "FLEET_NAME_TAKEN")
}

func TestAddDriver(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fx := newFleetsFixture(t)
	owner := fx.addUser(t, "owner-1", domain.RoleFleetOwner)
	driver := fx.addUser(t, "driver-1", domain.RoleCarrier)

	fleet, err := fx.svc.Create(ctx, owner, CreateFleetInput{Name: "Northline", MCNumber: "MC-1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := fx.svc.AddDriver(ctx, owner, driver)
	if err != nil {
		t.Fatalf("AddDriver: %v", err)
	}
	if len(updated.Drivers) != 1 || updated.Drivers[0] != driver {
		t.Fatalf("drivers %v", updated.Drivers)
	}

	u, err := fx.users.GetByID(ctx, driver)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if u.FleetID == nil || *u.FleetID != fleet.ID {
		t.Fatalf("driver mirror not written: %v", u.FleetID)
	}

	_, err = fx.svc.AddDriver(ctx, owner, driver)
	expectError(t, err, 400, "DRIVER_ALREADY_IN_FLEET")
}

func TestAddDriver_OwnerRejected(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fx := newFleetsFixture(t)
	owner := fx.addUser(t, "owner-1", domain.RoleFleetOwner)

	fleet, err := fx.svc.Create(ctx, owner, CreateFleetInput{Name: "Northline", MCNumber: "MC-1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// The owner must not end up in their own driver set: a later removal
	// would clear the ownership mirror while they still own the fleet.
	_, err = fx.svc.AddDriver(ctx, owner, owner)
	expectError(t, err, 400, "DRIVER_ALREADY_IN_FLEET")

	got, err := fx.svc.MyFleet(ctx, owner)
	if err != nil {
		t.Fatalf("MyFleet: %v", err)
	}
	if len(got.Drivers) != 0 {
		t.Fatalf("drivers %v", got.Drivers)
	}

	// Removing the owner is a no-op that leaves the mirror intact.
	if _, err := fx.svc.RemoveDriver(ctx, owner, owner); err != nil {
		t.Fatalf("RemoveDriver: %v", err)
	}
	u, err := fx.users.GetByID(ctx, owner)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if u.FleetID == nil || *u.FleetID != fleet.ID {
		t.Fatalf("owner mirror lost: %v", u.FleetID)
	}
}

func TestAddDriver_Failures(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fx := newFleetsFixture(t)
	owner := fx.addUser(t, "owner-1", domain.RoleFleetOwner)
	other := fx.addUser(t, "owner-2", domain.RoleFleetOwner)
	driver := fx.addUser(t, "driver-1", domain.RoleCarrier)

	// Caller without a fleet.
	_, err := fx.svc.AddDriver(ctx, owner, driver)
	expectError(t, err, 404, "FLEET_NOT_FOUND")

	if _, err := fx.svc.Create(ctx, owner, CreateFleetInput{Name: "Northline", MCNumber: "MC-1"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Unknown driver.
	_, err = fx.svc.AddDriver(ctx, owner, "ghost")
	expectError(t, err, 404, "USER_NOT_FOUND")

	// Driver already belongs to another fleet.
	if _, err := fx.svc.Create(ctx, other, CreateFleetInput{Name: "Southline", MCNumber: "MC-2"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := fx.svc.AddDriver(ctx, other, driver); err != nil {
		t.Fatalf("AddDriver: %v", err)
	}
	_, err = fx.svc.AddDriver(ctx, owner, driver)
	expectError(t, err, 400, "DRIVER_IN_OTHER_FLEET")
}

func TestRemoveDriver(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fx := newFleetsFixture(t)
	owner := fx.addUser(t, "owner-1", domain.RoleFleetOwner)
	driver := fx.addUser(t, "driver-1", domain.RoleCarrier)

	if _, err := fx.svc.Create(ctx, owner, CreateFleetInput{Name: "Northline", MCNumber: "MC-1"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := fx.svc.AddDriver(ctx, owner, driver); err != nil {
		t.Fatalf("AddDriver: %v", err)
	}

	updated, err := fx.svc.RemoveDriver(ctx, owner, driver)
	if err != nil {
		t.Fatalf("RemoveDriver: %v", err)
	}
	if len(updated.Drivers) != 0 {
		t.Fatalf("drivers %v", updated.Drivers)
	}

	u, err := fx.users.GetByID(ctx, driver)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if u.FleetID != nil {
		t.Fatalf("driver mirror should be cleared, got %v", *u.FleetID)
	}

	// Removing a non-member is a no-op.
	if _, err := fx.svc.RemoveDriver(ctx, owner, driver); err != nil {
		t.Fatalf("RemoveDriver again: %v", err)
	}

	// Caller without a fleet.
	stranger := fx.addUser(t, "owner-2", domain.RoleFleetOwner)
	_, err = fx.svc.RemoveDriver(ctx, stranger, driver)
	expectError(t, err, 404, "FLEET_NOT_FOUND")
}

func TestMyFleet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fx := newFleetsFixture(t)
	owner := fx.addUser(t, "owner-1", domain.RoleFleetOwner)
	driver := fx.addUser(t, "driver-1", domain.RoleCarrier)
	outsider := fx.addUser(t, "nobody", domain.RoleCarrier)

	fleet, err := fx.svc.Create(ctx, owner, CreateFleetInput{Name: "Northline", MCNumber: "MC-1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := fx.svc.AddDriver(ctx, owner, driver); err != nil {
		t.Fatalf("AddDriver: %v", err)
	}

	for _, id := range []domain.UserID{owner, driver} {
		f, err := fx.svc.MyFleet(ctx, id)
		if err != nil {
			t.Fatalf("MyFleet(%s): %v", id, err)
		}
		if f.ID != fleet.ID {
			t.Fatalf("MyFleet(%s) = %s, want %s", id, f.ID, fleet.ID)
		}
	}

	_, err = fx.svc.MyFleet(ctx, outsider)
	expectError(t, err, 404, "FLEET_NOT_FOUND")
}

func TestList_NewestFirst(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fx := newFleetsFixture(t)
	a := fx.addUser(t, "owner-1", domain.RoleFleetOwner)
	b := fx.addUser(t, "owner-2", domain.RoleFleetOwner)

	first, err := fx.svc.Create(ctx, a, CreateFleetInput{Name: "First", MCNumber: "MC-1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	fx.clock.Advance(time.Minute)
	second, err := fx.svc.Create(ctx, b, CreateFleetInput{Name: "Second", MCNumber: "MC-2"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	fs, err := fx.svc.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(fs) != 2 || fs[0].ID != second.ID || fs[1].ID != first.ID {
		t.Fatalf("unexpected order: %+v", fs)
	}
}
