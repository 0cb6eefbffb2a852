// Package contracttest holds behavioral suites run against every
// implementation of the outbound repository ports, so the memory and
// postgres adapters cannot drift apart.
package contracttest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/scc-freight/freight-api/internal/domain"
	fleetrepoport "github.com/scc-freight/freight-api/internal/ports/out/fleetrepo"
	loadrepoport "github.com/scc-freight/freight-api/internal/ports/out/loadrepo"
	userrepoport "github.com/scc-freight/freight-api/internal/ports/out/userrepo"
	verifytokenrepoport "github.com/scc-freight/freight-api/internal/ports/out/verifytokenrepo"
)

type CleanupFunc = func()

type UserRepoFactory func(t *testing.T) (userrepoport.Repository, CleanupFunc)

// FleetRepoFactory returns a fleet repo together with the user repo it
// mirrors memberships into, so the suite can observe the dual write.
type FleetRepoFactory func(t *testing.T) (fleetrepoport.Repository, userrepoport.Repository, CleanupFunc)

type LoadRepoFactory func(t *testing.T) (loadrepoport.Repository, CleanupFunc)

type VerifyTokenRepoFactory func(t *testing.T) (verifytokenrepoport.Repository, CleanupFunc)

func newUser(id domain.UserID, email string, role domain.Role, at time.Time) userrepoport.User {
	return userrepoport.User{
		ID:             id,
		Name:           "Test User",
		Email:          email,
		PasswordDigest: "$2a$10$abcdefghijklmnopqrstuv",
		Role:           role,
		Verified:       true,
		Active:         true,
		CreatedAt:      at,
		UpdatedAt:      at,
	}
}

func RunUserRepo(t *testing.T, newRepo UserRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	now := time.Unix(1000, 0).UTC()
	aID := domain.UserID(uuid.NewString())
	if err := repo.Create(ctx, newUser(aID, "alice@example.com", domain.RoleShipper, now)); err != nil {
		t.Fatalf("Create a: %v", err)
	}

	got, err := repo.GetByID(ctx, aID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Email != "alice@example.com" || got.Role != domain.RoleShipper {
		t.Fatalf("unexpected user: %+v", got)
	}

	// Email lookup is case-insensitive.
	if _, err := repo.GetByEmail(ctx, "ALICE@example.com"); err != nil {
		t.Fatalf("GetByEmail case-insensitive: %v", err)
	}

	// Email uniqueness.
	err = repo.Create(ctx, newUser(domain.UserID(uuid.NewString()), "alice@example.com", domain.RoleCarrier, now))
	if !errors.Is(err, userrepoport.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	// List is newest first.
	bID := domain.UserID(uuid.NewString())
	if err := repo.Create(ctx, newUser(bID, "bob@example.com", domain.RoleCarrier, now.Add(time.Minute))); err != nil {
		t.Fatalf("Create b: %v", err)
	}
	us, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(us) != 2 || us[0].ID != bID {
		t.Fatalf("expected newest-first ordering, got %+v", us)
	}

	// Field setters.
	if err := repo.SetVerified(ctx, aID, false); err != nil {
		t.Fatalf("SetVerified: %v", err)
	}
	if err := repo.SetRole(ctx, aID, domain.RoleDispatcher); err != nil {
		t.Fatalf("SetRole: %v", err)
	}
	got, err = repo.GetByID(ctx, aID)
	if err != nil {
		t.Fatalf("GetByID after setters: %v", err)
	}
	if got.Verified || got.Role != domain.RoleDispatcher {
		t.Fatalf("setters not applied: %+v", got)
	}

	// Update round-trips profile fields.
	company := "Acme Freight"
	got.Profile.CompanyName = &company
	got.UpdatedAt = now.Add(2 * time.Minute)
	if err := repo.Update(ctx, got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err = repo.GetByID(ctx, aID)
	if err != nil {
		t.Fatalf("GetByID after update: %v", err)
	}
	if got.Profile.CompanyName == nil || *got.Profile.CompanyName != company {
		t.Fatalf("profile not persisted: %+v", got.Profile)
	}

	// Unknown IDs.
	if _, err := repo.GetByID(ctx, domain.UserID(uuid.NewString())); !errors.Is(err, userrepoport.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.SetRole(ctx, domain.UserID(uuid.NewString()), domain.RoleAdmin); !errors.Is(err, userrepoport.ErrNotFound) {
		t.Fatalf("expected ErrNotFound from SetRole, got %v", err)
	}
}

func RunFleetRepo(t *testing.T, newRepo FleetRepoFactory) {
	t.Helper()
	ctx := context.Background()

	fleetsRepo, usersRepo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	now := time.Unix(2000, 0).UTC()
	owner := domain.UserID(uuid.NewString())
	driver := domain.UserID(uuid.NewString())
	outsider := domain.UserID(uuid.NewString())
	for i, id := range []domain.UserID{owner, driver, outsider} {
		email := []string{"owner@example.com", "driver@example.com", "outsider@example.com"}[i]
		if err := usersRepo.Create(ctx, newUser(id, email, domain.RoleCarrier, now)); err != nil {
			t.Fatalf("Create user: %v", err)
		}
	}

	fleetID := domain.FleetID(uuid.NewString())
	if err := fleetsRepo.Create(ctx, fleetrepoport.Fleet{
		ID:        fleetID,
		Name:      "Northern Haulage",
		MCNumber:  "MC-12345",
		Status:    domain.FleetStatusActive,
		Owner:     owner,
		Drivers:   []domain.UserID{},
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		t.Fatalf("Create fleet: %v", err)
	}

	// Create mirrors ownership onto the user record.
	u, err := usersRepo.GetByID(ctx, owner)
	if err != nil {
		t.Fatalf("GetByID owner: %v", err)
	}
	if u.FleetID == nil || *u.FleetID != fleetID {
		t.Fatalf("owner mirror not set: %+v", u.FleetID)
	}

	// Name uniqueness.
	err = fleetsRepo.Create(ctx, fleetrepoport.Fleet{
		ID:        domain.FleetID(uuid.NewString()),
		Name:      "Northern Haulage",
		MCNumber:  "MC-99999",
		Status:    domain.FleetStatusActive,
		Owner:     outsider,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if !errors.Is(err, fleetrepoport.ErrNameTaken) {
		t.Fatalf("expected ErrNameTaken, got %v", err)
	}

	// The owner is a member already. Adding them as a driver fails, and
	// removing them afterwards must not clear their ownership mirror.
	if _, err := fleetsRepo.AddDriver(ctx, fleetID, owner); !errors.Is(err, fleetrepoport.ErrDriverAlreadyInFleet) {
		t.Fatalf("expected ErrDriverAlreadyInFleet for owner, got %v", err)
	}
	if _, err := fleetsRepo.RemoveDriver(ctx, fleetID, owner); err != nil {
		t.Fatalf("RemoveDriver owner: %v", err)
	}
	u, err = usersRepo.GetByID(ctx, owner)
	if err != nil {
		t.Fatalf("GetByID owner: %v", err)
	}
	if u.FleetID == nil || *u.FleetID != fleetID {
		t.Fatalf("owner mirror lost: %+v", u.FleetID)
	}

	// AddDriver sets the mirror atomically.
	f, err := fleetsRepo.AddDriver(ctx, fleetID, driver)
	if err != nil {
		t.Fatalf("AddDriver: %v", err)
	}
	if len(f.Drivers) != 1 || f.Drivers[0] != driver {
		t.Fatalf("driver set wrong: %+v", f.Drivers)
	}
	u, err = usersRepo.GetByID(ctx, driver)
	if err != nil {
		t.Fatalf("GetByID driver: %v", err)
	}
	if u.FleetID == nil || *u.FleetID != fleetID {
		t.Fatalf("driver mirror not set: %+v", u.FleetID)
	}

	// Duplicate add fails without disturbing the set.
	if _, err := fleetsRepo.AddDriver(ctx, fleetID, driver); !errors.Is(err, fleetrepoport.ErrDriverAlreadyInFleet) {
		t.Fatalf("expected ErrDriverAlreadyInFleet, got %v", err)
	}
	f, err = fleetsRepo.GetByID(ctx, fleetID)
	if err != nil {
		t.Fatalf("GetByID fleet: %v", err)
	}
	if len(f.Drivers) != 1 {
		t.Fatalf("duplicate add mutated driver set: %+v", f.Drivers)
	}

	// A member of one fleet cannot be absorbed into another.
	otherFleet := domain.FleetID(uuid.NewString())
	if err := fleetsRepo.Create(ctx, fleetrepoport.Fleet{
		ID:        otherFleet,
		Name:      "Southern Haulage",
		MCNumber:  "MC-54321",
		Status:    domain.FleetStatusActive,
		Owner:     outsider,
		CreatedAt: now.Add(time.Minute),
		UpdatedAt: now.Add(time.Minute),
	}); err != nil {
		t.Fatalf("Create other fleet: %v", err)
	}
	if _, err := fleetsRepo.AddDriver(ctx, otherFleet, driver); !errors.Is(err, fleetrepoport.ErrDriverInOtherFleet) {
		t.Fatalf("expected ErrDriverInOtherFleet, got %v", err)
	}

	// Membership lookups.
	if f, err := fleetsRepo.GetByOwner(ctx, owner); err != nil || f.ID != fleetID {
		t.Fatalf("GetByOwner: %v %+v", err, f)
	}
	if f, err := fleetsRepo.GetByMember(ctx, driver); err != nil || f.ID != fleetID {
		t.Fatalf("GetByMember driver: %v %+v", err, f)
	}
	if f, err := fleetsRepo.GetByMember(ctx, owner); err != nil || f.ID != fleetID {
		t.Fatalf("GetByMember owner: %v %+v", err, f)
	}

	// List is newest first.
	fs, err := fleetsRepo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(fs) != 2 || fs[0].ID != otherFleet {
		t.Fatalf("expected newest-first ordering, got %+v", fs)
	}

	// RemoveDriver clears the mirror; removing again is a no-op.
	if _, err := fleetsRepo.RemoveDriver(ctx, fleetID, driver); err != nil {
		t.Fatalf("RemoveDriver: %v", err)
	}
	u, err = usersRepo.GetByID(ctx, driver)
	if err != nil {
		t.Fatalf("GetByID driver after remove: %v", err)
	}
	if u.FleetID != nil {
		t.Fatalf("driver mirror not cleared: %+v", u.FleetID)
	}
	if _, err := fleetsRepo.RemoveDriver(ctx, fleetID, driver); err != nil {
		t.Fatalf("RemoveDriver idempotent: %v", err)
	}

	if _, err := fleetsRepo.GetByMember(ctx, driver); !errors.Is(err, fleetrepoport.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after removal, got %v", err)
	}
}

func RunLoadRepo(t *testing.T, newRepo LoadRepoFactory, newUsers UserRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}
	users, ucleanup := newUsers(t)
	if ucleanup != nil {
		t.Cleanup(ucleanup)
	}

	now := time.Unix(3000, 0).UTC()
	shipper := domain.UserID(uuid.NewString())
	carrier := domain.UserID(uuid.NewString())
	if err := users.Create(ctx, newUser(shipper, "shipper@example.com", domain.RoleShipper, now)); err != nil {
		t.Fatalf("Create shipper: %v", err)
	}
	if err := users.Create(ctx, newUser(carrier, "carrier@example.com", domain.RoleCarrier, now)); err != nil {
		t.Fatalf("Create carrier: %v", err)
	}

	loadID := domain.LoadID(uuid.NewString())
	if err := repo.Create(ctx, loadrepoport.Load{
		ID:          loadID,
		Shipper:     shipper,
		Origin:      "Oakland, CA",
		Destination: "Reno, NV",
		CargoType:   "produce",
		Weight:      12000,
		Price:       1850,
		PickupDate:  now.Add(48 * time.Hour),
		Status:      domain.LoadStatusPosted,
		CreatedAt:   now,
		UpdatedAt:   now,
	}); err != nil {
		t.Fatalf("Create load: %v", err)
	}

	// Legal transition records the carrier.
	l, err := repo.UpdateStatus(ctx, loadID, domain.LoadStatusAssigned, &carrier, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("UpdateStatus assign: %v", err)
	}
	if l.Status != domain.LoadStatusAssigned || l.Carrier == nil || *l.Carrier != carrier {
		t.Fatalf("assignment not applied: %+v", l)
	}

	// Illegal edge fails and leaves the load unchanged.
	if _, err := repo.UpdateStatus(ctx, loadID, domain.LoadStatusDelivered, nil, now.Add(2*time.Hour)); !errors.Is(err, loadrepoport.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	l, err = repo.GetByID(ctx, loadID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if l.Status != domain.LoadStatusAssigned {
		t.Fatalf("illegal transition mutated load: %+v", l)
	}

	// Walk to a terminal state; nothing leaves it.
	if _, err := repo.UpdateStatus(ctx, loadID, domain.LoadStatusInTransit, nil, now.Add(3*time.Hour)); err != nil {
		t.Fatalf("UpdateStatus in_transit: %v", err)
	}
	if _, err := repo.UpdateStatus(ctx, loadID, domain.LoadStatusDelivered, nil, now.Add(4*time.Hour)); err != nil {
		t.Fatalf("UpdateStatus delivered: %v", err)
	}
	if _, err := repo.UpdateStatus(ctx, loadID, domain.LoadStatusCancelled, nil, now.Add(5*time.Hour)); !errors.Is(err, loadrepoport.ErrInvalidTransition) {
		t.Fatalf("expected terminal state to reject transition, got %v", err)
	}

	// Listing: second load, newest first, shipper scoping.
	otherID := domain.LoadID(uuid.NewString())
	if err := repo.Create(ctx, loadrepoport.Load{
		ID:          otherID,
		Shipper:     shipper,
		Origin:      "Fresno, CA",
		Destination: "Portland, OR",
		CargoType:   "machinery",
		Weight:      22000,
		Price:       3200,
		PickupDate:  now.Add(72 * time.Hour),
		Status:      domain.LoadStatusPosted,
		CreatedAt:   now.Add(time.Minute),
		UpdatedAt:   now.Add(time.Minute),
	}); err != nil {
		t.Fatalf("Create other load: %v", err)
	}
	ls, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(ls) != 2 || ls[0].ID != otherID {
		t.Fatalf("expected newest-first ordering, got %+v", ls)
	}
	mine, err := repo.ListByShipper(ctx, shipper)
	if err != nil {
		t.Fatalf("ListByShipper: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("expected 2 loads for shipper, got %d", len(mine))
	}
	none, err := repo.ListByShipper(ctx, carrier)
	if err != nil {
		t.Fatalf("ListByShipper none: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no loads for carrier, got %d", len(none))
	}

	// Delete.
	if err := repo.Delete(ctx, otherID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, otherID); !errors.Is(err, loadrepoport.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on double delete, got %v", err)
	}
}

func RunVerifyTokenRepo(t *testing.T, newRepo VerifyTokenRepoFactory, newUsers UserRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}
	users, ucleanup := newUsers(t)
	if ucleanup != nil {
		t.Cleanup(ucleanup)
	}

	now := time.Unix(4000, 0).UTC()
	userID := domain.UserID(uuid.NewString())
	if err := users.Create(ctx, newUser(userID, "verify@example.com", domain.RoleCarrier, now)); err != nil {
		t.Fatalf("Create user: %v", err)
	}

	if err := repo.Create(ctx, verifytokenrepoport.Token{
		Token:     "tok-live",
		UserID:    userID,
		ExpiresAt: now.Add(time.Hour),
		CreatedAt: now,
	}); err != nil {
		t.Fatalf("Create token: %v", err)
	}

	got, err := repo.Consume(ctx, "tok-live", now.Add(time.Minute))
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if got.UserID != userID {
		t.Fatalf("unexpected token: %+v", got)
	}

	// Single-use: a second redemption looks like an unknown token.
	if _, err := repo.Consume(ctx, "tok-live", now.Add(2*time.Minute)); !errors.Is(err, verifytokenrepoport.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on reuse, got %v", err)
	}

	// Expired tokens are not redeemable, and the attempt burns them.
	if err := repo.Create(ctx, verifytokenrepoport.Token{
		Token:     "tok-stale",
		UserID:    userID,
		ExpiresAt: now.Add(time.Hour),
		CreatedAt: now,
	}); err != nil {
		t.Fatalf("Create stale token: %v", err)
	}
	if _, err := repo.Consume(ctx, "tok-stale", now.Add(2*time.Hour)); !errors.Is(err, verifytokenrepoport.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on expired token, got %v", err)
	}

	if _, err := repo.Consume(ctx, "tok-never", now); !errors.Is(err, verifytokenrepoport.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on unknown token, got %v", err)
	}
}
