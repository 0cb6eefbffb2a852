package fleetrepo

import (
	"testing"

	"github.com/scc-freight/freight-api/internal/adapters/contracttest"
	"github.com/scc-freight/freight-api/internal/adapters/postgres/testutil"
	pguserrepo "github.com/scc-freight/freight-api/internal/adapters/postgres/userrepo"
	fleetrepoport "github.com/scc-freight/freight-api/internal/ports/out/fleetrepo"
	userrepoport "github.com/scc-freight/freight-api/internal/ports/out/userrepo"
)

func TestContract_PostgresFleetRepo(t *testing.T) {
	pool := testutil.OpenMigratedPool(t)

	contracttest.RunFleetRepo(t, func(t *testing.T) (fleetrepoport.Repository, userrepoport.Repository, func()) {
		t.Helper()
		return NewRepo(pool), pguserrepo.NewRepo(pool), nil
	})
}
