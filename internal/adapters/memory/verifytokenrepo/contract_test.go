package verifytokenrepo

import (
	"testing"

	"github.com/scc-freight/freight-api/internal/adapters/contracttest"
	memuserrepo "github.com/scc-freight/freight-api/internal/adapters/memory/userrepo"
	userrepoport "github.com/scc-freight/freight-api/internal/ports/out/userrepo"
	verifytokenrepoport "github.com/scc-freight/freight-api/internal/ports/out/verifytokenrepo"
)

func TestContract_VerifyTokenRepo(t *testing.T) {
	contracttest.RunVerifyTokenRepo(t,
		func(t *testing.T) (verifytokenrepoport.Repository, func()) {
			t.Helper()
			return NewRepo(), nil
		},
		func(t *testing.T) (userrepoport.Repository, func()) {
			t.Helper()
			return memuserrepo.NewRepo(), nil
		},
	)
}
