package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	memclock "github.com/scc-freight/freight-api/internal/adapters/memory/clock"
	memfleetrepo "github.com/scc-freight/freight-api/internal/adapters/memory/fleetrepo"
	memloadrepo "github.com/scc-freight/freight-api/internal/adapters/memory/loadrepo"
	memmailer "github.com/scc-freight/freight-api/internal/adapters/memory/mailer"
	memuserrepo "github.com/scc-freight/freight-api/internal/adapters/memory/userrepo"
	memverifytokenrepo "github.com/scc-freight/freight-api/internal/adapters/memory/verifytokenrepo"
	"github.com/scc-freight/freight-api/internal/app/accounts"
	"github.com/scc-freight/freight-api/internal/app/fleets"
	"github.com/scc-freight/freight-api/internal/app/loads"
	"github.com/scc-freight/freight-api/internal/platform/auth/token"
)

type apiFixture struct {
	handler http.Handler
	users   *memuserrepo.Repo
	mail    *memmailer.Recorder
	signer  *token.Signer
	clock   *memclock.ManualClock
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	log := zerolog.Nop()
	users := memuserrepo.NewRepo()
	fleetsRepo := memfleetrepo.NewRepo(users)
	loadsRepo := memloadrepo.NewRepo()
	tokens := memverifytokenrepo.NewRepo()
	mail := memmailer.NewRecorder()
	clk := memclock.NewManualClock(time.Unix(1_000_000, 0).UTC())
	signer := token.New(token.Config{Secret: "test-secret", Issuer: "freight-api", TTL: time.Hour})

	accountsSvc := accounts.NewService(users, tokens, mail, signer, clk, log, "http://localhost:8080", time.Hour)
	fleetsSvc := fleets.NewService(fleetsRepo, users, clk)
	loadsSvc := loads.NewService(loadsRepo, users, clk)

	srv := NewServer(accountsSvc, fleetsSvc, loadsSvc, log)
	return &apiFixture{
		handler: NewRouter(srv, signer, log),
		users:   users,
		mail:    mail,
		signer:  signer,
		clock:   clk,
	}
}

func (fx *apiFixture) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return out
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), "body: %s", rec.Body.String())
	return body.Error.Code
}

// verifyLinkToken digs the one-time token out of the most recent
// verification mail.
func (fx *apiFixture) verifyLinkToken(t *testing.T) string {
	t.Helper()
	sent := fx.mail.Sent()
	require.NotEmpty(t, sent)
	body := sent[len(sent)-1].Body
	const marker = "/api/verify/"
	i := strings.Index(body, marker)
	require.GreaterOrEqual(t, i, 0, "no verify link in mail body:\n%s", body)
	tok := body[i+len(marker):]
	if j := strings.IndexAny(tok, " \t\r\n"); j >= 0 {
		tok = tok[:j]
	}
	return tok
}

// signup registers, verifies, and logs in one user, returning the bearer
// token and user ID.
func (fx *apiFixture) signup(t *testing.T, name, email, role string) (bearer string, userID string) {
	t.Helper()
	rec := fx.do(t, http.MethodPost, "/api/users", "", map[string]any{
		"name": name, "email": email, "password": "hunter22", "role": role,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = fx.do(t, http.MethodGet, "/api/verify/"+fx.verifyLinkToken(t), "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = fx.do(t, http.MethodPost, "/api/login", "", map[string]any{
		"email": email, "password": "hunter22",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	bearer, _ = body["token"].(string)
	require.NotEmpty(t, bearer)
	user, _ := body["user"].(map[string]any)
	userID, _ = user["id"].(string)
	require.NotEmpty(t, userID)
	return bearer, userID
}

func TestAPI_RegisterVerifyLogin(t *testing.T) {
	t.Parallel()
	fx := newAPIFixture(t)

	rec := fx.do(t, http.MethodPost, "/api/users", "", map[string]any{
		"name": "Alice", "email": "alice@example.com", "password": "hunter22",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	user := decodeBody(t, rec)["user"].(map[string]any)
	require.Equal(t, false, user["verified"])
	require.Equal(t, "carrier", user["role"])

	// Login is blocked until the address is verified.
	rec = fx.do(t, http.MethodPost, "/api/login", "", map[string]any{
		"email": "alice@example.com", "password": "hunter22",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "NOT_VERIFIED", errorCode(t, rec))

	verifyTok := fx.verifyLinkToken(t)
	rec = fx.do(t, http.MethodGet, "/api/verify/"+verifyTok, "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// The link is single-use.
	rec = fx.do(t, http.MethodGet, "/api/verify/"+verifyTok, "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "VERIFY_TOKEN_INVALID", errorCode(t, rec))

	rec = fx.do(t, http.MethodPost, "/api/login", "", map[string]any{
		"email": "alice@example.com", "password": "hunter22",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	bearer := decodeBody(t, rec)["token"].(string)

	rec = fx.do(t, http.MethodGet, "/api/account/me", bearer, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	me := decodeBody(t, rec)["user"].(map[string]any)
	require.Equal(t, "alice@example.com", me["email"])
}

func TestAPI_LoadLifecycle(t *testing.T) {
	t.Parallel()
	fx := newAPIFixture(t)

	shipper, _ := fx.signup(t, "Ship Er", "shipper@example.com", "shipper")
	dispatcher, _ := fx.signup(t, "Dis Patcher", "dispatcher@example.com", "dispatcher")
	_, carrierID := fx.signup(t, "Car Rier", "carrier@example.com", "carrier")

	rec := fx.do(t, http.MethodPost, "/api/loads", shipper, map[string]any{
		"origin":      "Chicago, IL",
		"destination": "Dallas, TX",
		"cargoType":   "dry van",
		"weight":      18000,
		"price":       2400,
		"pickupDate":  "2026-09-10",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	load := decodeBody(t, rec)["load"].(map[string]any)
	loadID := load["id"].(string)
	require.Equal(t, "posted", load["status"])

	// The board is visible to dispatchers, not to shippers.
	rec = fx.do(t, http.MethodGet, "/api/loads", dispatcher, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decodeBody(t, rec)["loads"], 1)

	rec = fx.do(t, http.MethodGet, "/api/loads", shipper, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "FORBIDDEN", errorCode(t, rec))

	rec = fx.do(t, http.MethodGet, "/api/loads/mine", shipper, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decodeBody(t, rec)["loads"], 1)

	// Walk the lifecycle.
	rec = fx.do(t, http.MethodPatch, "/api/loads/"+loadID+"/status", dispatcher, map[string]any{
		"status": "assigned", "carrierId": carrierID,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	load = decodeBody(t, rec)["load"].(map[string]any)
	require.Equal(t, carrierID, load["carrierId"])

	for _, next := range []string{"in_transit", "delivered"} {
		rec = fx.do(t, http.MethodPatch, "/api/loads/"+loadID+"/status", dispatcher, map[string]any{"status": next})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec = fx.do(t, http.MethodPatch, "/api/loads/"+loadID+"/status", dispatcher, map[string]any{"status": "cancelled"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Equal(t, "INVALID_TRANSITION", errorCode(t, rec))

	// Only the posting shipper (or an admin) may delete.
	other, _ := fx.signup(t, "Other Shipper", "other@example.com", "shipper")
	rec = fx.do(t, http.MethodDelete, "/api/loads/"+loadID, other, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "NOT_LOAD_OWNER", errorCode(t, rec))

	rec = fx.do(t, http.MethodDelete, "/api/loads/"+loadID, shipper, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = fx.do(t, http.MethodDelete, "/api/loads/"+loadID, shipper, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "LOAD_NOT_FOUND", errorCode(t, rec))
}

func TestAPI_FleetFlow(t *testing.T) {
	t.Parallel()
	fx := newAPIFixture(t)

	dispatcher, _ := fx.signup(t, "Dis Patcher", "dispatcher@example.com", "dispatcher")
	carrier, carrierID := fx.signup(t, "Car Rier", "carrier@example.com", "carrier")

	// Carriers may not create fleets.
	rec := fx.do(t, http.MethodPost, "/api/fleet", carrier, map[string]any{"name": "Northline", "mcNumber": "MC-1"})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = fx.do(t, http.MethodPost, "/api/fleet", dispatcher, map[string]any{"name": "Northline", "mcNumber": "MC-1"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = fx.do(t, http.MethodPut, "/api/fleet/driver/"+carrierID, dispatcher, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	fleet := decodeBody(t, rec)["fleet"].(map[string]any)
	require.Equal(t, []any{carrierID}, fleet["drivers"])

	// Membership is visible to the driver too.
	rec = fx.do(t, http.MethodGet, "/api/fleet/mine", carrier, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = fx.do(t, http.MethodPut, "/api/fleet/driver/"+carrierID+"/remove", dispatcher, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = fx.do(t, http.MethodGet, "/api/fleet/mine", carrier, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "FLEET_NOT_FOUND", errorCode(t, rec))
}

func TestAPI_AdminSurface(t *testing.T) {
	t.Parallel()
	fx := newAPIFixture(t)

	dispatcher, dispatcherID := fx.signup(t, "Dis Patcher", "dispatcher@example.com", "dispatcher")
	admin, _ := fx.signup(t, "Ad Min", "admin@example.com", "admin")

	rec := fx.do(t, http.MethodGet, "/api/users", dispatcher, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "FORBIDDEN", errorCode(t, rec))

	rec = fx.do(t, http.MethodGet, "/api/users", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decodeBody(t, rec)["users"], 2)

	rec = fx.do(t, http.MethodPut, "/api/users/"+dispatcherID+"/role", admin, map[string]any{"role": "shipper"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	user := decodeBody(t, rec)["user"].(map[string]any)
	require.Equal(t, "shipper", user["role"])

	rec = fx.do(t, http.MethodPut, "/api/users/"+dispatcherID+"/role", admin, map[string]any{"role": "root"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAPI_ProfilePatchTriState(t *testing.T) {
	t.Parallel()
	fx := newAPIFixture(t)

	bearer, _ := fx.signup(t, "Alice", "alice@example.com", "carrier")

	rec := fx.do(t, http.MethodPatch, "/api/account/me", bearer, map[string]any{
		"companyName": "Acme Freight",
		"bio":         "hauling since 2019",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Explicit null clears, omitted fields stay.
	rec = fx.do(t, http.MethodPatch, "/api/account/me", bearer, map[string]any{"bio": nil})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	user := decodeBody(t, rec)["user"].(map[string]any)
	require.Equal(t, "Acme Freight", user["companyName"])
	require.NotContains(t, user, "bio")

	rec = fx.do(t, http.MethodPatch, "/api/account/me", bearer, map[string]any{"name": nil})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Equal(t, "VALIDATION_ERROR", errorCode(t, rec))
}

// TestAPI_RoleRouteMatrix walks every role-gated route with every role.
// Disallowed roles must be stopped by the gate with 403 FORBIDDEN before
// any handler logic runs; allowed roles must get past it, whatever the
// handler then says about the placeholder IDs and empty bodies.
func TestAPI_RoleRouteMatrix(t *testing.T) {
	t.Parallel()
	fx := newAPIFixture(t)

	roles := []string{"admin", "carrier", "dispatcher", "shipper", "fleet_owner"}
	bearers := make(map[string]string, len(roles))
	for _, role := range roles {
		bearer, _ := fx.signup(t, "User "+role, role+"@example.com", role)
		bearers[role] = bearer
	}

	const someID = "00000000-0000-0000-0000-000000000001"
	routes := []struct {
		method  string
		path    string
		allowed []string
	}{
		{http.MethodGet, "/api/loads", []string{"dispatcher", "carrier", "admin"}},
		{http.MethodGet, "/api/loads/mine", []string{"shipper"}},
		{http.MethodGet, "/api/users", []string{"admin"}},
		{http.MethodPut, "/api/users/" + someID + "/role", []string{"admin"}},
		{http.MethodPost, "/api/fleet", []string{"admin", "dispatcher"}},
		{http.MethodPut, "/api/fleet/driver/" + someID, []string{"admin", "dispatcher"}},
		{http.MethodPut, "/api/fleet/driver/" + someID + "/remove", []string{"admin", "dispatcher"}},
		{http.MethodGet, "/api/fleet", []string{"admin"}},
		{http.MethodPost, "/api/loads", []string{"shipper"}},
		{http.MethodPatch, "/api/loads/" + someID + "/status", []string{"dispatcher", "admin"}},
		{http.MethodDelete, "/api/loads/" + someID, []string{"shipper", "admin"}},
	}

	for _, rt := range routes {
		for _, role := range roles {
			rec := fx.do(t, rt.method, rt.path, bearers[role], nil)
			if slices.Contains(rt.allowed, role) {
				require.NotEqual(t, http.StatusForbidden, rec.Code,
					"%s %s as %s: %s", rt.method, rt.path, role, rec.Body.String())
			} else {
				require.Equal(t, http.StatusForbidden, rec.Code,
					"%s %s as %s: %s", rt.method, rt.path, role, rec.Body.String())
				require.Equal(t, "FORBIDDEN", errorCode(t, rec),
					"%s %s as %s", rt.method, rt.path, role)
			}
		}
	}
}

func TestAPI_Healthz(t *testing.T) {
	t.Parallel()
	fx := newAPIFixture(t)

	rec := fx.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
}
