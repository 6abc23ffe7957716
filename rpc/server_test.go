package rpc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"assembly/core"
	"assembly/core/events"
	"assembly/crypto"
	"assembly/native/distribution"
	"assembly/storage"
)

type fixture struct {
	exec      *core.Executor
	server    *Server
	addrs     distribution.DistributorAddresses
	recipient crypto.Address
	grant     crypto.Address
	rewardATA crypto.Address
}

func newAddr(t *testing.T) crypto.Address {
	t.Helper()
	key, err := crypto.GeneratePrivateKey()
	require.NoError(t, err)
	return key.Address()
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := storage.NewMemDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	log := events.NewLog(64)
	clock := clockwork.NewFakeClockAt(time.Unix(1_000, 0))
	exec, err := core.NewExecutor(db, newAddr(t), core.WithClock(clock), core.WithEmitter(log))
	require.NoError(t, err)

	payer, freeze, authority := newAddr(t), newAddr(t), newAddr(t)
	distMint, rewardMint := newAddr(t), newAddr(t)
	_, err = exec.CreateMint(ctx, []crypto.Address{distMint}, distMint, 6, &authority, &freeze)
	require.NoError(t, err)
	_, err = exec.CreateMint(ctx, []crypto.Address{rewardMint}, rewardMint, 6, &authority, nil)
	require.NoError(t, err)

	addrs, err := distribution.DeriveDistributorAddresses(exec.ProgramID(), distMint, rewardMint)
	require.NoError(t, err)
	_, err = exec.InitializeDistributor(ctx, []crypto.Address{payer, freeze}, distribution.InitializeDistributorAccounts{
		Payer:           payer,
		FreezeAuthority: freeze,
		DistMint:        distMint,
		RewardMint:      rewardMint,
		Distributor:     addrs.Distributor,
		GrantMint:       addrs.GrantMint,
		RewardVault:     addrs.RewardVault,
	}, distribution.DistributorArgs{DistEndTs: 2_000, RedeemStartTs: 3_000, Bumps: addrs.Bumps})
	require.NoError(t, err)
	require.NoError(t, exec.MintTo(ctx, []crypto.Address{authority}, rewardMint, addrs.RewardVault, authority, 500))

	recipient := newAddr(t)
	grant, bump, err := distribution.DeriveGrant(exec.ProgramID(), addrs.Distributor, recipient)
	require.NoError(t, err)
	_, err = exec.InitializeGrant(ctx, []crypto.Address{payer}, distribution.InitializeGrantAccounts{
		Payer:       payer,
		Recipient:   recipient,
		Distributor: addrs.Distributor,
		GrantMint:   addrs.GrantMint,
		Grant:       grant,
	}, bump)
	require.NoError(t, err)
	rewardATA, err := exec.AssociatedAddress(recipient, rewardMint)
	require.NoError(t, err)

	return &fixture{
		exec:      exec,
		server:    NewServer(exec, log, nil),
		addrs:     addrs,
		recipient: recipient,
		grant:     grant,
		rewardATA: rewardATA,
	}
}

func (f *fixture) get(t *testing.T, path string) (int, Response) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	var resp Response
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec.Code, resp
}

func decodeResult(t *testing.T, resp Response, out interface{}) {
	t.Helper()
	raw, err := json.Marshal(resp.Result)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())

	f.get(t, "/v1/distribution/distributors")
	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec = httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "assembly_rpc_requests_total")
	require.Contains(t, rec.Body.String(), "assembly_program_calls_total")
}

func TestProgramRoute(t *testing.T) {
	f := newFixture(t)
	code, resp := f.get(t, "/v1/distribution/program")
	require.Equal(t, http.StatusOK, code)
	var program ProgramResponse
	decodeResult(t, resp, &program)
	require.Equal(t, f.exec.ProgramID(), program.ProgramID)
	require.Equal(t, int64(1_000), program.Now)
}

func TestDistributorRoutes(t *testing.T) {
	f := newFixture(t)

	code, resp := f.get(t, "/v1/distribution/distributors")
	require.Equal(t, http.StatusOK, code)
	var list []crypto.Address
	decodeResult(t, resp, &list)
	require.Equal(t, []crypto.Address{f.addrs.Distributor}, list)

	code, resp = f.get(t, "/v1/distribution/distributors/"+f.addrs.Distributor.String())
	require.Equal(t, http.StatusOK, code)
	var view core.DistributorView
	decodeResult(t, resp, &view)
	require.Equal(t, f.addrs.GrantMint, view.Distributor.GrantMint)
	require.Equal(t, uint64(500), view.VaultBalance)
	require.Equal(t, 1, view.Grants)

	code, resp = f.get(t, "/v1/distribution/distributors/"+newAddr(t).String())
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, codeNotFound, resp.Error.Code)

	code, resp = f.get(t, "/v1/distribution/distributors/not-base58!")
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, codeInvalidParams, resp.Error.Code)
}

func TestGrantRoutes(t *testing.T) {
	f := newFixture(t)

	code, resp := f.get(t, "/v1/distribution/distributors/"+f.addrs.Distributor.String()+"/grants")
	require.Equal(t, http.StatusOK, code)
	var grants []core.GrantView
	decodeResult(t, resp, &grants)
	require.Len(t, grants, 1)
	require.Equal(t, f.recipient, grants[0].Grant.Recipient)

	code, resp = f.get(t, "/v1/distribution/distributors/"+f.addrs.Distributor.String()+"/grants/"+f.recipient.String())
	require.Equal(t, http.StatusOK, code)
	var view core.GrantView
	decodeResult(t, resp, &view)
	require.Equal(t, f.grant, view.Grant.Address)
	require.Zero(t, view.Balance)

	code, _ = f.get(t, "/v1/distribution/grants/"+f.grant.String())
	require.Equal(t, http.StatusOK, code)

	code, _ = f.get(t, "/v1/distribution/distributors/"+f.addrs.Distributor.String()+"/grants/"+newAddr(t).String())
	require.Equal(t, http.StatusNotFound, code)

	code, _ = f.get(t, "/v1/distribution/distributors/"+newAddr(t).String()+"/grants")
	require.Equal(t, http.StatusNotFound, code)
}

func TestTokenRoutes(t *testing.T) {
	f := newFixture(t)

	code, resp := f.get(t, "/v1/token/accounts/"+f.addrs.RewardVault.String())
	require.Equal(t, http.StatusOK, code)
	var acc struct {
		Owner  crypto.Address `json:"owner"`
		Amount uint64         `json:"amount"`
	}
	decodeResult(t, resp, &acc)
	require.Equal(t, f.addrs.Distributor, acc.Owner)
	require.Equal(t, uint64(500), acc.Amount)

	code, _ = f.get(t, "/v1/token/mints/"+f.addrs.GrantMint.String())
	require.Equal(t, http.StatusOK, code)

	code, _ = f.get(t, "/v1/token/accounts/"+f.rewardATA.String())
	require.Equal(t, http.StatusNotFound, code)

	view, err := f.exec.Distributor(f.addrs.Distributor)
	require.NoError(t, err)
	code, resp = f.get(t, "/v1/token/associated/"+f.recipient.String()+"/"+view.Distributor.RewardMint.String())
	require.Equal(t, http.StatusOK, code)
	var derived AddressResponse
	decodeResult(t, resp, &derived)
	require.Equal(t, f.rewardATA, derived.Address)
}

func TestEventsRoute(t *testing.T) {
	f := newFixture(t)

	code, resp := f.get(t, "/v1/events?limit=1")
	require.Equal(t, http.StatusOK, code)
	var out EventsResponse
	decodeResult(t, resp, &out)
	require.Len(t, out.Events, 1)
	require.Equal(t, distribution.EventTypeGrantInitialized, out.Events[0].Type)

	code, resp = f.get(t, "/v1/events?limit=zero")
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, codeInvalidParams, resp.Error.Code)
}

func TestRateLimit(t *testing.T) {
	f := newFixture(t)
	server := NewServer(f.exec, nil, nil, WithRateLimit(RateLimit{RequestsPerMinute: 60, Burst: 2}))

	serve := func(remote, path string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		server.Handler().ServeHTTP(rec, req)
		return rec.Code
	}
	require.Equal(t, http.StatusOK, serve("192.0.2.1:1000", "/v1/distribution/program"))
	require.Equal(t, http.StatusOK, serve("192.0.2.1:1001", "/v1/distribution/program"))
	require.Equal(t, http.StatusTooManyRequests, serve("192.0.2.1:1002", "/v1/distribution/program"))
	require.Equal(t, http.StatusOK, serve("192.0.2.2:1000", "/v1/distribution/program"))
	require.Equal(t, http.StatusOK, serve("192.0.2.1:1003", "/healthz"))

	code, _ := f.get(t, "/v1/events")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, http.StatusNotFound, serve("192.0.2.3:1000", "/v1/events"), "events route is not mounted without a log")
}
