// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package api

import (
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"gitlab.com/accumulatenetwork/transmute/internal/contract/token"
	"gitlab.com/accumulatenetwork/transmute/internal/logging"
	"gitlab.com/accumulatenetwork/transmute/protocol"
	"gitlab.com/accumulatenetwork/transmute/test/harness"
)

func setup(t *testing.T) (*harness.Harness, string, string) {
	h := harness.New(t)
	reg := h.InstantiateRegistry("creator")
	tok := h.Instantiate("creator", token.Code, &protocol.InstantiateToken{
		Name:            "Transmute Token",
		Symbol:          "TMT",
		Decimals:        6,
		InitialBalances: []protocol.Balance{{Address: "alice", Amount: big.NewInt(100)}},
		Registry:        reg,
		Materialize:     true,
	})
	h.Execute("alice", tok, &protocol.TransmuteIntoExternal{Amount: big.NewInt(40)})
	return h, reg, tok
}

func do(t *testing.T, srv http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestQuery(t *testing.T) {
	h, _, tok := setup(t)
	srv := NewHandler(Options{Executor: h.X, Logger: logging.NewTestLogger(t)})

	rec := do(t, srv, "POST", "/v1/contracts/"+tok+"/query/balance", `{"address":"alice"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var bal protocol.BalanceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bal))
	require.Equal(t, "60", bal.Balance.String())

	rec = do(t, srv, "POST", "/v1/contracts/"+tok+"/query/supplyDetails", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var sup protocol.SupplyDetails
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sup))
	require.Equal(t, "60", sup.Ledger.String())
	require.Equal(t, "40", sup.External.String())
	require.Equal(t, "100", sup.Total.String())

	// A chunked request with no body is an empty query
	req := httptest.NewRequest("POST", "/v1/contracts/"+tok+"/query/supplyDetails", io.NopCloser(strings.NewReader("")))
	require.EqualValues(t, -1, req.ContentLength)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// A truncated body is still rejected
	req = httptest.NewRequest("POST", "/v1/contracts/"+tok+"/query/balance", io.NopCloser(strings.NewReader(`{"address"`)))
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	rec = do(t, srv, "GET", "/v1/supply/factory/"+tok+"/tmt", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var coin protocol.Coin
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &coin))
	require.Equal(t, "40", coin.Amount.String())

	rec = do(t, srv, "GET", "/v1/contracts", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Contains(t, rec.Body.String(), tok)
}

func TestQueryErrors(t *testing.T) {
	h, _, tok := setup(t)
	srv := NewHandler(Options{Executor: h.X, Logger: logging.NewTestLogger(t)})

	cases := map[string]struct {
		path, body string
		status     int
	}{
		"UnknownType":     {"/v1/contracts/" + tok + "/query/nope", "", http.StatusBadRequest},
		"BadBody":         {"/v1/contracts/" + tok + "/query/balance", "{", http.StatusBadRequest},
		"MissingContract": {"/v1/contracts/contract99/query/tokenInfo", "", http.StatusNotFound},
		"WrongContract":   {"/v1/contracts/" + tok + "/query/listDenoms", "", http.StatusBadRequest},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			rec := do(t, srv, "POST", c.path, c.body)
			require.Equal(t, c.status, rec.Code, rec.Body.String())

			var resp errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			require.NotEmpty(t, resp.Message)
		})
	}
}

func TestSupplyMonitor(t *testing.T) {
	h, reg, tok := setup(t)
	m, err := NewSupplyMonitor(MonitorOptions{
		Executor:   h.X,
		Logger:     logging.NewTestLogger(t),
		Registry:   reg,
		Registerer: prometheus.NewRegistry(),
	})
	require.NoError(t, err)
	require.NoError(t, m.Refresh())

	denom := "factory/" + tok + "/tmt"
	require.Equal(t, 60.0, testutil.ToFloat64(m.gauge.WithLabelValues(tok, denom, "ledger")))
	require.Equal(t, 40.0, testutil.ToFloat64(m.gauge.WithLabelValues(tok, denom, "external")))
	require.Equal(t, 100.0, testutil.ToFloat64(m.gauge.WithLabelValues(tok, denom, "total")))

	bad, err := NewSupplyMonitor(MonitorOptions{Executor: h.X, Logger: logging.NewTestLogger(t), Registry: tok})
	require.NoError(t, err)
	require.Error(t, bad.Refresh())
}
