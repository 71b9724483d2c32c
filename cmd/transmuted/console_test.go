// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/accumulatenetwork/transmute/config"
	"gitlab.com/accumulatenetwork/transmute/internal/execute"
	"gitlab.com/accumulatenetwork/transmute/protocol"
)

func setupConsole(t *testing.T) func(args ...string) []byte {
	dir := t.TempDir()
	cfg := config.Default(dir)
	cfg.Storage.Type = config.MemoryStorage
	cfg.Logging.Level = "error"
	require.NoError(t, config.Store(cfg))

	n, err := openNode(dir)
	require.NoError(t, err)

	global := mainFlags{WorkDir: dir, Output: outputJSON}
	interactive.enabled = true
	interactive.node = n
	t.Cleanup(func() {
		interactive.enabled = false
		interactive.node = nil
		flagMain = mainFlags{}
		cmdMain.SetOut(nil)
		cmdMain.SetErr(nil)
		_ = n.Close()
	})

	return func(args ...string) []byte {
		out, errOut := new(bytes.Buffer), new(bytes.Buffer)
		cmdMain.SetOut(out)
		cmdMain.SetErr(errOut)
		runLine(args, global)
		require.Empty(t, errOut.String())
		return out.Bytes()
	}
}

func decode[T any](t *testing.T, b []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(b, &v), string(b))
	return v
}

func TestConsoleFlow(t *testing.T) {
	run := setupConsole(t)

	reg := decode[*execute.Result](t, run("registry", "instantiate", "--from", "creator")).Contract
	require.Equal(t, "contract1", reg)

	tok := decode[*execute.Result](t, run("token", "instantiate", "--from", "creator",
		"--name", "Transmute Token", "--symbol", "TMT",
		"--minter", "creator", "--cap", "1000",
		"--balance", "alice=100",
		"--registry", reg, "--materialize")).Contract
	require.Equal(t, "contract2", tok)

	run("token", "to-external", tok, "40", "--from", "alice")
	run("token", "to-ledger", tok, "15", "--from", "alice")

	sup := decode[*protocol.SupplyDetails](t, run("token", "supply", tok))
	require.Equal(t, "75", sup.Ledger.String())
	require.Equal(t, "25", sup.External.String())
	require.Equal(t, "100", sup.Total.String())

	denom := decode[*protocol.ExternalDenomResponse](t, run("token", "denom", tok)).Denom
	require.Equal(t, "factory/"+tok+"/tmt", denom)

	bal := decode[protocol.Coins](t, run("bank", "balance", "alice"))
	require.Equal(t, "25"+denom, bal.String())

	entry := decode[*protocol.DenomEntry](t, run("registry", "lookup", denom, "--registry", reg))
	require.Equal(t, tok, entry.Contract)

	list := decode[[]*execute.ContractInfo](t, run("contracts"))
	require.Len(t, list, 2)
}

func TestConsoleFlagsReset(t *testing.T) {
	run := setupConsole(t)
	tok := decode[*execute.Result](t, run("token", "instantiate", "--from", "creator",
		"--name", "Transmute Token", "--symbol", "TMT",
		"--balance", "alice=10", "--balance", "bob=20")).Contract

	// Balances from the previous line must not carry over
	tok2 := decode[*execute.Result](t, run("token", "instantiate", "--from", "creator",
		"--name", "Other Token", "--symbol", "OTH",
		"--balance", "carol=5")).Contract

	info := decode[*protocol.TokenInfoResponse](t, run("token", "info", tok))
	require.Equal(t, "30", info.TotalSupply.String())
	info = decode[*protocol.TokenInfoResponse](t, run("token", "info", tok2))
	require.Equal(t, "5", info.TotalSupply.String())
}

func TestConsoleErrors(t *testing.T) {
	run := setupConsole(t)
	tok := decode[*execute.Result](t, run("token", "instantiate", "--from", "creator",
		"--name", "Transmute Token", "--symbol", "TMT",
		"--balance", "alice=10")).Contract

	errOut := new(bytes.Buffer)
	cmdMain.SetErr(errOut)

	// Executor errors are reported without leaving the console
	runLine([]string{"token", "transfer", tok, "bob", "11", "--from", "alice"}, flagMain)
	require.Contains(t, errOut.String(), "insufficient balance")

	// So are argument errors
	errOut.Reset()
	runLine([]string{"token", "transfer", tok, "bob", "x", "--from", "alice"}, flagMain)
	require.Contains(t, errOut.String(), "amount")

	// Token-factory coins cannot be funded from outside
	errOut.Reset()
	runLine([]string{"bank", "fund", "alice", "100factory/" + tok + "/tmt"}, flagMain)
	require.Contains(t, errOut.String(), "token-factory")

	// Nested consoles are refused
	errOut.Reset()
	runLine([]string{"console"}, flagMain)
	require.Contains(t, errOut.String(), "already in the console")

	// The failed lines changed nothing
	bal := decode[*protocol.BalanceResponse](t, run("token", "balance", tok, "alice"))
	require.Equal(t, "10", bal.Balance.String())
}
