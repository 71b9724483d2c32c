// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"gitlab.com/accumulatenetwork/transmute/internal/execute"
	"gitlab.com/accumulatenetwork/transmute/protocol"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

var (
	labelColor = color.New(color.FgCyan)
	okColor    = color.New(color.FgGreen)
)

func init() {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		color.NoColor = true
	}
}

// writeOutput writes v in the selected output format.
func writeOutput(w io.Writer, v any) error {
	switch strings.ToLower(flagMain.Output) {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)

	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)

	case outputText:
		return printText(w, v)
	}
	return fmt.Errorf("unsupported output format %q", flagMain.Output)
}

func amount(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return humanize.BigComma(v)
}

func printText(w io.Writer, v any) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	field := func(label string, value any) {
		fmt.Fprintf(tw, "%s\t%v\n", labelColor.Sprint(label), value)
	}

	switch v := v.(type) {
	case *execute.Result:
		fmt.Fprintf(tw, "%s %s\n", okColor.Sprint("OK"), v.ID)
		if v.Contract != "" {
			field("Contract", v.Contract)
		}
		for _, e := range v.Events {
			var attrs []string
			for _, a := range e.Attributes {
				attrs = append(attrs, a.Key+"="+a.Value)
			}
			field(e.Type, strings.Join(attrs, " "))
		}

	case *protocol.BalanceResponse:
		field("Balance", amount(v.Balance))

	case *protocol.TokenInfoResponse:
		field("Name", v.Name)
		field("Symbol", v.Symbol)
		field("Decimals", v.Decimals)
		field("Total supply", amount(v.TotalSupply))

	case *protocol.MinterResponse:
		if v == nil {
			field("Minter", "(none)")
			break
		}
		field("Minter", v.Minter)
		if v.Cap != nil {
			field("Cap", amount(v.Cap))
		} else {
			field("Cap", "(none)")
		}

	case *protocol.ExternalDenomResponse:
		field("Denom", v.Denom)

	case *protocol.SupplyDetails:
		field("Ledger", amount(v.Ledger))
		field("External", amount(v.External))
		field("Total", amount(v.Total))

	case *protocol.AccountsResponse:
		for _, a := range v.Accounts {
			fmt.Fprintln(tw, a)
		}

	case *protocol.DenomEntry:
		field(v.Denom, v.Contract)

	case *protocol.ListDenomsResponse:
		for _, e := range v.Entries {
			field(e.Denom, e.Contract)
		}

	case *protocol.TokenDetails:
		printTokenDetails(field, v)

	case *protocol.TokensDetailsResponse:
		for i, d := range v.Tokens {
			if i > 0 {
				fmt.Fprintln(tw)
			}
			printTokenDetails(field, d)
		}

	case protocol.Coin:
		field(v.Denom, amount(v.Amount))

	case protocol.Coins:
		for _, c := range v {
			field(c.Denom, amount(c.Amount))
		}

	case []*execute.ContractInfo:
		for _, c := range v {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", labelColor.Sprint(c.Address), c.Code, c.Creator)
		}

	default:
		return yaml.NewEncoder(w).Encode(v)
	}
	return nil
}

func printTokenDetails(field func(string, any), d *protocol.TokenDetails) {
	field("Contract", d.Contract)
	field("Denom", d.Denom)
	field("Name", d.Name)
	field("Symbol", d.Symbol)
	field("Decimals", d.Decimals)
	field("Ledger supply", amount(d.LedgerSupply))
	field("External supply", amount(d.ExternalSupply))
	field("Total supply", amount(d.TotalSupply))
}

// printResult prints the result of a command.
func printResult(v any) {
	check(writeOutput(os.Stdout, v))
}
