// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/mattn/go-shellwords"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var cmdConsole = &cobra.Command{
	Use:   "console",
	Short: "Run commands interactively against one open work directory",
	Args:  cobra.NoArgs,
	Run:   console,
}

func init() {
	cmdMain.AddCommand(cmdConsole)
}

func console(*cobra.Command, []string) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "transmute> ",
		HistoryFile:     filepath.Join(flagMain.WorkDir, ".history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	check(err)
	defer rl.Close()

	// Global flags given to the console apply to every line
	global := flagMain

	check(withNode(func(n *node) error {
		interactive.enabled = true
		interactive.node = n
		defer func() {
			interactive.enabled = false
			interactive.node = nil
		}()

		for {
			line, err := rl.Readline()
			switch {
			case err == nil:
			case err == readline.ErrInterrupt:
				if line == "" {
					return nil
				}
				continue
			case err == io.EOF:
				return nil
			default:
				return err
			}

			line = strings.TrimSpace(line)
			switch line {
			case "":
				continue
			case "exit", "quit":
				return nil
			}

			args, err := shellwords.Parse(line)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				continue
			}
			runLine(args, global)
		}
	}))
}

// runLine executes one console line as a command.
func runLine(args []string, global mainFlags) {
	if len(args) > 0 && args[0] == "console" {
		cmdMain.PrintErrln("Error: already in the console")
		return
	}

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if a, ok := r.(abort); ok {
			cmdMain.PrintErrf("Error: %v\n", a.err)
			return
		}
		panic(r)
	}()

	resetFlags(cmdMain)
	flagMain = global
	cmdMain.SetArgs(args)
	_ = cmdMain.Execute()
}

// resetFlags restores every flag to its default so that values do not leak
// from one console line into the next.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if s, ok := f.Value.(pflag.SliceValue); ok {
			_ = s.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
