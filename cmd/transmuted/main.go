// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package main

import (
	"fmt"
	"log"
	"os"
	"os/user"
	"path/filepath"

	"github.com/spf13/cobra"
)

var currentUser = func() *user.User {
	usr, err := user.Current()
	if err != nil {
		log.Fatal(err)
	}
	return usr
}()

var defaultWorkDir = filepath.Join(currentUser.HomeDir, ".transmute")

var cmdMain = &cobra.Command{
	Use:   "transmuted",
	Short: "Dual-ledger token daemon",
	Run:   printUsageAndExit1,
}

type mainFlags struct {
	WorkDir string
	Output  string
}

var flagMain mainFlags

func init() {
	cmdMain.PersistentFlags().StringVarP(&flagMain.WorkDir, "work-dir", "w", defaultWorkDir, "Working directory for configuration and data")
	cmdMain.PersistentFlags().StringVarP(&flagMain.Output, "output", "o", outputText, "Output format (text, json, yaml)")
}

func main() {
	_ = cmdMain.Execute()
}

func printUsageAndExit1(cmd *cobra.Command, args []string) {
	_ = cmd.Usage()
	os.Exit(1)
}

// abort is raised by fatalf within the console and recovered per line.
type abort struct{ err error }

func fatalf(format string, args ...interface{}) {
	if interactive.enabled {
		panic(abort{fmt.Errorf(format, args...)})
	}
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

func check(err error) {
	if err != nil {
		fatalf("%v", err)
	}
}

func checkf(err error, format string, otherArgs ...interface{}) {
	if err != nil {
		fatalf(format+": %v", append(otherArgs, err)...)
	}
}
