// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package errors

import (
	"fmt"
	"strings"
)

// Format implements fmt.Formatter. %+v prints the call stacks.
func (e *Error) Format(f fmt.State, verb rune) {
	if f.Flag('+') {
		_, _ = f.Write([]byte(e.Print()))
	} else {
		_, _ = f.Write([]byte(e.Error()))
	}
}

// Print prints each error in the causal chain followed by its call stack. The
// cause's message is trimmed from each description so a chain formatted as
// 'mint: credit: insufficient balance' prints as
//
//	mint:
//	<call stack>
//	credit:
//	<call stack>
//	insufficient balance
//	<call stack>
func (e *Error) Print() string {
	if e.CallStack == nil {
		return e.Error()
	}

	var b strings.Builder
	for ; e != nil; e = e.Cause {
		msg := e.Message
		switch {
		case msg == "":
			msg = e.Code.String()
		case e.Cause != nil:
			msg = strings.TrimSuffix(msg, e.Cause.Message)
		}

		b.WriteString(msg)
		b.WriteString("\n")
		for _, cs := range e.CallStack {
			fmt.Fprintf(&b, "%s\n    %s:%d\n", cs.FuncName, cs.File, cs.Line)
		}
	}
	return b.String()
}
