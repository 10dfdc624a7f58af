// Copyright 2025 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package query

type instrOp int

const (
	iCompare instrOp = iota
	iAnd
	iOr
	iNot
)

type instr struct {
	op    instrOp
	attr  string
	cmpOp Op
	val   Value
}

// Program is a query compiled to postfix (reverse Polish) form: evaluating
// it is a single left-to-right pass pushing and popping an explicit bool
// stack, never a recursive tree walk.
type Program []instr

// Compile flattens expr into a Program.
func Compile(expr Expr) Program {
	var out Program
	compileInto(expr, &out)
	return out
}

func compileInto(e Expr, out *Program) {
	switch v := e.(type) {
	case *Compare:
		*out = append(*out, instr{op: iCompare, attr: v.Attr, cmpOp: v.Op, val: v.Value})
	case *And:
		compileInto(v.Left, out)
		compileInto(v.Right, out)
		*out = append(*out, instr{op: iAnd})
	case *Or:
		compileInto(v.Left, out)
		compileInto(v.Right, out)
		*out = append(*out, instr{op: iOr})
	case *Not:
		compileInto(v.Inner, out)
		*out = append(*out, instr{op: iNot})
	}
}

// MustCompile parses and compiles src in one step, panicking on a syntax
// error. Intended for tests and for known-good, literal query strings (a
// hardcoded index-maintenance filter, say); live user input should call
// Parse and Compile separately so the syntax error reaches the caller.
func MustCompile(src string) Program {
	expr, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return Compile(expr)
}
