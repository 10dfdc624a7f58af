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

import "github.com/gobwas/glob"

// AttrResolver looks up an attribute's current value for one node,
// implemented by internal/volume over a node's synthetic ("name", "size",
// "last_modified") and real attributes alike.
type AttrResolver interface {
	Attr(name string) (Value, bool)
}

// Eval runs the program against r, returning whether the node it resolves
// against matches. Unknown attributes make any comparison touching them
// false, the same as a missing attribute failing a Query.cpp predicate.
func (p Program) Eval(r AttrResolver) bool {
	stack := make([]bool, 0, len(p))
	for _, ins := range p {
		switch ins.op {
		case iCompare:
			stack = append(stack, evalCompare(r, ins))
		case iAnd:
			b, a := pop2(&stack)
			stack = append(stack, a && b)
		case iOr:
			b, a := pop2(&stack)
			stack = append(stack, a || b)
		case iNot:
			b := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			stack = append(stack, !b)
		}
	}
	if len(stack) == 0 {
		return false
	}
	return stack[len(stack)-1]
}

func pop2(stack *[]bool) (top, next bool) {
	s := *stack
	top = s[len(s)-1]
	next = s[len(s)-2]
	*stack = s[:len(s)-2]
	return
}

func evalCompare(r AttrResolver, ins instr) bool {
	actual, ok := r.Attr(ins.attr)
	if !ok {
		return false
	}
	if ins.cmpOp == OpContains {
		g, err := glob.Compile(ins.val.Str)
		if err != nil {
			return false
		}
		return actual.Type == ValString && g.Match(actual.Str)
	}
	if actual.Type == ValString || ins.val.Type == ValString {
		return compareStrings(actual.Str, ins.cmpOp, ins.val.Str)
	}
	return compareNumbers(toFloat64(actual), ins.cmpOp, toFloat64(ins.val))
}

func compareStrings(a string, op Op, b string) bool {
	switch op {
	case OpEq:
		return a == b
	case OpNe:
		return a != b
	case OpGt:
		return a > b
	case OpGe:
		return a >= b
	case OpLt:
		return a < b
	case OpLe:
		return a <= b
	default:
		return false
	}
}

func compareNumbers(a float64, op Op, b float64) bool {
	switch op {
	case OpEq:
		return a == b
	case OpNe:
		return a != b
	case OpGt:
		return a > b
	case OpGe:
		return a >= b
	case OpLt:
		return a < b
	case OpLe:
		return a <= b
	default:
		return false
	}
}

func toFloat64(v Value) float64 {
	switch v.Type {
	case ValInt64:
		return float64(v.Int)
	case ValUint64:
		return float64(v.Uint)
	case ValDouble:
		return v.Dbl
	default:
		return 0
	}
}
