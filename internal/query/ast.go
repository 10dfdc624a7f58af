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

// Package query is the live query language: a small boolean expression
// grammar over node attributes, compiled to a flat instruction list and
// evaluated with an explicit value stack rather than a recursive Eval
// walk, plus an index-aware planner and live-update registration.
//
// Grounded on Query.h/Query.cpp, which parses a Be-style query string
// ("name==\"foo\" && size>1024") into an expression tree, picks an index
// to seed the scan from, and (when told to) keeps a port/token pair
// updated as matching entries come and go.
package query

// ValueType tags a literal's runtime type.
type ValueType int

const (
	ValString ValueType = iota
	ValInt64
	ValUint64
	ValDouble
)

// Value is a typed query literal.
type Value struct {
	Type ValueType
	Str  string
	Int  int64
	Uint uint64
	Dbl  float64
}

// Op is a comparison operator, mirroring the operators Query.cpp's
// grammar accepts between an attribute name and a literal.
type Op int

const (
	OpEq Op = iota
	OpNe
	OpGt
	OpGe
	OpLt
	OpLe
	// OpContains matches Value as a glob pattern against a string
	// attribute, the query language's wildcard operator.
	OpContains
)

// Expr is a node in the parsed query tree.
type Expr interface{ isExpr() }

// Compare is a leaf predicate: attribute compared to a literal.
type Compare struct {
	Attr  string
	Op    Op
	Value Value
}

// And, Or, Not are the boolean combinators, grounded on the original
// grammar's "&&", "||", and "!".
type And struct{ Left, Right Expr }
type Or struct{ Left, Right Expr }
type Not struct{ Inner Expr }

func (*Compare) isExpr() {}
func (*And) isExpr()     {}
func (*Or) isExpr()      {}
func (*Not) isExpr()     {}
