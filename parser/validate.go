// Copyright (c) 2014, Kevin Walsh.  All rights reserved.
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

package parser

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/bigattichouse/bytelogic/ast"
)

// SemanticError is one static semantic defect found by Validate: a first
// body op that isn't SCAN, or a MATCH/JOIN/EMIT register reference that
// hasn't been bound yet. These are whole-rule checks, distinct from parsing,
// so unlike SyntaxError they are batched rather than reported fail-fast.
type SemanticError struct {
	Line    int
	Column  int
	Message string
}

func (e *SemanticError) Error() string {
	return fmt.Sprintf("at line %d, column %d: %s", e.Line, e.Column, e.Message)
}

// Validate checks every Rule in prog for the static invariants in the
// language specification: the first body op must be SCAN, and every
// MATCH/JOIN/EMIT register reference must name a register already bound by
// an earlier op in the same rule. Violations across every rule in the
// program are aggregated into a single *multierror.Error instead of
// stopping at the first one, since these are independent whole-program
// checks rather than token-stream recovery.
func Validate(prog *ast.Program) error {
	var errs *multierror.Error
	prog.Walk(func(s ast.Statement) {
		rule, ok := s.(*ast.Rule)
		if !ok {
			return
		}
		if err := validateRule(rule); err != nil {
			errs = multierror.Append(errs, err)
		}
	})
	return errs.ErrorOrNil()
}

func validateRule(r *ast.Rule) error {
	var errs *multierror.Error
	bound := 0
	for i, op := range r.Body {
		switch op := op.(type) {
		case *ast.Scan:
			if op.MatchVar == nil {
				bound += 2
				continue
			}
			if *op.MatchVar >= bound {
				errs = multierror.Append(errs, &SemanticError{
					Line: op.Pos().Line, Column: op.Pos().Column,
					Message: fmt.Sprintf("rule %q: SCAN MATCH $%d references an unbound register", r.Target, *op.MatchVar),
				})
			}
			bound++
		case *ast.Join:
			if i == 0 {
				errs = multierror.Append(errs, &SemanticError{
					Line: op.Pos().Line, Column: op.Pos().Column,
					Message: fmt.Sprintf("rule %q: first body op must be SCAN, not JOIN", r.Target),
				})
			} else if op.MatchVar >= bound {
				errs = multierror.Append(errs, &SemanticError{
					Line: op.Pos().Line, Column: op.Pos().Column,
					Message: fmt.Sprintf("rule %q: JOIN $%d references an unbound register", r.Target, op.MatchVar),
				})
			}
			bound++
		default:
			panic("parser: unknown BodyOp variant")
		}
	}
	if r.Emit.VarA >= bound {
		errs = multierror.Append(errs, &SemanticError{
			Line: r.Emit.Pos().Line, Column: r.Emit.Pos().Column,
			Message: fmt.Sprintf("rule %q: EMIT references unbound register $%d", r.Target, r.Emit.VarA),
		})
	}
	if r.Emit.VarB >= bound {
		errs = multierror.Append(errs, &SemanticError{
			Line: r.Emit.Pos().Line, Column: r.Emit.Pos().Column,
			Message: fmt.Sprintf("rule %q: EMIT references unbound register $%d", r.Target, r.Emit.VarB),
		})
	}
	return errs.ErrorOrNil()
}
