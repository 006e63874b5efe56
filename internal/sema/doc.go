// Package sema decorates a syntax tree with types and symbols.
//
// Analysis runs five ordered passes over the tree, each a depth-first Walk
// with optional pre- and post-order hooks:
//
//  1. collect: functions and globals enter the global frame;
//  2. resolve: frames follow the tree, identifiers are bound;
//  3. typecheck: operators, calls, assignments and returns get types;
//  4. control flow: break placement and condition types;
//  5. returns: return statements against the declared result.
//
// The first failure aborts analysis and is returned as *diag.Error.
package sema
