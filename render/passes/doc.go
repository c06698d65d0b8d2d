// Package passes loads render pass lists and decides which passes are active
// for a set of feature conditions.
//
// A pass may carry a "conditions" field holding a boolean expression over
// feature tokens:
//
//	expr  := or
//	or    := and { "||" and }
//	and   := unary { ["&&"] unary }
//	unary := "!" unary | "(" expr ")" | token
//	token := [A-Za-z0-9_.-]+
//
// "!" binds tighter than AND, which binds tighter than "||". Operands
// written next to each other are ANDed, so "bloom !fsaa" and
// "bloom && !fsaa" are the same condition. A token is true when it is in
// the active ConditionSet. An empty expression is always true. A malformed
// expression is always false and Parse reports it as ErrConditionSyntax.
package passes
