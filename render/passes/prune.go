package passes

import (
	"errors"
	"fmt"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// KnownConditions are the feature tokens the renderer can activate.
var KnownConditions = []string{
	"bloom",
	"normalmaps",
	"fsaa",
	"shadows",
	"reflections_low",
	"reflections_high",
}

// Prune drops the passes whose conditions are not satisfied by set. It
// returns the surviving passes in their original order, the names of the
// dropped ones, and any condition syntax errors. Passes with malformed
// conditions are dropped.
func Prune(infos []Info, set ConditionSet) (kept []Info, pruned []string, err error) {
	var errs []error
	for _, info := range infos {
		expr, ok := info.Field(FieldConditions)
		if !ok {
			kept = append(kept, info)
			continue
		}
		cond, perr := Parse(expr)
		if perr != nil {
			errs = append(errs, fmt.Errorf("pass %q: %w", info.Name, perr))
		}
		if cond.Satisfied(set) {
			kept = append(kept, info)
		} else {
			pruned = append(pruned, info.Name)
		}
	}
	return kept, pruned, errors.Join(errs...)
}

// suggestThreshold is the minimum similarity for a "did you mean" hint.
const suggestThreshold = 0.5

// Suggest returns the known token most similar to token.
func Suggest(token string, known []string) (string, bool) {
	lev := metrics.NewLevenshtein()
	best, bestScore := "", 0.0
	for _, k := range known {
		if score := strutil.Similarity(token, k, lev); score > bestScore {
			best, bestScore = k, score
		}
	}
	if bestScore < suggestThreshold {
		return "", false
	}
	return best, true
}

// Lint reports condition tokens that no known feature matches.
func Lint(infos []Info, known []string) []string {
	knownSet := NewConditionSet(known...)
	var out []string
	for _, info := range infos {
		expr, ok := info.Field(FieldConditions)
		if !ok {
			continue
		}
		cond, err := Parse(expr)
		if err != nil {
			continue
		}
		for _, t := range cond.Tokens() {
			if knownSet.Has(t) {
				continue
			}
			msg := fmt.Sprintf("pass %q: unknown condition %q", info.Name, t)
			if s, ok := Suggest(t, known); ok {
				msg += fmt.Sprintf(", did you mean %q?", s)
			}
			out = append(out, msg)
		}
	}
	return out
}
