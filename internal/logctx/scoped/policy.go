// internal/logctx/scoped/policy.go
package scoped

import (
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/logscope/internal/levelmap"
)

// LevelMapPolicy combines the level map of an enclosing scope with the map
// installed on a nested scope.
type LevelMapPolicy interface {
	Combine(outer, inner levelmap.LevelMap) levelmap.LevelMap
}

// MergePolicy keeps every rule of both maps; the nested scope wins on equal
// names.
type MergePolicy struct{}

func (MergePolicy) Combine(outer, inner levelmap.LevelMap) levelmap.LevelMap {
	return outer.Merge(inner)
}

// OverridePolicy replaces the enclosing map with the nested one.
type OverridePolicy struct{}

func (OverridePolicy) Combine(_, inner levelmap.LevelMap) levelmap.LevelMap {
	return inner
}

// PolicyByName returns the policy for "merge" (or "") and "override".
func PolicyByName(name string) (LevelMapPolicy, error) {
	switch strings.ToLower(name) {
	case "", "merge":
		return MergePolicy{}, nil
	case "override":
		return OverridePolicy{}, nil
	}
	return nil, fmt.Errorf("unknown level map policy %q (want merge or override)", name)
}
