package eon

import (
	"sort"
	"strings"
)

// Presence is the bit flag collected by ExtractWithMeta.
type Presence uint8

const (
	PresenceSeen    Presence = 1 << iota // Path resolved to a node and was written.
	PresenceWasNull                      // The node was null.
	PresenceSkipped                      // Optional path was missing; member left untouched.
)

// PresenceMap maps adapter paths (EON notation, "" for the root) to Presence
// flags. Nested record paths are joined under their parent.
type PresenceMap map[string]Presence

// Has reports whether every bit of f is set for path.
func (pm PresenceMap) Has(path string, f Presence) bool { return pm[path]&f == f }

// Paths returns the recorded paths in sorted order.
func (pm PresenceMap) Paths() []string {
	out := make([]string, 0, len(pm))
	for k := range pm {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Filter keeps paths under one of include (all paths when empty) and under
// none of exclude. Matching is by path prefix.
func (pm PresenceMap) Filter(include, exclude []string) PresenceMap {
	if pm == nil {
		return nil
	}
	shouldInclude := func(path string) bool {
		if len(include) > 0 {
			ok := false
			for _, p := range include {
				if strings.HasPrefix(path, p) {
					ok = true
					break
				}
			}
			if !ok {
				return false
			}
		}
		for _, p := range exclude {
			if strings.HasPrefix(path, p) {
				return false
			}
		}
		return true
	}
	filtered := make(PresenceMap, len(pm))
	for k, v := range pm {
		if shouldInclude(k) {
			filtered[k] = v
		}
	}
	return filtered
}

func (pm PresenceMap) mark(p Path, f Presence) {
	if pm == nil {
		return
	}
	pm[p.String()] |= f
}
