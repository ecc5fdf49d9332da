package agent

import (
	"fmt"
	"sort"
	"strings"
)

// DependencyFunc returns the names a node depends on.
type DependencyFunc func(name string) []string

// TopologicalSort returns names in dependency order
func TopologicalSort(names []string, deps DependencyFunc) ([]string, error) {
	levels, err := DependencyLevels(names, deps)
	if err != nil {
		return nil, err
	}
	var result []string
	for _, level := range levels {
		result = append(result, level...)
	}
	return result, nil
}

// DependencyLevels groups names by dependency level for parallel execution.
// Level 0: names with no dependencies
// Level 1: names whose dependencies are all in level 0
// Level N: names whose dependencies are all in levels 0..N-1
// Dependencies outside names are ignored, so a partial set still schedules.
// Within a level the input order is kept.
func DependencyLevels(names []string, deps DependencyFunc) ([][]string, error) {
	nameSet := make(map[string]bool, len(names))
	for _, n := range names {
		nameSet[n] = true
	}

	// In-degree only counts dependencies inside the set
	inDegree := make(map[string]int, len(names))
	for _, n := range names {
		inDegree[n] = 0
		for _, dep := range deps(n) {
			if nameSet[dep] {
				inDegree[n]++
			}
		}
	}

	assigned := make(map[string]bool, len(names))
	var levels [][]string

	for len(assigned) < len(names) {
		var current []string
		for _, n := range names {
			if !assigned[n] && inDegree[n] == 0 {
				current = append(current, n)
			}
		}

		if len(current) == 0 {
			return levels, fmt.Errorf("dependency cycle among: %s", strings.Join(unassigned(names, assigned), ", "))
		}

		for _, n := range current {
			assigned[n] = true
		}

		for _, done := range current {
			for _, n := range names {
				if assigned[n] {
					continue
				}
				for _, dep := range deps(n) {
					if dep == done {
						inDegree[n]--
					}
				}
			}
		}

		levels = append(levels, current)
	}

	return levels, nil
}

// TransitiveDependencies returns every dependency of name, nearest last,
// excluding name itself.
func TransitiveDependencies(name string, deps DependencyFunc) []string {
	visited := make(map[string]bool)
	var result []string

	var visit func(n string)
	visit = func(n string) {
		if visited[n] {
			return
		}
		visited[n] = true
		for _, dep := range deps(n) {
			visit(dep)
		}
		if n != name {
			result = append(result, n)
		}
	}

	visit(name)
	return result
}

func unassigned(names []string, assigned map[string]bool) []string {
	var rest []string
	for _, n := range names {
		if !assigned[n] {
			rest = append(rest, n)
		}
	}
	sort.Strings(rest)
	return rest
}
