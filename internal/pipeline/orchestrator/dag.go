package orchestrator

import "fmt"

// validateDAG checks stage names for uniqueness, dependencies for
// existence, and the dependency graph for cycles, then returns a stable
// topological order (Kahn's algorithm, input order as the tie-break).
func validateDAG(stages []Stage) ([]string, error) {
	if len(stages) == 0 {
		return nil, nil
	}
	seen := map[string]bool{}
	for _, s := range stages {
		if s.Name == "" {
			return nil, fmt.Errorf("stage missing Name")
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("duplicate stage name %q", s.Name)
		}
		seen[s.Name] = true
	}
	for _, s := range stages {
		for _, dep := range s.Deps {
			if !seen[dep] {
				return nil, fmt.Errorf("stage %q depends on unknown stage %q", s.Name, dep)
			}
		}
	}

	deg := map[string]int{}
	out := map[string][]string{}
	for _, s := range stages {
		deg[s.Name] = 0
	}
	for _, s := range stages {
		for _, dep := range s.Deps {
			deg[s.Name]++
			out[dep] = append(out[dep], s.Name)
		}
	}

	order := make([]string, 0, len(stages))
	added := map[string]bool{}
	for {
		progressed := false
		for _, s := range stages {
			if added[s.Name] || deg[s.Name] != 0 {
				continue
			}
			added[s.Name] = true
			order = append(order, s.Name)
			for _, n := range out[s.Name] {
				deg[n]--
			}
			progressed = true
		}
		if !progressed {
			break
		}
	}
	if len(order) != len(stages) {
		return nil, fmt.Errorf("cycle detected in stage graph")
	}
	return order, nil
}
