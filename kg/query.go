package kg

// Graph query utilities over a flat edge list. The graph is small (hundreds of
// nodes), so every query is a linear scan; none of these functions error, and
// an unknown slug yields empty results. All traversals carry a visited set so a
// cycle terminates instead of looping.

// Parents returns the parent slugs of every edge whose child is slug.
func Parents(slug string, edges []Edge) []string {
	var parents []string
	for _, e := range edges {
		if e.ChildSlug == slug {
			parents = append(parents, e.ParentSlug)
		}
	}
	return parents
}

// Children returns the child slugs of every edge whose parent is slug.
func Children(slug string, edges []Edge) []string {
	var children []string
	for _, e := range edges {
		if e.ParentSlug == slug {
			children = append(children, e.ChildSlug)
		}
	}
	return children
}

// Ancestors returns every slug reachable from slug by walking edges in the
// parent direction.
func Ancestors(slug string, edges []Edge) map[string]struct{} {
	return reachable(slug, edges, Parents)
}

// Descendants returns every slug reachable from slug by walking edges in the
// child direction.
func Descendants(slug string, edges []Edge) map[string]struct{} {
	return reachable(slug, edges, Children)
}

func reachable(slug string, edges []Edge, next func(string, []Edge) []string) map[string]struct{} {
	visited := map[string]struct{}{slug: {}}
	queue := []string{slug}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, n := range next(current, edges) {
			if _, seen := visited[n]; seen {
				continue
			}
			visited[n] = struct{}{}
			queue = append(queue, n)
		}
	}
	delete(visited, slug)
	return visited
}

// LearningPath returns slug and all its transitive prerequisites, ordered so
// that every parent precedes its children (Kahn's algorithm over the induced
// ancestor subgraph). Ties may come out in any valid order. If the subgraph
// contains a cycle, the cyclic portion never reaches in-degree zero and is
// omitted from the result; that is accepted behavior, not an error.
func LearningPath(slug string, edges []Edge) []string {
	inSubgraph := map[string]struct{}{slug: {}}
	// Discovery order keeps the output deterministic for a given input.
	order := []string{slug}
	queue := []string{slug}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, p := range Parents(current, edges) {
			if _, seen := inSubgraph[p]; seen {
				continue
			}
			inSubgraph[p] = struct{}{}
			order = append(order, p)
			queue = append(queue, p)
		}
	}

	indegree := make(map[string]int, len(order))
	for _, n := range order {
		indegree[n] = 0
	}
	for _, e := range edges {
		_, parentIn := inSubgraph[e.ParentSlug]
		_, childIn := inSubgraph[e.ChildSlug]
		if parentIn && childIn {
			indegree[e.ChildSlug]++
		}
	}

	var ready []string
	for _, n := range order {
		if indegree[n] == 0 {
			ready = append(ready, n)
		}
	}

	path := make([]string, 0, len(order))
	for len(ready) > 0 {
		current := ready[0]
		ready = ready[1:]
		path = append(path, current)
		for _, e := range edges {
			if e.ParentSlug != current {
				continue
			}
			if _, in := inSubgraph[e.ChildSlug]; !in {
				continue
			}
			indegree[e.ChildSlug]--
			if indegree[e.ChildSlug] == 0 {
				ready = append(ready, e.ChildSlug)
			}
		}
	}
	return path
}
