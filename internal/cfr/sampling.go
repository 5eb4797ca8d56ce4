package cfr

import "math/rand"

// Scheme decides, at a given node, which child edges get expanded during a
// single training iteration's tree walk. t is the current training epoch
// (needed by Pluribus's warm-up window); walker is the epoch's traversing
// player (cfr.Walker(t)); player is the acting player at a Choice node, or
// -1 at a Chance node.
type Scheme interface {
	Branches(t, walker, player int, kind Kind, edges []Edge, info Info, profile *Profile, depth int, rng *rand.Rand) []Edge
}

func sampleOne(edges []Edge, weight func(Edge) float64, rng *rand.Rand) Edge {
	total := 0.0
	weights := make([]float64, len(edges))
	for i, e := range edges {
		weights[i] = weight(e)
		total += weights[i]
	}
	if total <= 0 {
		return edges[rng.Intn(len(edges))]
	}
	r := rng.Float64() * total
	acc := 0.0
	for i, w := range weights {
		acc += w
		if acc >= r {
			return edges[i]
		}
	}
	return edges[len(edges)-1]
}

// WeightedEdge is an optional Edge capability: a Chance node whose branches
// carry fixed, non-uniform probabilities (e.g. a subgame's Meta-phase world
// selection, per §4.8) implements it so pickChance samples by weight
// instead of treating every branch as equally likely.
type WeightedEdge interface {
	Weight() float64
}

// pickChance draws one of a Chance node's edges: uniformly, unless every
// edge implements WeightedEdge, in which case it samples proportional to
// Weight().
func pickChance(edges []Edge, rng *rand.Rand) Edge {
	if _, ok := edges[0].(WeightedEdge); ok {
		return sampleOne(edges, func(e Edge) float64 { return e.(WeightedEdge).Weight() }, rng)
	}
	return edges[rng.Intn(len(edges))]
}

// External samples opponent and chance branches, expands the walker's
// branches in full.
type External struct{}

func (External) Branches(t, walker, player int, kind Kind, edges []Edge, info Info, profile *Profile, depth int, rng *rand.Rand) []Edge {
	if kind == Chance {
		return []Edge{pickChance(edges, rng)}
	}
	if player == walker {
		return edges
	}
	return []Edge{sampleOne(edges, func(e Edge) float64 { return profile.Sampling(info, e) }, rng)}
}

// Targeted expands the walker in full and samples each opponent branch by
// the current iterated policy mixed with an exploration floor, so a
// near-zero-probability opponent line is still visited occasionally.
type Targeted struct {
	Curiosity float64 // exploration floor; 0 falls back to the package default
}

func (s Targeted) Branches(t, walker, player int, kind Kind, edges []Edge, info Info, profile *Profile, depth int, rng *rand.Rand) []Edge {
	if kind == Chance {
		return []Edge{pickChance(edges, rng)}
	}
	if player == walker {
		return edges
	}
	floor := s.Curiosity
	if floor <= 0 {
		floor = curiosity
	}
	n := float64(len(edges))
	return []Edge{sampleOne(edges, func(e Edge) float64 {
		return (1-floor)*profile.Iterated(info, e) + floor/n
	}, rng)}
}

// Vanilla expands every branch at every node: no sampling at all.
type Vanilla struct{}

func (Vanilla) Branches(t, walker, player int, kind Kind, edges []Edge, info Info, profile *Profile, depth int, rng *rand.Rand) []Edge {
	return edges
}

// Subgame is depth-limited: it behaves like External, except expansion stops
// at any Chance node once depth exceeds MaxDepth (MAX_DEPTH_SUBGAME),
// returning no children so the walk treats the node as a leaf. depth counts
// Chance nodes only (see walk.go), so MaxDepth==0 (the zero value) means
// "stop at the first chance node past the subgame root" — exactly the
// augmented game's Meta-then-stop-at-next-draw shape from §4.8.
type Subgame struct {
	MaxDepth int
}

func (s Subgame) Branches(t, walker, player int, kind Kind, edges []Edge, info Info, profile *Profile, depth int, rng *rand.Rand) []Edge {
	if kind == Chance {
		if depth > s.MaxDepth {
			return nil
		}
		return []Edge{pickChance(edges, rng)}
	}
	if player == walker {
		return edges
	}
	return []Edge{sampleOne(edges, func(e Edge) float64 { return profile.Sampling(info, e) }, rng)}
}

// Pruning drops a walker node's branches whose cumulative regret sits below
// Threshold, falling back to the full branch set if that would drop every
// edge.
type Pruning struct {
	Threshold float64
}

func (p Pruning) Branches(t, walker, player int, kind Kind, edges []Edge, info Info, profile *Profile, depth int, rng *rand.Rand) []Edge {
	if kind == Chance {
		return []Edge{pickChance(edges, rng)}
	}
	if player != walker {
		return []Edge{sampleOne(edges, func(e Edge) float64 { return profile.Sampling(info, e) }, rng)}
	}
	var kept []Edge
	for _, e := range edges {
		if profile.regretOf(info, e) >= p.Threshold {
			kept = append(kept, e)
		}
	}
	if len(kept) == 0 {
		return edges
	}
	return kept
}

// regretOf reads R(info, edge) without going through Iterated's
// regret-matching+ normalization; used by Pruning to compare against a raw
// threshold.
func (p *Profile) regretOf(info Info, edge Edge) float64 {
	e := p.entryFor(info)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.encounter[edgeKey(edge)].R
}

// Pluribus layers a warm-up period (no pruning for the first Warmup epochs)
// and a fixed small probability Explore of ignoring the prune entirely on
// top of Pruning, per §4.7: "pruning plus a warm-up period (no pruning for
// first W epochs) plus probabilistic 'explore anyway' with fixed small
// probability ε."
type Pluribus struct {
	Threshold float64
	Warmup    int
	Explore   float64
}

func (p Pluribus) Branches(t, walker, player int, kind Kind, edges []Edge, info Info, profile *Profile, depth int, rng *rand.Rand) []Edge {
	if kind == Chance {
		return []Edge{pickChance(edges, rng)}
	}
	if player != walker {
		return []Edge{sampleOne(edges, func(e Edge) float64 { return profile.Sampling(info, e) }, rng)}
	}
	if t < p.Warmup || rng.Float64() < p.Explore {
		return edges
	}
	return Pruning{Threshold: p.Threshold}.Branches(t, walker, player, kind, edges, info, profile, depth, rng)
}
