package cfr

import "math/rand"

// Value is a per-player utility vector for an N-player game; this package
// targets heads-up extensive-form games, so it is always length 2, but
// nothing below assumes that beyond the array size.
type Value [2]float64

// Walk runs one MCCFR iteration from g, starting at depth 0, updating
// profile's regrets/weights for every info set visited by the walker and
// returning the sampled value for each player.
//
// This is the generic tree-walk: encode the current node's Info, ask scheme
// which branches to expand, recurse, then fold the children's values back
// into a counterfactual regret and policy-weight increment at the walker's
// own info sets. Grounded in the shape of ehrlich-b-poker's
// pkg/solver/mccfr.go recursive outcome-sampling walk, generalized from its
// concrete poker tree to the Game/Info/Encoder family.
func Walk(g Game, enc Encoder, profile *Profile, scheme Scheme, t int, rng *rand.Rand, regretSchedule, policySchedule Schedule) Value {
	return walk(g, enc, profile, scheme, t, rng, regretSchedule, policySchedule, 0, Walker(t), 1.0)
}

// depth passed to Scheme.Branches counts Chance nodes only (it increments
// on the Chance branch below, nowhere else), so Subgame's depth limit bounds
// how many chance draws deep a walk goes rather than raw tree depth —
// a Choice-only prefix (e.g. a subgame's forced-replay phase) never counts
// against it.
func walk(g Game, enc Encoder, profile *Profile, scheme Scheme, t int, rng *rand.Rand, regretSchedule, policySchedule Schedule, depth, walkerPlayer int, reachWalker float64) Value {
	kind, player := g.Turn()

	if kind == Terminal {
		return Value{g.Payoff(0), g.Payoff(1)}
	}

	edges := g.Choices()
	if len(edges) == 0 {
		return Value{g.Payoff(0), g.Payoff(1)}
	}

	if kind == Chance {
		branches := scheme.Branches(t, walkerPlayer, -1, kind, edges, nil, profile, depth, rng)
		if len(branches) == 0 {
			// Subgame depth limit: treat as a leaf.
			return Value{g.Payoff(0), g.Payoff(1)}
		}
		child := g.Apply(branches[0])
		return walk(child, enc, profile, scheme, t, rng, regretSchedule, policySchedule, depth+1, walkerPlayer, reachWalker)
	}

	info := enc.Info(g)
	branches := scheme.Branches(t, walkerPlayer, player, kind, edges, info, profile, depth, rng)

	if player != walkerPlayer {
		// Opponent node: fold over every expanded branch weighted by the
		// opponent's current policy (only Vanilla expands several; the
		// sampling schemes expand exactly one, which degenerates to a
		// plain pass-through). Only the walker's own info sets accumulate
		// regret, so no Profile.Update happens here.
		var nodeValue Value
		for _, e := range branches {
			p := profile.Iterated(info, e)
			child := g.Apply(e)
			v := walk(child, enc, profile, scheme, t, rng, regretSchedule, policySchedule, depth, walkerPlayer, reachWalker)
			if len(branches) == 1 {
				return v
			}
			nodeValue[0] += p * v[0]
			nodeValue[1] += p * v[1]
		}
		return nodeValue
	}

	// Walker node: recurse into every expanded branch, track each edge's
	// value, then fold them into this info's regret and policy-weight
	// update. reachWalker is this info's own reach probability under the
	// walker's current policy (pi^sigma_walker(I) in the standard CFR notation).
	childValues := make(map[string]Value, len(branches))
	var nodeValue Value
	for _, e := range branches {
		p := profile.Iterated(info, e)
		child := g.Apply(e)
		v := walk(child, enc, profile, scheme, t, rng, regretSchedule, policySchedule, depth, walkerPlayer, reachWalker*p)
		childValues[edgeKey(e)] = v
		nodeValue[0] += p * v[0]
		nodeValue[1] += p * v[1]
	}

	for _, e := range branches {
		v := childValues[edgeKey(e)]
		regretIncrement := v[walkerPlayer] - nodeValue[walkerPlayer]
		policyIncrement := reachWalker * profile.Iterated(info, e)
		profile.Update(info, e, t, regretIncrement, policyIncrement, v[walkerPlayer], regretSchedule, policySchedule)
	}

	return nodeValue
}
