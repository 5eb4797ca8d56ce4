package cfr

import (
	"hash/fnv"
	"sync"
)

// Encounter is the accumulator attached to one (info, edge) pair: cumulative
// strategy weight W, cumulative regret R, the last overwritten expected
// value V (used by depth-limited subgame search), and a visit count C.
type Encounter struct {
	W, R, V float64
	C       int32
}

// entry is one info set's row: the legal edges (fixed once first seen) plus
// per-edge Encounters, guarded by its own mutex so concurrent workers touch
// disjoint info sets without contending on a single global lock. This
// mirrors pokerforbots's sdk/solver/regret.go RegretEntry.
type entry struct {
	mu        sync.Mutex
	edges     []Edge
	encounter map[string]*Encounter
	// defaultPolicy/defaultRegret back a domain binding's per-edge default
	// priors: when an (info, edge) pair has never been visited, these floats
	// are used instead of a zero Encounter. Keyed by edgeKey(edge).
	defaultPolicy map[string]float64
	defaultRegret map[string]float64
}

func newEntry(edges []Edge) *entry {
	e := &entry{
		edges:         edges,
		encounter:     make(map[string]*Encounter, len(edges)),
		defaultPolicy: make(map[string]float64),
		defaultRegret: make(map[string]float64),
	}
	for _, edge := range edges {
		e.encounter[edgeKey(edge)] = &Encounter{}
	}
	return e
}

// shardCount matches pokerforbots's regretTableShardCount: enough shards that
// concurrent workers touching distinct info sets rarely collide on a lock.
const shardCount = 64

// Profile maps each (info, edge) to an Encounter, sharded by an FNV-1a hash
// of the info's Key() across shardCount buckets, exactly as pokerforbots's
// RegretTable shards its InfoSetKey-keyed map.
type Profile struct {
	shards      [shardCount]map[string]*entry
	mus         [shardCount]sync.RWMutex
	policyFloor float64 // strategy probability floor below which Averaged clamps up
}

// NewProfile builds an empty Profile. policyFloor is the normalization floor
// used by Averaged.
func NewProfile(policyFloor float64) *Profile {
	p := &Profile{policyFloor: policyFloor}
	for i := range p.shards {
		p.shards[i] = make(map[string]*entry)
	}
	return p
}

func shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % shardCount)
}

// entryFor returns the entry for info, creating it (with info.Choices() as
// its fixed edge set) on first access. An entry rehydrated from a snapshot
// carries encounters but no typed edge set yet; the first live access
// backfills it here from info.Choices().
func (p *Profile) entryFor(info Info) *entry {
	idx := shardIndex(info.Key())
	p.mus[idx].RLock()
	e, ok := p.shards[idx][info.Key()]
	p.mus[idx].RUnlock()
	if !ok {
		p.mus[idx].Lock()
		if existing, ok := p.shards[idx][info.Key()]; ok {
			e = existing
		} else {
			e = newEntry(info.Choices())
			p.shards[idx][info.Key()] = e
		}
		p.mus[idx].Unlock()
	}

	e.mu.Lock()
	if e.edges == nil {
		e.edges = info.Choices()
		for _, edge := range e.edges {
			if _, ok := e.encounter[edgeKey(edge)]; !ok {
				e.encounter[edgeKey(edge)] = &Encounter{}
			}
		}
	}
	e.mu.Unlock()
	return e
}

// SetDefaults installs a domain binding's per-edge default_policy /
// default_regret priors, used when an (info, edge) pair is unseen.
func (p *Profile) SetDefaults(info Info, edge Edge, defaultPolicy, defaultRegret float64) {
	e := p.entryFor(info)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.defaultPolicy[edgeKey(edge)] = defaultPolicy
	e.defaultRegret[edgeKey(edge)] = defaultRegret
}

// Averaged returns the long-run average strategy probability for (info,
// edge): W(info,edge) / sum_e W(info,e), with a small positive floor, and a
// fallback to the edge's default_policy prior when info is entirely unseen.
func (p *Profile) Averaged(info Info, edge Edge) float64 {
	e := p.entryFor(info)
	e.mu.Lock()
	defer e.mu.Unlock()

	var total float64
	var unseen = true
	for _, enc := range e.encounter {
		total += enc.W
		if enc.C > 0 {
			unseen = false
		}
	}
	if unseen {
		if dp, ok := e.defaultPolicy[edgeKey(edge)]; ok {
			return dp
		}
		return 1.0 / float64(len(e.edges))
	}
	w := e.encounter[edgeKey(edge)].W
	if total <= 0 {
		return p.policyFloor
	}
	v := w / total
	if v < p.policyFloor {
		return p.policyFloor
	}
	return v
}

// Iterated returns the current-iterate regret-matching+ policy for (info,
// edge): probability proportional to max(R(info,edge), 0), uniform over
// legal edges when all regrets are non-positive.
func (p *Profile) Iterated(info Info, edge Edge) float64 {
	e := p.entryFor(info)
	e.mu.Lock()
	defer e.mu.Unlock()
	return p.iteratedLocked(e, edge)
}

func (p *Profile) iteratedLocked(e *entry, edge Edge) float64 {
	var total float64
	for _, enc := range e.encounter {
		if enc.R > 0 {
			total += enc.R
		}
	}
	if total <= 0 {
		return 1.0 / float64(len(e.edges))
	}
	r := e.encounter[edgeKey(edge)].R
	if r <= 0 {
		return 0
	}
	return r / total
}

// curiosity is the exploration floor mixed into Sampling's policy, so
// opponent nodes sampled during training never assign literal zero
// probability to a legal edge.
const curiosity = 0.05

// Sampling returns the exploration-mixed policy used when sampling opponent
// nodes: Iterated mixed with a curiosity floor.
func (p *Profile) Sampling(info Info, edge Edge) float64 {
	n := float64(len(info.Choices()))
	return (1-curiosity)*p.Iterated(info, edge) + curiosity/n
}

// Update applies one epoch's regret and policy increments to (info, edge):
// R <- discR(R, t) + regretIncrement; W <- discW(W, t) + policyIncrement;
// V is overwritten (not accumulated); C increments by one.
func (p *Profile) Update(info Info, edge Edge, t int, regretIncrement, policyIncrement, value float64, regretSchedule, policySchedule Schedule) {
	e := p.entryFor(info)
	e.mu.Lock()
	defer e.mu.Unlock()
	enc := e.encounter[edgeKey(edge)]
	enc.R = regretSchedule.Discount(enc.R, t) + regretIncrement
	enc.W = policySchedule.Discount(enc.W, t) + policyIncrement
	enc.V = value
	enc.C++
}

// Weight returns the raw cumulative strategy weight W(info, edge), with no
// normalization or floor applied. Domain bindings that want their own
// normalization floor (e.g. NLHE's Strategy.Policy, per §4.9) read this
// directly rather than going through Averaged's own floor.
func (p *Profile) Weight(info Info, edge Edge) float64 {
	e := p.entryFor(info)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.encounter[edgeKey(edge)].W
}

// Value returns the last-overwritten V(info, edge), used by depth-limited
// subgame search's EV update.
func (p *Profile) Value(info Info, edge Edge) float64 {
	e := p.entryFor(info)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.encounter[edgeKey(edge)].V
}

// Each visits every accumulated (info, edge) encounter under the shard and
// entry locks, in unspecified order. Used by domain bindings to persist the
// profile as blueprint rows.
func (p *Profile) Each(fn func(infoKey, edgeKey string, enc Encounter)) {
	for i := range p.shards {
		p.mus[i].RLock()
		for infoKey, e := range p.shards[i] {
			e.mu.Lock()
			for ek, enc := range e.encounter {
				fn(infoKey, ek, *enc)
			}
			e.mu.Unlock()
		}
		p.mus[i].RUnlock()
	}
}

// Seed installs one (info, edge) encounter by its snapshot keys, creating
// the entry if absent; the typed edge set is backfilled lazily on the first
// live access (see entryFor).
func (p *Profile) Seed(infoKey, edgeKey string, enc Encounter) {
	idx := shardIndex(infoKey)
	p.mus[idx].Lock()
	e, ok := p.shards[idx][infoKey]
	if !ok {
		e = &entry{encounter: make(map[string]*Encounter), defaultPolicy: map[string]float64{}, defaultRegret: map[string]float64{}}
		p.shards[idx][infoKey] = e
	}
	p.mus[idx].Unlock()

	e.mu.Lock()
	copied := enc
	e.encounter[edgeKey] = &copied
	e.mu.Unlock()
}

// Walker returns the traversing player at epoch t: alternates each epoch.
func Walker(t int) int { return t % 2 }

// Schedule is a pluggable regret or policy discount rule applied before
// adding this epoch's increment.
type Schedule interface {
	Discount(value float64, t int) float64
}

// LinearSchedule applies multiplier t/(t+1) unconditionally.
type LinearSchedule struct{}

func (LinearSchedule) Discount(value float64, t int) float64 {
	if t <= 0 {
		return value
	}
	return value * float64(t) / float64(t+1)
}

// PluribusRegretSchedule applies no discount to positive regrets, t/(t+1) to
// negative ones, floored at a large negative clamp to allow recovery.
type PluribusRegretSchedule struct {
	Floor float64 // e.g. -1e6; large negative clamp
}

func (s PluribusRegretSchedule) Discount(value float64, t int) float64 {
	if value >= 0 {
		return value
	}
	discounted := value
	if t > 0 {
		discounted = value * float64(t) / float64(t+1)
	}
	if discounted < s.Floor {
		return s.Floor
	}
	return discounted
}

// LinearWeightSchedule applies multiplier t/(t+1) to all W; identical
// formula to LinearSchedule but named separately as the policy-side
// analogue.
type LinearWeightSchedule struct{}

func (LinearWeightSchedule) Discount(value float64, t int) float64 {
	return LinearSchedule{}.Discount(value, t)
}
