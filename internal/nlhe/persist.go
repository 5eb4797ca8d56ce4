package nlhe

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/lox/holdem-cfr/internal/cfr"
	"github.com/lox/holdem-cfr/internal/game"
	"github.com/lox/holdem-cfr/internal/sink"
)

// SaveProfile writes every accumulated (info, edge) encounter as a blueprint
// table row keyed by (past, present, choices, edge), per the persisted state
// layout. Info keys that aren't NLHE-shaped (a subgame's prefix infos, say)
// are skipped: they belong to a transient local solve, not the blueprint.
func SaveProfile(profile *cfr.Profile, store sink.KV) error {
	var firstErr error
	profile.Each(func(infoKey, edgeKey string, enc cfr.Encounter) {
		if firstErr != nil {
			return
		}
		past, present, choices, ok := parseInfoKey(infoKey)
		if !ok {
			return
		}
		edge, err := game.ParseEdge(edgeKey)
		if err != nil {
			return
		}
		key := sink.EncodeBlueprintKey(sink.BlueprintKey{
			Past:    past,
			Present: present,
			Choices: choices,
			Edge:    edge.ToI64(),
		})
		row := sink.EncodeBlueprintRow(sink.BlueprintRow{
			W: float32(enc.W),
			R: float32(enc.R),
			V: float32(enc.V),
			C: enc.C,
		})
		if err := store.Put(sink.Blueprint, key, row); err != nil {
			firstErr = fmt.Errorf("nlhe: save blueprint row: %w", err)
		}
	})
	return firstErr
}

// LoadProfile hydrates profile from the blueprint table written by
// SaveProfile.
func LoadProfile(store sink.KV, profile *cfr.Profile) error {
	return store.Scan(sink.Blueprint, func(key, value []byte) error {
		k := sink.DecodeBlueprintKey(key)
		row := sink.DecodeBlueprintRow(value)
		infoKey := fmt.Sprintf("%d|%d|%d", uint64(k.Past), k.Present, uint64(k.Choices))
		edge := game.EdgeFromI64(k.Edge)
		profile.Seed(infoKey, edge.String(), cfr.Encounter{
			W: float64(row.W),
			R: float64(row.R),
			V: float64(row.V),
			C: row.C,
		})
		return nil
	})
}

// SaveEpoch records the training epoch counter in the epoch table under the
// "current" key.
func SaveEpoch(store sink.KV, epoch int64) error {
	return store.Put(sink.Epoch, []byte("current"), sink.EncodeI64(epoch))
}

// LoadEpoch reads back the epoch counter; zero when never saved.
func LoadEpoch(store sink.KV) (int64, error) {
	v, ok, err := store.Get(sink.Epoch, []byte("current"))
	if err != nil || !ok {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(v)), nil
}

// parseInfoKey splits an Info.Key() string ("past|present|choices") back
// into its packed components.
func parseInfoKey(s string) (past int64, present int16, choices int64, ok bool) {
	parts := strings.SplitN(s, "|", 3)
	if len(parts) != 3 {
		return 0, 0, 0, false
	}
	pastU, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return 0, 0, 0, false
	}
	presentI, err := strconv.ParseInt(parts[1], 10, 16)
	if err != nil {
		return 0, 0, 0, false
	}
	choicesU, err := strconv.ParseUint(parts[2], 10, 64)
	if err != nil {
		return 0, 0, 0, false
	}
	return int64(pastU), int16(presentI), int64(choicesU), true
}
