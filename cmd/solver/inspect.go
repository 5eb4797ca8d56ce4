package main

import (
	"encoding/binary"
	"fmt"

	"github.com/lox/holdem-cfr/internal/card"
	"github.com/lox/holdem-cfr/internal/game"
	"github.com/lox/holdem-cfr/internal/sink"
)

// InspectCmd dumps a persisted sink.Memory JSON table in the text formats
// §6 describes: isomorphism rows render their packed observation keys back
// into card text via decodeObservationKey, abstraction ids render via
// card.AbstractionFromI16, blueprint rows render their composite key plus
// the stored Encounter fields.
type InspectCmd struct {
	Path  string `arg:"" help:"path to a sink JSON dump (see cluster --out)"`
	Table string `arg:"" help:"table to dump (isomorphism|abstraction|metric|transitions|blueprint|epoch|street)"`
}

func (cmd *InspectCmd) Run() error {
	store, err := sink.LoadJSON(cmd.Path)
	if err != nil {
		return fmt.Errorf("inspect: load %s: %w", cmd.Path, err)
	}

	table := sink.Table(cmd.Table)
	count := 0
	err = store.Scan(table, func(key, value []byte) error {
		count++
		printRow(table, key, value)
		return nil
	})
	if err != nil {
		return fmt.Errorf("inspect: scan %s: %w", table, err)
	}
	fmt.Printf("-- %d rows in %s --\n", count, table)
	return nil
}

func printRow(table sink.Table, key, value []byte) {
	switch table {
	case sink.Isomorphism:
		obs := decodeObservationKey(key)
		abs := card.AbstractionFromI16(int16(binary.LittleEndian.Uint16(value)))
		fmt.Printf("%s -> %s\n", obs, abs)
	case sink.Abstraction:
		abs := card.AbstractionFromI16(int16(binary.LittleEndian.Uint16(key)))
		row := sink.DecodeAbstractionRow(value)
		fmt.Printf("%s: street=%d population=%d equity=%.4f\n", abs, row.Street, row.Population, row.Equity)
	case sink.Metric:
		id := int32(binary.LittleEndian.Uint32(key))
		fmt.Printf("pair %d: distance=%.6f\n", id, sink.DecodeF32(value))
	case sink.Transitions:
		prev, next := sink.DecodeTransitionKey(key)
		fmt.Printf("%s -> %s: mass=%.6f\n",
			card.AbstractionFromI16(prev), card.AbstractionFromI16(next), sink.DecodeF32(value))
	case sink.Street:
		street := card.Street(binary.LittleEndian.Uint16(key))
		row := sink.DecodeStreetRow(value)
		fmt.Printf("%s: nobs=%d nabs=%d\n", street, row.NObs, row.NAbs)
	case sink.Epoch:
		fmt.Printf("%s = %d\n", key, int64(binary.LittleEndian.Uint64(value)))
	case sink.Blueprint:
		k := sink.DecodeBlueprintKey(key)
		row := sink.DecodeBlueprintRow(value)
		fmt.Printf("past=%d present=%s choices=%d edge=%s: W=%.4f R=%.4f V=%.4f C=%d\n",
			k.Past, card.AbstractionFromI16(k.Present), k.Choices, game.EdgeFromI64(k.Edge), row.W, row.R, row.V, row.C)
	default:
		fmt.Printf("%x -> %x\n", key, value)
	}
}

// decodeObservationKey best-effort decodes an isomorphism table key back
// into card text; the stored key is a raw little-endian i64 packed
// observation (card.Observation.ToI64), street-agnostic, so this renders the
// packed card bytes directly rather than reconstructing a street-typed
// Observation (which needs the street to split hole from board).
func decodeObservationKey(key []byte) string {
	var v int64
	for i := 0; i < len(key) && i < 8; i++ {
		v |= int64(key[i]) << (8 * uint(i))
	}
	var cards []card.Card
	for i := 0; i < 8; i++ {
		b := byte(v >> (8 * uint(i)))
		if b == 0 {
			break
		}
		cards = append(cards, card.Card(b-1))
	}
	return card.NewHand(cards...).String()
}
