package sink

import (
	"encoding/binary"
	"math"
)

// EncodeI64 / EncodeI16 / EncodeI32 encode the scalar key types §6's tables
// use, little-endian, for use as KV keys.
func EncodeI64(v int64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, uint64(v))
	return b
}

func EncodeI16(v int16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, uint16(v))
	return b
}

func EncodeI32(v int32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, uint32(v))
	return b
}

// EncodeBlueprintKey packs the blueprint table's composite key (past,
// present, choices, edge) into a fixed-width byte key.
func EncodeBlueprintKey(k BlueprintKey) []byte {
	b := make([]byte, 8+2+8+8)
	binary.LittleEndian.PutUint64(b[0:8], uint64(k.Past))
	binary.LittleEndian.PutUint16(b[8:10], uint16(k.Present))
	binary.LittleEndian.PutUint64(b[10:18], uint64(k.Choices))
	binary.LittleEndian.PutUint64(b[18:26], uint64(k.Edge))
	return b
}

// DecodeBlueprintKey reverses EncodeBlueprintKey.
func DecodeBlueprintKey(b []byte) BlueprintKey {
	return BlueprintKey{
		Past:    int64(binary.LittleEndian.Uint64(b[0:8])),
		Present: int16(binary.LittleEndian.Uint16(b[8:10])),
		Choices: int64(binary.LittleEndian.Uint64(b[10:18])),
		Edge:    int64(binary.LittleEndian.Uint64(b[18:26])),
	}
}

// EncodeAbstractionRow / DecodeAbstractionRow pack the abstraction table's
// value side.
func EncodeAbstractionRow(r AbstractionRow) []byte {
	b := make([]byte, 2+4+4)
	binary.LittleEndian.PutUint16(b[0:2], uint16(r.Street))
	binary.LittleEndian.PutUint32(b[2:6], uint32(r.Population))
	binary.LittleEndian.PutUint32(b[6:10], float32bits(r.Equity))
	return b
}

func DecodeAbstractionRow(b []byte) AbstractionRow {
	return AbstractionRow{
		Street:     int16(binary.LittleEndian.Uint16(b[0:2])),
		Population: int32(binary.LittleEndian.Uint32(b[2:6])),
		Equity:     float32frombits(binary.LittleEndian.Uint32(b[6:10])),
	}
}

// EncodeBlueprintRow / DecodeBlueprintRow pack the blueprint table's value
// side: W, R, V as f32 plus C as i32.
func EncodeBlueprintRow(r BlueprintRow) []byte {
	b := make([]byte, 4*4)
	binary.LittleEndian.PutUint32(b[0:4], float32bits(r.W))
	binary.LittleEndian.PutUint32(b[4:8], float32bits(r.R))
	binary.LittleEndian.PutUint32(b[8:12], float32bits(r.V))
	binary.LittleEndian.PutUint32(b[12:16], uint32(r.C))
	return b
}

func DecodeBlueprintRow(b []byte) BlueprintRow {
	return BlueprintRow{
		W: float32frombits(binary.LittleEndian.Uint32(b[0:4])),
		R: float32frombits(binary.LittleEndian.Uint32(b[4:8])),
		V: float32frombits(binary.LittleEndian.Uint32(b[8:12])),
		C: int32(binary.LittleEndian.Uint32(b[12:16])),
	}
}

// TriangularPairID flattens an unordered same-street abstraction pair into
// the metric table's i32 key: with hi >= lo, id = hi*(hi+1)/2 + lo.
func TriangularPairID(a, b int16) int32 {
	hi, lo := int32(a), int32(b)
	if lo > hi {
		hi, lo = lo, hi
	}
	return hi*(hi+1)/2 + lo
}

// EncodeTransitionKey packs the transitions table's (prev, next) abstraction
// pair key.
func EncodeTransitionKey(prev, next int16) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint16(b[0:2], uint16(prev))
	binary.LittleEndian.PutUint16(b[2:4], uint16(next))
	return b
}

// DecodeTransitionKey reverses EncodeTransitionKey.
func DecodeTransitionKey(b []byte) (prev, next int16) {
	return int16(binary.LittleEndian.Uint16(b[0:2])), int16(binary.LittleEndian.Uint16(b[2:4]))
}

// EncodeF32 / DecodeF32 pack the scalar f32 values (metric distances,
// transition masses).
func EncodeF32(v float32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, float32bits(v))
	return b
}

func DecodeF32(b []byte) float32 {
	return float32frombits(binary.LittleEndian.Uint32(b))
}

// EncodeStreetRow / DecodeStreetRow pack the street table's value side.
func EncodeStreetRow(r StreetRow) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint32(b[0:4], uint32(r.NObs))
	binary.LittleEndian.PutUint32(b[4:8], uint32(r.NAbs))
	return b
}

func DecodeStreetRow(b []byte) StreetRow {
	return StreetRow{
		NObs: int32(binary.LittleEndian.Uint32(b[0:4])),
		NAbs: int32(binary.LittleEndian.Uint32(b[4:8])),
	}
}

func float32bits(f float32) uint32     { return math.Float32bits(f) }
func float32frombits(b uint32) float32 { return math.Float32frombits(b) }
