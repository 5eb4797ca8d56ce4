package sink

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryGetPutScan(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Put(Isomorphism, EncodeI64(42), EncodeI16(7)))

	v, ok, err := m.Get(Isomorphism, EncodeI64(42))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, EncodeI16(7), v)

	_, ok, err = m.Get(Isomorphism, EncodeI64(43))
	require.NoError(t, err)
	require.False(t, ok)

	seen := 0
	require.NoError(t, m.Scan(Isomorphism, func(key, value []byte) error {
		seen++
		return nil
	}))
	require.Equal(t, 1, seen)
}

func TestBulkLoadRoundTrips(t *testing.T) {
	pairs := map[string]string{"a": "1", "bb": "22", "ccc": "333"}

	var buf bytes.Buffer
	err := WriteBulk(&buf, func(yield func(key, value []byte) error) error {
		for k, v := range pairs {
			if err := yield([]byte(k), []byte(v)); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	m := NewMemory()
	require.NoError(t, m.BulkLoad(Metric, bytes.NewReader(buf.Bytes())))

	for k, want := range pairs {
		got, ok, err := m.Get(Metric, []byte(k))
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, want, string(got))
	}
}

func TestBlueprintKeyRoundTrip(t *testing.T) {
	key := BlueprintKey{Past: 123456, Present: 42, Choices: 9, Edge: 3}
	got := DecodeBlueprintKey(EncodeBlueprintKey(key))
	require.Equal(t, key, got)
}

func TestBlueprintRowRoundTrip(t *testing.T) {
	row := BlueprintRow{W: 1.5, R: -2.25, V: 0.75, C: 9}
	got := DecodeBlueprintRow(EncodeBlueprintRow(row))
	require.Equal(t, row, got)
}

func TestAbstractionRowRoundTrip(t *testing.T) {
	row := AbstractionRow{Street: 2, Population: 1000, Equity: 0.42}
	got := DecodeAbstractionRow(EncodeAbstractionRow(row))
	require.Equal(t, row, got)
}

func TestTransitionKeyRoundTrip(t *testing.T) {
	prev, next := DecodeTransitionKey(EncodeTransitionKey(0x0203, 0x0307))
	require.Equal(t, int16(0x0203), prev)
	require.Equal(t, int16(0x0307), next)
}

func TestStreetRowRoundTrip(t *testing.T) {
	row := StreetRow{NObs: 1286792, NAbs: 128}
	require.Equal(t, row, DecodeStreetRow(EncodeStreetRow(row)))
}

func TestTriangularPairIDIsOrderInsensitive(t *testing.T) {
	require.Equal(t, TriangularPairID(3, 9), TriangularPairID(9, 3))
	require.NotEqual(t, TriangularPairID(3, 9), TriangularPairID(3, 8))
	// hi*(hi+1)/2 + lo
	require.Equal(t, int32(9*10/2+3), TriangularPairID(3, 9))
}

func TestF32RoundTrip(t *testing.T) {
	require.Equal(t, float32(0.625), DecodeF32(EncodeF32(0.625)))
}

func TestSaveLoadJSONRoundTrips(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Put(Epoch, []byte("current"), EncodeI64(77)))
	require.NoError(t, m.Put(Blueprint, EncodeBlueprintKey(BlueprintKey{Past: 1, Present: 2, Choices: 3, Edge: 4}), EncodeBlueprintRow(BlueprintRow{W: 1, R: 2, V: 3, C: 4})))

	path := filepath.Join(t.TempDir(), "sink.json")
	require.NoError(t, m.SaveJSON(path))
	require.FileExists(t, path)

	loaded, err := LoadJSON(path)
	require.NoError(t, err)

	v, ok, err := loaded.Get(Epoch, []byte("current"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, EncodeI64(77), v)

	_, err = os.Stat(path)
	require.NoError(t, err)
}
