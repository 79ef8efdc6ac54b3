package capture

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dbehnke/dmr-lc/internal/testhelpers"
	"github.com/dbehnke/dmr-lc/pkg/bits"
	"github.com/dbehnke/dmr-lc/pkg/dibit"
	"github.com/dbehnke/dmr-lc/pkg/edac"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rotated returns the dibits a receiver locked at lock would see for b
func rotated(b *bits.BitField, lock dibit.CarrierLock) string {
	var inverse dibit.CarrierLock
	switch lock {
	case dibit.Plus90:
		inverse = dibit.Minus90
	case dibit.Minus90:
		inverse = dibit.Plus90
	default:
		inverse = lock
	}

	var ds []dibit.Dibit
	for i := 0; i < b.Size(); i += 2 {
		second := i+1 < b.Size() && b.Get(i+1)
		ds = append(ds, inverse.Correct(dibit.FromBits(b.Get(i), second)))
	}
	return FormatDibits(ds)
}

func TestParse_AllPayloadForms(t *testing.T) {
	full := testhelpers.FullLC(0x00, 0x00)
	full.SetInt(24, 47, 91)
	testhelpers.SealFull(full, edac.VoiceMask)

	embedded := testhelpers.SealEmbedded(testhelpers.EmbeddedLC(0x03, 0x00))
	short := testhelpers.SealShort(testhelpers.ShortLC(0x1))

	doc := `
name: sample
source: unit test
bursts:
  - timestamp: 1000
    timeslot: 0
    kind: full
    hex: "` + full.Hex() + `"
  - timestamp: 1060
    timeslot: 1
    kind: embedded
    bits: "` + embedded.String() + `"
  - timestamp: 1090
    timeslot: 1
    kind: short
    lock: PLUS_90
    dibits: "` + rotated(short, dibit.Plus90) + `"
  - timestamp: 1120
    timeslot: 0
    kind: embedded
    lock: INVERTED
    dibits: "` + rotated(embedded, dibit.Inverted) + `"
`
	c, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, "sample", c.Name)
	require.Len(t, c.Bursts, 4)

	want := []*bits.BitField{full, embedded, short, embedded}
	for i, b := range c.Bursts {
		f, err := b.BitField()
		require.NoError(t, err, "burst %d", i)
		assert.Equal(t, want[i].String(), f.String(), "burst %d", i)
	}
	assert.Equal(t, int64(1090), c.Bursts[2].Timestamp)
	assert.Equal(t, KindShort, c.Bursts[2].Kind)
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		burst string
		want  string
	}{
		{"unknown kind", "kind: voice\n    hex: \"00\"", "unknown kind"},
		{"bad timeslot", "kind: short\n    timeslot: 2\n    hex: \"000000000\"", "timeslot"},
		{"no payload", "kind: short", ErrNoPayload.Error()},
		{"two payloads", "kind: short\n    hex: \"00\"\n    bits: \"0\"", "only one"},
		{"lock without dibits", "kind: short\n    hex: \"00\"\n    lock: INVERTED", "lock only"},
		{"bad lock", "kind: short\n    dibits: \"0\"\n    lock: SIDEWAYS", "unknown carrier lock"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader("bursts:\n  - " + tt.burst + "\n"))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Contains(t, err.Error(), "burst 0")
		})
	}

	_, err := Parse(strings.NewReader("bursts: [unterminated"))
	assert.Error(t, err)
}

func TestBurst_BitFieldSizeErrors(t *testing.T) {
	_, err := Burst{Kind: KindFull, Hex: "00"}.BitField()
	assert.Error(t, err)

	_, err = Burst{Kind: KindShort, Bits: "0101"}.BitField()
	assert.ErrorContains(t, err, "needs 36 bits")

	_, err = Burst{Kind: KindShort, Dibits: "0123"}.BitField()
	assert.ErrorContains(t, err, "needs 18 dibits")

	_, err = Burst{Kind: KindShort, Dibits: "0124"}.BitField()
	assert.ErrorContains(t, err, "invalid dibit")
}

func TestParse_EmptyDocument(t *testing.T) {
	c, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, c.Bursts)
}

func TestLoadAndWrite_RoundTrip(t *testing.T) {
	in := &Capture{
		Name: "roundtrip",
		Bursts: []Burst{
			{Timestamp: 1, Timeslot: 0, Kind: KindTerminator, Hex: "000000000000000000999999"},
			{Timestamp: 2, Timeslot: 1, Kind: KindShort, Dibits: "000000000000000000", Lock: "MINUS_90"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, in))

	path := filepath.Join(t.TempDir(), "capture.yaml")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	out, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to open capture")
}
