package rpieeprom_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/binstruct/rpieeprom"
)

func TestVendorInfoAtomRoundTrip(t *testing.T) {
	uuidBytes := rpieeprom.NewVendorUUID()
	payload := map[string]any{
		"uuid":  uuidBytes,
		"pid":   0,
		"pver":  0,
		"vslen": 6,
		"pslen": 7,
		"vstr":  []byte("vendor"),
		"pstr":  []byte("product"),
	}

	raw, err := rpieeprom.BuildAtom(1, 0, rpieeprom.VendorInfoAtomData, payload)
	require.NoError(t, err)

	require.NoError(t, rpieeprom.VerifyAtomCRC(raw))

	parsed, err := rpieeprom.ParseAtom(raw)
	require.NoError(t, err)

	data, ok := parsed["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, uuidBytes, data["uuid"])
	assert.Equal(t, []byte("vendor"), data["vstr"])
	assert.Equal(t, []byte("product"), data["pstr"])
}

func TestAtomCRCDetectsCorruption(t *testing.T) {
	raw, err := rpieeprom.BuildAtom(1, 0, rpieeprom.VendorInfoAtomData, map[string]any{
		"uuid": rpieeprom.NewVendorUUID(), "pid": 0, "pver": 0,
		"vslen": 1, "pslen": 1, "vstr": []byte("a"), "pstr": []byte("b"),
	})
	require.NoError(t, err)

	raw[0] ^= 0xff
	assert.Error(t, rpieeprom.VerifyAtomCRC(raw))
}

func TestEEPROMRoundTrip(t *testing.T) {
	atomBytes, err := rpieeprom.BuildAtom(1, 0, rpieeprom.VendorInfoAtomData, map[string]any{
		"uuid": rpieeprom.NewVendorUUID(), "pid": 0, "pver": 0,
		"vslen": 6, "pslen": 7, "vstr": []byte("vendor"), "pstr": []byte("product"),
	})
	require.NoError(t, err)

	parsedAtom, err := rpieeprom.ParseAtom(atomBytes)
	require.NoError(t, err)

	image, err := rpieeprom.BuildEEPROM(1, 0, []any{parsedAtom})
	require.NoError(t, err)
	assert.Equal(t, []byte("R-Pi"), image[:4])

	decoded, err := rpieeprom.ParseEEPROM(image)
	require.NoError(t, err)
	assert.EqualValues(t, 1, decoded["numatoms"])
}
