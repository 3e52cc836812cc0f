// Package rpieeprom implements the Raspberry Pi HAT EEPROM binary format
// (https://github.com/raspberrypi/hats/blob/master/eeprom-format.md): a
// small signature-prefixed header followed by a sequence of typed,
// length-prefixed "atoms", two of which (vendor info and GPIO map) are
// defined here. It exists as a worked acceptance example for the
// construct package, exercising Contextual-sized strings, BitFields, and
// a Switch dispatched on a sibling integer field, plus a CRC-16 trailer
// computed the way the upstream tooling computes it: over the atom's
// bytes up to (not including) the checksum field itself.
package rpieeprom

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
	"github.com/sigurn/crc16"

	construct "github.com/njchilds90/binstruct"
)

func asInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case uint64:
		return int64(n), nil
	case uint:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("expected an integer, got %T", v)
	}
}

func contextualLength(key string) construct.ContextualFactory {
	return func(ctx *construct.Context) (construct.Construct, error) {
		v, err := ctx.MustGet(key)
		if err != nil {
			return nil, err
		}
		n, err := asInt64(v)
		if err != nil {
			return nil, err
		}
		return construct.String(int(n), "", 0, construct.PadRight), nil
	}
}

// VendorInfoAtomData is atom type 1: a vendor/product UUID plus two
// length-prefixed ASCII strings naming the vendor and the product.
var VendorInfoAtomData = construct.NewStruct(false,
	construct.F("uuid", construct.NewBytes(16)),
	construct.F("pid", construct.NewInteger(2, "little", false)),
	construct.F("pver", construct.NewInteger(2, "little", false)),
	construct.F("vslen", construct.NewInteger(1, "big", false)),
	construct.F("pslen", construct.NewInteger(1, "big", false)),
	construct.F("vstr", construct.NewContextual(contextualLength("vslen"))),
	construct.F("pstr", construct.NewContextual(contextualLength("pslen"))),
)

var (
	bankDrive = construct.MustNewBitFields("hysteresis:2, slew:2, drive:4", false)
	power     = construct.MustNewBitFields("_reserved:6, back_power:2", false)
	pin       = construct.MustNewBitFields("is_used:1, pulltype:2, _reserved:2, func_sel:3", false)
)

// GPIOMapAtomData is atom type 2: bank-wide drive/hysteresis/slew
// settings, a reserved+back-power byte, and one bit-packed descriptor per
// of the Pi's 28 GPIO pins.
var GPIOMapAtomData = construct.NewStruct(false,
	construct.F("bank_drive", bankDrive),
	construct.F("power", power),
	construct.F("pins", construct.NewRepeatExactly(pin, 28, nil)),
)

func atomDataKey(ctx *construct.Context) (any, error) {
	v, err := ctx.MustGet("type")
	if err != nil {
		return nil, err
	}
	return asInt64(v)
}

// Atom is one EEPROM record: a 2-byte type tag, a count, a little-endian
// 4-byte data length, a type-dependent payload, and a CRC-16 trailer.
var Atom = construct.NewStruct(false,
	construct.F("type", construct.NewInteger(2, "little", false)),
	construct.F("count", construct.NewInteger(2, "little", false)),
	construct.F("dlen", construct.NewInteger(4, "little", false)),
	construct.F("data", construct.NewSwitch(atomDataKey, map[any]construct.Construct{
		int64(1): VendorInfoAtomData,
		int64(2): GPIOMapAtomData,
	}, nil)),
	construct.F("crc", construct.NewBytes(2)),
)

func numAtoms(ctx *construct.Context) (construct.Construct, error) {
	v, err := ctx.MustGet("numatoms")
	if err != nil {
		return nil, err
	}
	n, err := asInt64(v)
	if err != nil {
		return nil, err
	}
	return construct.NewRepeatExactly(Atom, int(n), nil), nil
}

// EEPROMData is the full image: the four-byte "R-Pi" signature, a
// version/reserved byte pair, an atom count, the image's total byte
// length, and the atoms themselves.
var EEPROMData = construct.NewStruct(false,
	construct.F("signature", construct.NewConstBytes([]byte("R-Pi"))),
	construct.F("version", construct.NewInteger(1, "little", false)),
	construct.F("_rsvd0", construct.NewInteger(1, "little", false)),
	construct.F("numatoms", construct.NewInteger(2, "little", false)),
	construct.F("eeplen", construct.NewInteger(4, "little", false)),
	construct.F("atoms", construct.NewContextual(numAtoms)),
)

var crcTable = crc16.MakeTable(crc16.CRC16_ARC)

// atomCRC computes the CRC-16/ARC of an atom's bytes, excluding its own
// trailing checksum field — the same algorithm the upstream eepmake/
// eepdump tools use (crcmod.predefined.mkCrcFun('crc-16')).
func atomCRC(atomBytesWithoutCRC []byte) uint16 {
	return crc16.Checksum(atomBytesWithoutCRC, crcTable)
}

// NewVendorUUID returns a fresh random vendor/product UUID suitable for
// VendorInfoAtomData's uuid field.
func NewVendorUUID() []byte {
	id := uuid.New()
	return id[:]
}

// BuildAtom builds a complete atom: it first builds payload alone to
// learn its byte length (for dlen), then builds the full atom with a
// placeholder checksum, then patches in the real CRC-16 computed over
// everything before it.
func BuildAtom(atomType, count int, payloadConstruct construct.Construct, payload any) ([]byte, error) {
	payloadBytes, err := construct.Build(payloadConstruct, payload, nil)
	if err != nil {
		return nil, err
	}
	dlen := len(payloadBytes) + 2
	raw, err := construct.Build(Atom, map[string]any{
		"type":  atomType,
		"count": count,
		"dlen":  dlen,
		"data":  payload,
		"crc":   []byte{0, 0},
	}, nil)
	if err != nil {
		return nil, err
	}
	crc := atomCRC(raw[:len(raw)-2])
	binary.LittleEndian.PutUint16(raw[len(raw)-2:], crc)
	return raw, nil
}

// VerifyAtomCRC reports whether raw's trailing two bytes match the
// CRC-16/ARC of everything preceding them.
func VerifyAtomCRC(raw []byte) error {
	if len(raw) < 2 {
		return fmt.Errorf("rpieeprom: atom too short to carry a checksum: %d bytes", len(raw))
	}
	want := binary.LittleEndian.Uint16(raw[len(raw)-2:])
	got := atomCRC(raw[:len(raw)-2])
	if want != got {
		return fmt.Errorf("rpieeprom: wrong atom checksum, parsed %#04x but expected %#04x", want, got)
	}
	return nil
}

// ParseAtom decodes and checksum-verifies one atom's worth of bytes.
func ParseAtom(raw []byte) (map[string]any, error) {
	obj, err := construct.Parse(Atom, raw, nil)
	if err != nil {
		return nil, err
	}
	if err := VerifyAtomCRC(raw); err != nil {
		return nil, err
	}
	m, ok := obj.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("rpieeprom: unexpected atom shape %T", obj)
	}
	return m, nil
}

// BuildEEPROM builds a full image out of already CRC-checksummed atoms
// (as produced by BuildAtom), computing eeplen from the actual encoded
// size rather than trusting a caller-supplied value — the upstream
// example script leaves eeplen stale after the fact; this corrects that.
func BuildEEPROM(version, rsvd0 int, atoms []any) ([]byte, error) {
	draft, err := construct.Build(EEPROMData, map[string]any{
		"version":  version,
		"_rsvd0":   rsvd0,
		"numatoms": len(atoms),
		"eeplen":   0,
		"atoms":    atoms,
	}, nil)
	if err != nil {
		return nil, err
	}
	return construct.Build(EEPROMData, map[string]any{
		"version":  version,
		"_rsvd0":   rsvd0,
		"numatoms": len(atoms),
		"eeplen":   len(draft),
		"atoms":    atoms,
	}, nil)
}

// ParseEEPROM decodes a full image and checksum-verifies every atom
// within it by re-slicing the original bytes per atom's dlen.
func ParseEEPROM(raw []byte) (map[string]any, error) {
	obj, err := construct.Parse(EEPROMData, raw, nil)
	if err != nil {
		return nil, err
	}
	m, ok := obj.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("rpieeprom: unexpected EEPROM shape %T", obj)
	}
	atoms, _ := m["atoms"].([]any)
	offset := 12 // signature(4) + version(1) + _rsvd0(1) + numatoms(2) + eeplen(4)
	for _, a := range atoms {
		atomMap, ok := a.(map[string]any)
		if !ok {
			continue
		}
		dlen, err := asInt64(atomMap["dlen"])
		if err != nil {
			return nil, err
		}
		atomLen := 8 + int(dlen) // type+count+dlen header is 8 bytes, dlen already counts payload+crc
		if offset+atomLen > len(raw) {
			return nil, fmt.Errorf("rpieeprom: atom at offset %d overruns image of length %d", offset, len(raw))
		}
		if err := VerifyAtomCRC(raw[offset : offset+atomLen]); err != nil {
			return nil, err
		}
		offset += atomLen
	}
	return m, nil
}
