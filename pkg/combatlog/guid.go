package combatlog

import (
	"strconv"
	"strings"
)

// UnitType is the coarse classification of a GUID.
type UnitType uint8

const (
	UnitTypeUnknown UnitType = iota
	UnitTypeNone
	UnitTypePlayer
	UnitTypeCreature
	UnitTypePet
	UnitTypeVehicle
	UnitTypeGameObject
)

func (t UnitType) String() string {
	switch t {
	case UnitTypeNone:
		return "None"
	case UnitTypePlayer:
		return "Player"
	case UnitTypeCreature:
		return "Creature"
	case UnitTypePet:
		return "Pet"
	case UnitTypeVehicle:
		return "Vehicle"
	case UnitTypeGameObject:
		return "GameObject"
	default:
		return "Unknown"
	}
}

// GUID is an opaque unit identifier. Two spellings occur in the wild:
// the dashed "Type-server-instance-zone-...-uid" form and the 3.3.5 hex
// form "0xF130000F3A000123". Both are kept verbatim.
// GUID 是不透明的单位标识符，原样保存。
type GUID string

// IsNone reports whether the GUID is the "no unit" placeholder.
func (g GUID) IsNone() bool {
	s := strings.TrimPrefix(strings.TrimPrefix(string(g), "0x"), "0X")
	return strings.Trim(s, "0") == ""
}

// Type classifies the GUID by its leading tag (dashed form) or by its
// high 16 bits (hex form).
// Type 根据前缀标签（短横线形式）或高 16 位（十六进制形式）对 GUID 分类。
func (g GUID) Type() UnitType {
	if g.IsNone() {
		return UnitTypeNone
	}
	s := string(g)

	if i := strings.IndexByte(s, '-'); i > 0 {
		switch s[:i] {
		case "Player":
			return UnitTypePlayer
		case "Creature":
			return UnitTypeCreature
		case "Pet":
			return UnitTypePet
		case "Vehicle":
			return UnitTypeVehicle
		case "GameObject":
			return UnitTypeGameObject
		}
		return UnitTypeUnknown
	}

	v, ok := g.Uint64()
	if !ok {
		return UnitTypeUnknown
	}
	switch high := uint16(v >> 48); {
	case high&0xF000 == 0:
		return UnitTypePlayer
	case high&0xFFF0 == 0xF110:
		return UnitTypeGameObject
	case high&0xFFF0 == 0xF130:
		return UnitTypeCreature
	case high&0xFFF0 == 0xF140:
		return UnitTypePet
	case high&0xFFF0 == 0xF150:
		return UnitTypeVehicle
	}
	return UnitTypeUnknown
}

// Uint64 returns the numeric value of a hex GUID.
func (g GUID) Uint64() (uint64, bool) {
	s := string(g)
	if hasHexPrefix(s) {
		s = s[2:]
	}
	if s == "" || len(s) > 16 {
		return 0, false
	}
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Unit is one side (source or destination) of an event prefix.
// Unit 是事件前缀中的一方（来源或目标）。
type Unit struct {
	GUID  GUID      `json:"guid"`
	Name  string    `json:"name"`
	Flags UnitFlags `json:"flags"`
}

// Type is shorthand for u.GUID.Type().
func (u Unit) Type() UnitType { return u.GUID.Type() }
