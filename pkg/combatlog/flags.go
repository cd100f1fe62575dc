package combatlog

import (
	"fmt"
	"strconv"
	"strings"
)

// UnitFlags is the affiliation/reaction/control/type bitmask attached to
// the source and destination of every event.
// UnitFlags 是附加在每个事件来源和目标上的归属/反应/控制/类型位掩码。
type UnitFlags uint32

const (
	// Affiliation / 归属
	FlagAffiliationMine     UnitFlags = 0x00000001
	FlagAffiliationParty    UnitFlags = 0x00000002
	FlagAffiliationRaid     UnitFlags = 0x00000004
	FlagAffiliationOutsider UnitFlags = 0x00000008
	FlagAffiliationMask     UnitFlags = 0x0000000F

	// Reaction / 反应
	FlagReactionFriendly UnitFlags = 0x00000010
	FlagReactionNeutral  UnitFlags = 0x00000020
	FlagReactionHostile  UnitFlags = 0x00000040
	FlagReactionMask     UnitFlags = 0x000000F0

	// Control / 控制
	FlagControlPlayer UnitFlags = 0x00000100
	FlagControlNPC    UnitFlags = 0x00000200
	FlagControlMask   UnitFlags = 0x00000300

	// Type / 类型
	FlagTypePlayer   UnitFlags = 0x00000400
	FlagTypeNPC      UnitFlags = 0x00000800
	FlagTypePet      UnitFlags = 0x00001000
	FlagTypeGuardian UnitFlags = 0x00002000
	FlagTypeObject   UnitFlags = 0x00004000
	FlagTypeMask     UnitFlags = 0x0000FC00

	// Special, non-exclusive / 特殊标记（非互斥）
	FlagTarget      UnitFlags = 0x00010000
	FlagFocus       UnitFlags = 0x00020000
	FlagMainTank    UnitFlags = 0x00040000
	FlagMainAssist  UnitFlags = 0x00080000
	FlagRaidTarget1 UnitFlags = 0x00100000
	FlagRaidTarget8 UnitFlags = 0x08000000
	FlagNone        UnitFlags = 0x80000000
)

var unitFlagNames = []struct {
	flag UnitFlags
	name string
}{
	{FlagAffiliationMine, "MINE"},
	{FlagAffiliationParty, "PARTY"},
	{FlagAffiliationRaid, "RAID"},
	{FlagAffiliationOutsider, "OUTSIDER"},
	{FlagReactionFriendly, "FRIENDLY"},
	{FlagReactionNeutral, "NEUTRAL"},
	{FlagReactionHostile, "HOSTILE"},
	{FlagControlPlayer, "CONTROL_PLAYER"},
	{FlagControlNPC, "CONTROL_NPC"},
	{FlagTypePlayer, "TYPE_PLAYER"},
	{FlagTypeNPC, "TYPE_NPC"},
	{FlagTypePet, "TYPE_PET"},
	{FlagTypeGuardian, "TYPE_GUARDIAN"},
	{FlagTypeObject, "TYPE_OBJECT"},
	{FlagTarget, "TARGET"},
	{FlagFocus, "FOCUS"},
	{FlagMainTank, "MAINTANK"},
	{FlagMainAssist, "MAINASSIST"},
	{FlagNone, "NONE"},
}

func (f UnitFlags) Has(mask UnitFlags) bool { return f&mask == mask }

func (f UnitFlags) IsMine() bool     { return f.Has(FlagAffiliationMine) }
func (f UnitFlags) InParty() bool    { return f.Has(FlagAffiliationParty) }
func (f UnitFlags) InRaid() bool     { return f.Has(FlagAffiliationRaid) }
func (f UnitFlags) IsFriendly() bool { return f.Has(FlagReactionFriendly) }
func (f UnitFlags) IsNeutral() bool  { return f.Has(FlagReactionNeutral) }
func (f UnitFlags) IsHostile() bool  { return f.Has(FlagReactionHostile) }
func (f UnitFlags) IsPlayer() bool   { return f.Has(FlagTypePlayer) }
func (f UnitFlags) IsNPC() bool      { return f.Has(FlagTypeNPC) }
func (f UnitFlags) IsPet() bool      { return f.Has(FlagTypePet) }

// RaidTarget returns the raid marker index 1..8, or 0 when unmarked.
// RaidTarget 返回团队标记序号 1..8，未标记时返回 0。
func (f UnitFlags) RaidTarget() int {
	for i := 0; i < 8; i++ {
		if f.Has(FlagRaidTarget1 << i) {
			return i + 1
		}
	}
	return 0
}

// String renders the set bits as names joined with "|".
func (f UnitFlags) String() string {
	if f == 0 {
		return "0"
	}
	var parts []string
	for _, n := range unitFlagNames {
		if f.Has(n.flag) {
			parts = append(parts, n.name)
		}
	}
	if rt := f.RaidTarget(); rt > 0 {
		parts = append(parts, fmt.Sprintf("RAIDTARGET%d", rt))
	}
	if len(parts) == 0 {
		return fmt.Sprintf("0x%x", uint32(f))
	}
	return strings.Join(parts, "|")
}

// ParseUnitFlags decodes a hexadecimal flags literal such as "0x511".
// ParseUnitFlags 解码十六进制标志字面量，例如 "0x511"。
func ParseUnitFlags(s string) (UnitFlags, error) {
	v, err := parseUint(s, 32)
	if err != nil {
		return 0, err
	}
	return UnitFlags(v), nil
}

// SpellSchool is the school bitmask of a spell or damage component.
// SpellSchool 是法术或伤害组成的学派位掩码。
type SpellSchool uint32

const (
	SchoolPhysical SpellSchool = 0x01
	SchoolHoly     SpellSchool = 0x02
	SchoolFire     SpellSchool = 0x04
	SchoolNature   SpellSchool = 0x08
	SchoolFrost    SpellSchool = 0x10
	SchoolShadow   SpellSchool = 0x20
	SchoolArcane   SpellSchool = 0x40
)

var schoolNames = []string{"Physical", "Holy", "Fire", "Nature", "Frost", "Shadow", "Arcane"}

func (s SpellSchool) String() string {
	if s == 0 {
		return "None"
	}
	var parts []string
	for i, name := range schoolNames {
		if s&(1<<i) != 0 {
			parts = append(parts, name)
		}
	}
	if rest := s &^ 0x7F; rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", uint32(rest)))
	}
	return strings.Join(parts, "|")
}

// parseUint reads hex with a 0x prefix, decimal otherwise.
func parseUint(s string, bits int) (uint64, error) {
	if hasHexPrefix(s) {
		return strconv.ParseUint(s[2:], 16, bits)
	}
	return strconv.ParseUint(s, 10, bits)
}

func parseInt(s string) (int64, error) {
	if hasHexPrefix(s) {
		v, err := strconv.ParseUint(s[2:], 16, 64)
		return int64(v), err
	}
	return strconv.ParseInt(s, 10, 64)
}

func hasHexPrefix(s string) bool {
	return len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}
