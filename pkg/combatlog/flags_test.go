package combatlog

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestUnitFlags tests the convenience predicates and rendering
// TestUnitFlags 测试便捷判断方法和渲染
func TestUnitFlags(t *testing.T) {
	f, err := ParseUnitFlags("0x511")
	require.NoError(t, err)
	assert.True(t, f.IsMine())
	assert.True(t, f.IsFriendly())
	assert.True(t, f.IsPlayer())
	assert.False(t, f.IsHostile())
	assert.False(t, f.InRaid())
	assert.Equal(t, "MINE|FRIENDLY|CONTROL_PLAYER|TYPE_PLAYER", f.String())

	f, err = ParseUnitFlags("0x10a48")
	require.NoError(t, err)
	assert.True(t, f.IsHostile())
	assert.True(t, f.IsNPC())
	assert.True(t, f.Has(FlagTarget))

	assert.Equal(t, 0, UnitFlags(0).RaidTarget())
	assert.Equal(t, 1, (FlagRaidTarget1 | FlagTypeNPC).RaidTarget())
	assert.Equal(t, 8, FlagRaidTarget8.RaidTarget())
	assert.Contains(t, FlagRaidTarget8.String(), "RAIDTARGET8")
	assert.Equal(t, "0", UnitFlags(0).String())

	_, err = ParseUnitFlags("0xZZ")
	assert.Error(t, err)
	_, err = ParseUnitFlags("0x100000000")
	assert.Error(t, err)
}

// TestSpellSchool tests school names
// TestSpellSchool 测试法术学派名称
func TestSpellSchool(t *testing.T) {
	assert.Equal(t, "Fire", SchoolFire.String())
	assert.Equal(t, "Fire|Frost", (SchoolFire | SchoolFrost).String())
	assert.Equal(t, "None", SpellSchool(0).String())
	assert.Equal(t, "Physical|0x80", SpellSchool(0x81).String())
}

// TestGUID_Type tests GUID classification in both spellings
// TestGUID_Type 测试两种写法的 GUID 分类
func TestGUID_Type(t *testing.T) {
	tests := []struct {
		guid GUID
		want UnitType
	}{
		{"0x0000000000000000", UnitTypeNone},
		{"0000000000000000", UnitTypeNone},
		{"", UnitTypeNone},
		{"0x000000000012AB34", UnitTypePlayer},
		{"0xF130000F3A000123", UnitTypeCreature},
		{"0xF140000F3A000123", UnitTypePet},
		{"0xF150000F3A000123", UnitTypeVehicle},
		{"0xF110000F3A000123", UnitTypeGameObject},
		{"0xF1F0000F3A000123", UnitTypeUnknown},
		{"Player-1-00000001", UnitTypePlayer},
		{"Creature-0-0000-00000-00000-0000000000", UnitTypeCreature},
		{"Pet-0-1-2-3-4-5", UnitTypePet},
		{"Vehicle-0-1-2-3-4-5", UnitTypeVehicle},
		{"GameObject-0-1-2-3-4-5", UnitTypeGameObject},
		{"Item-0-1", UnitTypeUnknown},
		{"not a guid", UnitTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(string(tt.guid), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.guid.Type())
		})
	}
}

// TestEnumSet tests string and coded enum matching
// TestEnumSet 测试字符串和编码枚举匹配
func TestEnumSet(t *testing.T) {
	v, err := AuraTypes.Match("BUFF")
	require.NoError(t, err)
	assert.False(t, v.Unknown)

	v, err = AuraTypes.Match("buff")
	require.NoError(t, err)
	assert.True(t, v.Unknown)
	assert.Equal(t, "buff", v.Str)

	v, err = PowerTypes.Match("-2")
	require.NoError(t, err)
	assert.Equal(t, "HEALTH", v.Str)

	_, err = PowerTypes.Match("MANA")
	assert.Error(t, err)

	assert.Equal(t, []string{"HEALTH", "NONE", "MANA", "RAGE", "FOCUS", "ENERGY", "COMBOPOINTS", "RUNES", "RUNIC_POWER"}, PowerTypes.Values())
	assert.True(t, FailedTypes.Open)
	assert.True(t, MissTypes.Contains("REFLECT"))
}

// TestValue_JSON tests the JSON form of each value kind
// TestValue_JSON 测试各值类型的 JSON 形式
func TestValue_JSON(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"absent", Absent, `null`},
		{"int", IntValue(-5), `-5`},
		{"float", FloatValue(1.5), `1.5`},
		{"bool", BoolValue(true), `true`},
		{"flags", Value{Kind: KindFlags, Uint: 16}, `16`},
		{"school", Value{Kind: KindSchool, Uint: 0x14}, `"Fire|Frost"`},
		{"string", StringValue("a,b"), `"a,b"`},
		{"enum", Value{Kind: KindEnum, Str: "BUFF"}, `"BUFF"`},
		{"unknown enum", Value{Kind: KindEnum, Str: "X", Unknown: true}, `{"unknown":"X"}`},
		{"raw", RawValue("oops"), `{"raw":"oops"}`},
		{"list", Value{Kind: KindList, List: []Token{TextToken("1"), QuotedToken("a")}}, `["1","a"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(tt.v)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(b))
		})
	}
}

// TestParseTimestamp tests year injection
// TestParseTimestamp 测试年份注入
func TestParseTimestamp(t *testing.T) {
	got, err := ParseTimestamp("12/31 23:59:59.999", 2009, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2009, 12, 31, 23, 59, 59, 999e6, time.UTC), got)

	got, err = ParseTimestamp("1/2 03:04:05.006", 0, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, EpochYear, got.Year())

	_, err = ParseTimestamp("13/45 99:00:00.000", 2009, time.UTC)
	assert.Error(t, err)
}
