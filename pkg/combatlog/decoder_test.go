package combatlog

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/livp123/wowclp/pkg/errors"
)

const (
	srcPrefix = `0x0000000000000001,"Healer",0x511`
	dstPrefix = `0xF130000F3A000123,"Training Dummy",0xa48`
	unitPair  = srcPrefix + "," + dstPrefix
)

func line(event string, suffix ...string) string {
	parts := append([]string{event, unitPair}, suffix...)
	return "4/21 20:19:34.123  " + strings.Join(parts, ",")
}

// TestDecoder_SpellHeal decodes the reference SPELL_HEAL line
// TestDecoder_SpellHeal 解码参考 SPELL_HEAL 行
func TestDecoder_SpellHeal(t *testing.T) {
	rec := DecodeLine(1, line("SPELL_HEAL", `29166,"Innervate",0x10,1234,0,0,nil`))
	require.Equal(t, RecordEvent, rec.Kind, "err: %v", rec.Err)

	ev := rec.Event
	assert.Equal(t, "SPELL_HEAL", ev.Event)
	assert.Equal(t, "4/21 20:19:34.123", ev.Timestamp)
	assert.Empty(t, ev.Mismatches)
	assert.Empty(t, ev.Extra)

	spellID, ok := ev.Int("spellId")
	assert.True(t, ok)
	assert.Equal(t, int64(29166), spellID)
	assert.Equal(t, KindString, ev.Fields["spellName"].Kind)
	assert.Equal(t, "Innervate", ev.Str("spellName"))
	assert.Equal(t, uint64(0x10), ev.Fields["spellSchool"].Uint)

	amount, _ := ev.Int("amount")
	overheal, _ := ev.Int("overhealing")
	absorbed, _ := ev.Int("absorbed")
	assert.Equal(t, int64(1234), amount)
	assert.Equal(t, int64(0), overheal)
	assert.Equal(t, int64(0), absorbed)

	crit := ev.Fields["critical"]
	assert.Equal(t, KindBool, crit.Kind)
	assert.False(t, crit.Bool)
	assert.True(t, crit.Defaulted)

	assert.Equal(t, []string{"spellId", "spellName", "spellSchool", "amount", "overhealing", "absorbed", "critical"}, ev.Order)
}

// TestDecoder_Prefix checks source/destination decoding
// TestDecoder_Prefix 检查来源/目标解码
func TestDecoder_Prefix(t *testing.T) {
	rec := DecodeLine(1, line("SWING_DAMAGE", "100,0,1,0,0,0,1,nil,nil"))
	require.Equal(t, RecordEvent, rec.Kind)

	src, dst := rec.Event.Source, rec.Event.Dest
	assert.Equal(t, GUID("0x0000000000000001"), src.GUID)
	assert.Equal(t, "Healer", src.Name)
	assert.Equal(t, UnitFlags(0x511), src.Flags)
	assert.True(t, src.Flags.IsPlayer())
	assert.True(t, src.Flags.IsFriendly())
	assert.True(t, src.Flags.IsMine())
	assert.Equal(t, UnitTypePlayer, src.Type())

	assert.Equal(t, "Training Dummy", dst.Name)
	assert.True(t, dst.Flags.IsHostile())
	assert.True(t, dst.Flags.IsNPC())
	assert.Equal(t, UnitTypeCreature, dst.Type())

	assert.True(t, rec.Event.Bool("critical"))
	assert.False(t, rec.Event.Bool("glancing"))
}

// TestDecoder_ExactArityNeverUnstructured walks every registered event
// TestDecoder_ExactArityNeverUnstructured 遍历所有已注册事件
func TestDecoder_ExactArityNeverUnstructured(t *testing.T) {
	reg := DefaultRegistry()
	sample := map[FieldKind]string{
		FieldString:  `"x"`,
		FieldInteger: "1",
		FieldFloat:   "1.5",
		FieldGUID:    "0x0000000000000001",
		FieldFlags:   "0x1",
		FieldList:    "[1,2]",
		FieldBool:    "1",
		FieldSchool:  "0x4",
	}

	for _, name := range reg.Events() {
		schema, _ := reg.Lookup(name)
		suffix := make([]string, 0, schema.Arity())
		for _, f := range schema.Fields {
			switch {
			case f.Kind == FieldEnum && f.Enum.Coded():
				suffix = append(suffix, "0")
			case f.Kind == FieldEnum:
				suffix = append(suffix, f.Enum.Values()[0])
			default:
				suffix = append(suffix, sample[f.Kind])
			}
		}

		rec := DecodeLine(1, line(name, suffix...))
		if assert.Equal(t, RecordEvent, rec.Kind, "%s: %v", name, rec.Err) {
			assert.Empty(t, rec.Event.Mismatches, name)
			assert.Len(t, rec.Event.Fields, schema.Arity(), name)
		}
	}
}

// TestDecoder_UnknownEvent routes unknown names to UnstructuredEvent
// TestDecoder_UnknownEvent 将未知事件名路由为 UnstructuredEvent
func TestDecoder_UnknownEvent(t *testing.T) {
	tests := []struct {
		name       string
		line       string
		wantPrefix bool
		wantTokens int
	}{
		{"with prefix", line("SPELL_FANCY_NEW_THING", "1", `"a"`, "nil"), true, 3},
		{"short", `4/21 20:19:34.123  COMBAT_LOG_VERSION,3`, false, 1},
		{"name only", `4/21 20:19:34.123  ZONE_CHANGE`, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := DecodeLine(7, tt.line)
			require.Equal(t, RecordUnstructured, rec.Kind)
			assert.NoError(t, rec.Err)
			assert.Equal(t, uint64(7), rec.Seq)
			u := rec.Unstructured
			assert.Len(t, u.Tokens, tt.wantTokens)
			if tt.wantPrefix {
				require.NotNil(t, u.Source)
				assert.Equal(t, "Healer", u.Source.Name)
				assert.Equal(t, "Training Dummy", u.Dest.Name)
			} else {
				assert.Nil(t, u.Source)
				assert.Nil(t, u.Dest)
			}
		})
	}
}

// TestDecoder_ZeroSuffix checks events without suffix fields
// TestDecoder_ZeroSuffix 检查没有后缀字段的事件
func TestDecoder_ZeroSuffix(t *testing.T) {
	for _, name := range []string{"UNIT_DIED", "UNIT_DESTROYED", "UNIT_DISSIPATES", "PARTY_KILL", "SPELL_CAST_SUCCESS"} {
		t.Run(name, func(t *testing.T) {
			suffix := []string{}
			if name == "SPELL_CAST_SUCCESS" {
				suffix = []string{"1", `"Spell"`, "0x1"}
			}
			rec := DecodeLine(1, line(name, suffix...))
			require.Equal(t, RecordEvent, rec.Kind)
			assert.Empty(t, rec.Event.Mismatches)
			if name != "SPELL_CAST_SUCCESS" {
				assert.Empty(t, rec.Event.Fields)
			}
		})
	}
}

// TestDecoder_NilDistinctFromString checks bare nil against quoted "nil"
// TestDecoder_NilDistinctFromString 检查裸 nil 与带引号的 "nil"
func TestDecoder_NilDistinctFromString(t *testing.T) {
	reg, err := NewRegistry(Schema{Event: "TEST_EVENT", Fields: []FieldSpec{
		{Name: "a", Kind: FieldString},
		{Name: "b", Kind: FieldString},
		{Name: "c", Kind: FieldInteger},
	}})
	require.NoError(t, err)
	dec := NewDecoder(WithRegistry(reg))

	rec := dec.DecodeLine(1, line("TEST_EVENT", "nil", `"nil"`, "0"))
	require.Equal(t, RecordEvent, rec.Kind)

	a := rec.Event.Fields["a"]
	b := rec.Event.Fields["b"]
	assert.True(t, a.IsAbsent())
	assert.False(t, b.IsAbsent())
	assert.Equal(t, "nil", b.Str)
	c, _ := rec.Event.Int("c")
	assert.Equal(t, int64(0), c)
}

// TestDecoder_NilPolicies checks per-field nil defaults
// TestDecoder_NilPolicies 检查按字段配置的 nil 默认值
func TestDecoder_NilPolicies(t *testing.T) {
	reg := DefaultRegistry().WithNilDefaults(map[string]NilPolicy{
		"critical":    NilAbsent,
		"overhealing": NilZero,
	})
	dec := NewDecoder(WithRegistry(reg))

	rec := dec.DecodeLine(1, line("SPELL_HEAL", `1,"x",0x1,10,nil,0,nil`))
	require.Equal(t, RecordEvent, rec.Kind)

	assert.True(t, rec.Event.Fields["critical"].IsAbsent())
	oh := rec.Event.Fields["overhealing"]
	assert.Equal(t, KindInt, oh.Kind)
	assert.True(t, oh.Defaulted)

	// the default registry is untouched
	crit, _ := DefaultRegistry().Lookup("SPELL_HEAL")
	f, _ := crit.Field("critical")
	assert.Equal(t, NilFalse, f.NilDefault)
}

// TestDecoder_FieldTypeMismatch degrades one field and keeps the event
// TestDecoder_FieldTypeMismatch 降级单个字段并保留事件
func TestDecoder_FieldTypeMismatch(t *testing.T) {
	rec := DecodeLine(1, line("SPELL_HEAL", `1,"x",0x1,lots,0,0,nil`))
	require.Equal(t, RecordEvent, rec.Kind)

	ev := rec.Event
	require.Len(t, ev.Mismatches, 1)
	assert.Equal(t, "amount", ev.Mismatches[0].Field)
	assert.Equal(t, "lots", ev.Mismatches[0].Raw)
	assert.ErrorIs(t, ev.Mismatches[0], errs.ErrFieldTypeMismatch)
	assert.Equal(t, KindRaw, ev.Fields["amount"].Kind)
	assert.Equal(t, "lots", ev.Fields["amount"].Str)

	oh, ok := ev.Int("overhealing")
	assert.True(t, ok)
	assert.Equal(t, int64(0), oh)
}

// TestDecoder_Enums checks known, unknown and coded enum values
// TestDecoder_Enums 检查已知、未知和编码枚举值
func TestDecoder_Enums(t *testing.T) {
	rec := DecodeLine(1, line("SWING_MISSED", "DODGE"))
	require.Equal(t, RecordEvent, rec.Kind)
	mt := rec.Event.Fields["missType"]
	assert.Equal(t, KindEnum, mt.Kind)
	assert.Equal(t, "DODGE", mt.Str)
	assert.False(t, mt.Unknown)
	_, has := rec.Event.Field("amountMissed")
	assert.False(t, has)

	rec = DecodeLine(2, line("SWING_MISSED", "dodge", "12"))
	require.Equal(t, RecordEvent, rec.Kind)
	assert.True(t, rec.Event.Fields["missType"].Unknown)
	assert.Empty(t, rec.Event.Mismatches)

	rec = DecodeLine(3, line("SPELL_ENERGIZE", `1,"x",0x1,25,1`))
	require.Equal(t, RecordEvent, rec.Kind)
	pt := rec.Event.Fields["powerType"]
	assert.Equal(t, "RAGE", pt.Str)
	code, ok := pt.AsInt()
	assert.True(t, ok)
	assert.Equal(t, int64(1), code)

	rec = DecodeLine(4, line("SPELL_ENERGIZE", `1,"x",0x1,25,42`))
	assert.True(t, rec.Event.Fields["powerType"].Unknown)
}

// TestDecoder_ArityEdges checks missing and extra suffix fields
// TestDecoder_ArityEdges 检查缺失和多余的后缀字段
func TestDecoder_ArityEdges(t *testing.T) {
	rec := DecodeLine(1, line("SPELL_HEAL", `1,"x",0x1,10`))
	require.Equal(t, RecordEvent, rec.Kind)
	assert.Len(t, rec.Event.Mismatches, 3)
	assert.ErrorIs(t, rec.Event.Mismatches[0], errs.ErrFieldTypeMismatch)

	rec = DecodeLine(2, line("SPELL_AURA_APPLIED", `1,"x",0x1,BUFF,5,extra`))
	require.Equal(t, RecordEvent, rec.Kind)
	require.Len(t, rec.Event.Extra, 2)
	assert.Equal(t, "5", rec.Event.Extra[0].Text)

	strict := NewDecoder(WithStrictArity(true))
	rec = strict.DecodeLine(3, line("SPELL_AURA_APPLIED", `1,"x",0x1,BUFF,5`))
	assert.Equal(t, RecordError, rec.Kind)
	assert.ErrorIs(t, rec.Err, errs.ErrFieldTypeMismatch)
}

// TestDecoder_LineErrors checks per-line failures
// TestDecoder_LineErrors 检查单行失败
func TestDecoder_LineErrors(t *testing.T) {
	tests := []struct {
		name string
		line string
		want error
	}{
		{"no separator", "4/21 20:19:34.123 UNIT_DIED", errs.ErrMalformedLine},
		{"open quote", `4/21 20:19:34.123  UNIT_DIED,0x1,"Bob,0x1`, errs.ErrUnbalancedQuote},
		{"open bracket", `4/21 20:19:34.123  UNIT_DIED,[0x1`, errs.ErrUnbalancedBracket},
		{"truncated", `4/21 20:19:34.123  UNIT_DIED,0x1,"Bob",0x1`, errs.ErrTruncatedPrefix},
		{"empty name", `4/21 20:19:34.123  ,0x1`, errs.ErrEmptyEventName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := DecodeLine(9, tt.line)
			require.Equal(t, RecordError, rec.Kind)
			assert.ErrorIs(t, rec.Err, tt.want)

			var le *LineError
			require.True(t, errors.As(rec.Err, &le))
			assert.Equal(t, uint64(9), le.Seq)
			assert.Equal(t, tt.line, le.Line)
		})
	}

	assert.Equal(t, RecordSkipped, DecodeLine(1, "   ").Kind)
}

// TestDecoder_WithYear resolves absolute timestamps
// TestDecoder_WithYear 解析绝对时间戳
func TestDecoder_WithYear(t *testing.T) {
	dec := NewDecoder(WithYear(2010, time.UTC))
	rec := dec.DecodeLine(1, line("UNIT_DIED"))
	require.Equal(t, RecordEvent, rec.Kind)
	assert.Equal(t, time.Date(2010, 4, 21, 20, 19, 34, 123e6, time.UTC), rec.Event.Time)

	rec = DecodeLine(1, line("UNIT_DIED"))
	assert.True(t, rec.Event.Time.IsZero())
}

// TestRecord_MarshalJSON checks the JSON shape of each record kind
// TestRecord_MarshalJSON 检查各类记录的 JSON 结构
func TestRecord_MarshalJSON(t *testing.T) {
	rec := DecodeLine(1, line("SPELL_HEAL", `29166,"Innervate",0x10,1234,0,0,nil`))
	b, err := json.Marshal(rec)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, "event", out["kind"])
	assert.Equal(t, "SPELL_HEAL", out["event"])
	fields := out["fields"].(map[string]interface{})
	assert.Equal(t, float64(1234), fields["amount"])
	assert.Equal(t, false, fields["critical"])
	assert.Equal(t, "Innervate", fields["spellName"])
	src := out["source"].(map[string]interface{})
	assert.Equal(t, "Player", src["type"])

	rec = DecodeLine(2, "garbage")
	b, err = json.Marshal(rec)
	require.NoError(t, err)
	out = nil
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, "error", out["kind"])
	assert.Equal(t, "malformed line", out["class"])
	assert.Equal(t, "garbage", out["line"])
}

// TestDecoder_BoolSentinel tests that any present token is true and only nil is false
// TestDecoder_BoolSentinel 测试任何非 nil 令牌均为 true，仅 nil 为 false
func TestDecoder_BoolSentinel(t *testing.T) {
	tests := []struct {
		token string
		want  bool
	}{
		{"1", true},
		{"0", true},
		{"false", true},
		{"nil", false},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			rec := DecodeLine(1, line("SPELL_HEAL", `29166,"Innervate",0x10,1234,0,0,`+tt.token))
			require.Equal(t, RecordEvent, rec.Kind, "err: %v", rec.Err)
			crit := rec.Event.Fields["critical"]
			assert.Equal(t, KindBool, crit.Kind)
			assert.Equal(t, tt.want, crit.Bool)
			assert.Equal(t, tt.token == "nil", crit.Defaulted)
		})
	}
}

// TestDecoder_SpellSchool tests that school fields carry SpellSchool names
// TestDecoder_SpellSchool 测试学派字段输出 SpellSchool 名称
func TestDecoder_SpellSchool(t *testing.T) {
	rec := DecodeLine(1, line("SPELL_DAMAGE", `133,"Fireball",0x4,1234,0,0x14,0,0,0,nil,nil,nil`))
	require.Equal(t, RecordEvent, rec.Kind, "err: %v", rec.Err)
	ev := rec.Event
	assert.Empty(t, ev.Mismatches)

	spell := ev.Fields["spellSchool"]
	assert.Equal(t, KindSchool, spell.Kind)
	assert.Equal(t, "Fire", spell.String())
	n, ok := spell.AsInt()
	assert.True(t, ok)
	assert.Equal(t, int64(SchoolFire), n)
	assert.Equal(t, "Fire|Frost", ev.Fields["school"].String())

	b, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"spellSchool":"Fire"`)
	assert.Contains(t, string(b), `"school":"Fire|Frost"`)

	bad := DecodeLine(2, line("SPELL_DAMAGE", `133,"Fireball",fire,1234,0,4,0,0,0,nil,nil,nil`))
	require.Equal(t, RecordEvent, bad.Kind)
	require.Len(t, bad.Event.Mismatches, 1)
	assert.Equal(t, "spellSchool", bad.Event.Mismatches[0].Field)
	assert.Equal(t, KindRaw, bad.Event.Fields["spellSchool"].Kind)
}

// BenchmarkDecodeLine measures full decode of a damage line
// BenchmarkDecodeLine 测量伤害行的完整解码性能
func BenchmarkDecodeLine(b *testing.B) {
	l := line("SPELL_DAMAGE", `133,"Fireball",0x4,1234,0,4,0,0,0,nil,nil,nil`)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = DecodeLine(uint64(i), l)
	}
}
