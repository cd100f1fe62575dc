package combatlog

import "sort"

func str(name string) FieldSpec    { return FieldSpec{Name: name, Kind: FieldString} }
func num(name string) FieldSpec    { return FieldSpec{Name: name, Kind: FieldInteger} }
func school(name string) FieldSpec { return FieldSpec{Name: name, Kind: FieldSchool} }

func flag(name string) FieldSpec {
	return FieldSpec{Name: name, Kind: FieldBool, NilDefault: NilFalse}
}

func enum(name string, set *EnumSet) FieldSpec {
	return FieldSpec{Name: name, Kind: FieldEnum, Enum: set}
}

func optional(f FieldSpec) FieldSpec {
	f.Optional = true
	return f
}

// Prefix field groups.
var (
	spellFields = []FieldSpec{num("spellId"), str("spellName"), school("spellSchool")}
	envFields   = []FieldSpec{enum("environmentalType", EnvironmentalTypes)}
)

// Suffix field groups.
var (
	damageFields = []FieldSpec{
		num("amount"), num("overkill"), school("school"),
		num("resisted"), num("blocked"), num("absorbed"),
		flag("critical"), flag("glancing"), flag("crushing"),
	}

	missFields = []FieldSpec{
		enum("missType", MissTypes),
		optional(num("amountMissed")),
	}

	healFields = []FieldSpec{
		num("amount"), num("overhealing"), num("absorbed"), flag("critical"),
	}

	energizeFields = []FieldSpec{num("amount"), enum("powerType", PowerTypes)}
	drainFields    = []FieldSpec{num("amount"), enum("powerType", PowerTypes), num("extraAmount")}

	spellBlockFields = []FieldSpec{
		num("extraSpellId"), str("extraSpellName"), school("extraSchool"),
		optional(enum("auraType", AuraTypes)),
	}

	extraAttackFields = []FieldSpec{num("amount")}
	auraFields        = []FieldSpec{enum("auraType", AuraTypes)}
	auraDoseFields    = []FieldSpec{enum("auraType", AuraTypes), num("amount")}
	castFailedFields  = []FieldSpec{enum("failedType", FailedTypes)}
	enchantFields     = []FieldSpec{str("spellName"), num("itemId"), str("itemName")}
)

var prefixTable = map[string][]FieldSpec{
	"SWING":          nil,
	"RANGE":          spellFields,
	"SPELL":          spellFields,
	"SPELL_PERIODIC": spellFields,
	"SPELL_BUILDING": spellFields,
	"ENVIRONMENTAL":  envFields,
}

var suffixTable = map[string][]FieldSpec{
	"_DAMAGE":                damageFields,
	"_MISSED":                missFields,
	"_HEAL":                  healFields,
	"_HEAL_ABSORBED":         nil,
	"_ABSORBED":              nil,
	"_ENERGIZE":              energizeFields,
	"_DRAIN":                 drainFields,
	"_LEECH":                 drainFields,
	"_INTERRUPT":             spellBlockFields,
	"_DISPEL":                spellBlockFields,
	"_DISPEL_FAILED":         spellBlockFields,
	"_STOLEN":                spellBlockFields,
	"_EXTRA_ATTACKS":         extraAttackFields,
	"_AURA_APPLIED":          auraFields,
	"_AURA_REMOVED":          auraFields,
	"_AURA_APPLIED_DOSE":     auraDoseFields,
	"_AURA_REMOVED_DOSE":     auraDoseFields,
	"_AURA_REFRESH":          auraFields,
	"_AURA_BROKEN":           auraFields,
	"_AURA_BROKEN_SPELL":     spellBlockFields,
	"_CAST_START":            nil,
	"_CAST_SUCCESS":          nil,
	"_CAST_FAILED":           castFailedFields,
	"_INSTAKILL":             nil,
	"_DURABILITY_DAMAGE":     nil,
	"_DURABILITY_DAMAGE_ALL": nil,
	"_CREATE":                nil,
	"_SUMMON":                nil,
	"_RESURRECT":             nil,
}

// specialTable holds events that do not follow the prefix/suffix naming.
var specialTable = map[string][2][]FieldSpec{
	"DAMAGE_SPLIT":         {spellFields, damageFields},
	"DAMAGE_SHIELD":        {spellFields, damageFields},
	"DAMAGE_SHIELD_MISSED": {spellFields, missFields},
	"ENCHANT_APPLIED":      {enchantFields, nil},
	"ENCHANT_REMOVED":      {enchantFields, nil},
	"PARTY_KILL":           {nil, nil},
	"UNIT_DIED":            {nil, nil},
	"UNIT_DESTROYED":       {nil, nil},
	"UNIT_DISSIPATES":      {nil, nil},
}

// builtinSchemas expands every prefix/suffix pair plus the special events.
// Prefixes are applied shortest first so that a longer prefix wins when
// two compositions spell the same name.
func builtinSchemas() []Schema {
	prefixes := make([]string, 0, len(prefixTable))
	for p := range prefixTable {
		prefixes = append(prefixes, p)
	}
	sort.Slice(prefixes, func(i, j int) bool {
		if len(prefixes[i]) != len(prefixes[j]) {
			return len(prefixes[i]) < len(prefixes[j])
		}
		return prefixes[i] < prefixes[j]
	})

	out := make([]Schema, 0, len(prefixTable)*len(suffixTable)+len(specialTable))
	for _, p := range prefixes {
		for s, suffix := range suffixTable {
			out = append(out, Schema{Event: p + s, Fields: concatFields(prefixTable[p], suffix)})
		}
	}
	for name, parts := range specialTable {
		out = append(out, Schema{Event: name, Fields: concatFields(parts[0], parts[1])})
	}
	return out
}

func concatFields(a, b []FieldSpec) []FieldSpec {
	out := make([]FieldSpec, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
