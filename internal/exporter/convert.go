package exporter

import (
	"github.com/IceDynamix/reliquary-archiver-go/internal/reference"
	"github.com/IceDynamix/reliquary-archiver-go/internal/schema"
)

// slotToExport translates a relic_config.Type value to its exported
// slot name (spec.md §6 "Stat name translations").
func slotToExport(s string) (string, bool) {
	switch s {
	case "HEAD":
		return "Head", true
	case "HAND":
		return "Hands", true
	case "BODY":
		return "Body", true
	case "FOOT":
		return "Feet", true
	case "NECK":
		return "Planar Sphere", true
	case "OBJECT":
		return "Link Rope", true
	default:
		return "", false
	}
}

// mainStatToExport translates a relic_main_affix_config.Property value
// to its exported main-stat name.
func mainStatToExport(s string) (string, bool) {
	switch s {
	case "HPDelta", "HPAddedRatio":
		return "HP", true
	case "AttackDelta", "AttackAddedRatio":
		return "ATK", true
	case "DefenceAddedRatio":
		return "DEF", true
	case "CriticalChanceBase":
		return "CRIT Rate", true
	case "CriticalDamageBase":
		return "CRIT DMG", true
	case "HealRatioBase":
		return "Outgoing Healing Boost", true
	case "SpeedDelta":
		return "SPD", true
	case "StatusProbabilityBase":
		return "Effect Hit Rate", true
	case "PhysicalAddedRatio":
		return "Physical DMG Boost", true
	case "FireAddedRatio":
		return "Fire DMG Boost", true
	case "IceAddedRatio":
		return "Ice DMG Boost", true
	case "ThunderAddedRatio":
		return "Lightning DMG Boost", true
	case "WindAddedRatio":
		return "Wind DMG Boost", true
	case "QuantumAddedRatio":
		return "Quantum DMG Boost", true
	case "ImaginaryAddedRatio":
		return "Imaginary DMG Boost", true
	case "BreakDamageAddedRatioBase":
		return "Break Effect", true
	case "SPRatioBase":
		return "Energy Regeneration Rate", true
	default:
		return "", false
	}
}

// subStatToExport translates a relic_sub_affix_config.Property value to
// its exported sub-stat key. Keys ending in "_" are percentage stats
// whose value the caller scales by 100.
func subStatToExport(s string) (string, bool) {
	switch s {
	case "HPDelta":
		return "HP", true
	case "AttackDelta":
		return "ATK", true
	case "HPAddedRatio":
		return "HP_", true
	case "AttackAddedRatio":
		return "ATK_", true
	case "DefenceAddedRatio":
		return "DEF_", true
	case "DefenceDelta":
		return "DEF", true
	case "CriticalChanceBase":
		return "CRIT Rate_", true
	case "CriticalDamageBase":
		return "CRIT DMG_", true
	case "SpeedDelta":
		return "SPD", true
	case "StatusProbabilityBase":
		return "Effect Hit Rate_", true
	case "StatusResistanceBase":
		return "Effect RES_", true
	case "BreakDamageAddedRatioBase":
		return "Break Effect_", true
	default:
		return "", false
	}
}

// pathToExport translates an avatar_config.AvatarBaseType value to its
// exported path name.
func pathToExport(s string) (string, bool) {
	switch s {
	case "Knight":
		return "Preservation", true
	case "Rogue":
		return "Hunt", true
	case "Mage":
		return "Erudition", true
	case "Warlock":
		return "Nihility", true
	case "Warrior":
		return "Destruction", true
	case "Shaman":
		return "Harmony", true
	case "Priest":
		return "Abundance", true
	case "Memory":
		return "Remembrance", true
	default:
		return "", false
	}
}

// formatLocation turns an equip_avatar_id into its exported form: the
// empty string when unequipped (spec.md §6).
func formatLocation(avatarID uint32) string {
	if avatarID == 0 {
		return ""
	}
	return itoa(avatarID)
}

func convertRelic(db *reference.Database, proto schema.ProtoRelic) (Relic, bool) {
	cfg, ok := db.RelicConfigByTid(proto.Tid)
	if !ok {
		return Relic{}, false
	}
	rarity := reference.RelicRarity(cfg)

	setName, _ := db.LookupSetName(cfg.SetID) // falls back to "" like the original implementation

	mainAffix, ok := db.MainAffixProperty(cfg.MainAffixGroup, proto.MainAffixID)
	if !ok {
		return Relic{}, false
	}
	mainStat, ok := mainStatToExport(mainAffix)
	if !ok {
		return Relic{}, false
	}
	slot, ok := slotToExport(cfg.Type)
	if !ok {
		return Relic{}, false
	}

	substats := make([]SubStat, 0, len(proto.SubAffixList))
	for _, a := range proto.SubAffixList {
		if s, ok := convertSubStat(db, rarity, a); ok {
			substats = append(substats, s)
		}
	}

	return Relic{
		UID:      proto.UniqueID,
		SetID:    cfg.SetID,
		SetName:  setName,
		Slot:     slot,
		Rarity:   rarity,
		Level:    proto.Level,
		MainStat: mainStat,
		SubStats: substats,
		Location: proto.EquipAvatarID,
		Lock:     proto.IsProtected,
		Discard:  proto.IsDiscarded,
	}, true
}

func convertSubStat(db *reference.Database, rarity uint32, a schema.RelicAffix) (SubStat, bool) {
	cfg, ok := db.SubAffixProperty(rarity, a.AffixID)
	if !ok {
		return SubStat{}, false
	}
	key, ok := subStatToExport(cfg.Property)
	if !ok {
		return SubStat{}, false
	}

	value := float64(a.Cnt)*cfg.BaseValue + float64(a.Step)*cfg.StepValue
	if hasPercentSuffix(key) {
		value *= 100
	}

	return SubStat{Key: key, Value: value, Count: a.Cnt, Step: a.Step}, true
}

func hasPercentSuffix(key string) bool {
	return len(key) > 0 && key[len(key)-1] == '_'
}

func convertLightCone(db *reference.Database, proto schema.ProtoEquipment) (LightCone, bool) {
	cfg, ok := db.EquipmentConfig[proto.Tid]
	if !ok {
		return LightCone{}, false
	}
	name, ok := db.LookupText(cfg.EquipmentName)
	if !ok {
		return LightCone{}, false
	}

	return LightCone{
		UID:             proto.UniqueID,
		ID:              cfg.EquipmentID,
		Name:            name,
		Level:           proto.Level,
		Ascension:       proto.Promotion,
		Superimposition: proto.Rank,
		Location:        proto.EquipAvatarID,
		Lock:            proto.IsProtected,
	}, true
}

func convertMaterial(db *reference.Database, proto schema.ProtoMaterial) (Material, bool) {
	cfg, ok := db.ItemConfig[proto.Tid]
	if !ok {
		return Material{}, false
	}
	name, ok := db.LookupText(cfg.ItemName)
	if !ok {
		return Material{}, false
	}
	return Material{ID: cfg.ID, Name: name, Count: proto.Num}, true
}

// convertCharacter builds an ordinary (non-multipath) character record
// directly from a base avatar message.
func convertCharacter(db *reference.Database, proto schema.ProtoCharacter) (Character, bool) {
	name, ok := db.LookupAvatarName(proto.BaseAvatarID)
	if !ok {
		return Character{}, false
	}
	rawPath, ok := db.LookupAvatarPath(proto.BaseAvatarID)
	if !ok {
		return Character{}, false
	}
	path, ok := pathToExport(rawPath)
	if !ok {
		return Character{}, false
	}

	c := newCharacter()
	c.ID = proto.BaseAvatarID
	c.Name = name
	c.Path = path
	c.Level = proto.Level
	c.Ascension = proto.Promotion
	return c, true
}

// convertMultipathCharacter builds a multipath-variant character
// record from an AvatarPathData/MultiPathAvatarInfo message. Level and
// ascension are left zero; resolveMultipathCharacter fills them in
// once the matching base avatar record is known (spec.md §4.4.1).
func convertMultipathCharacter(db *reference.Database, proto schema.ProtoMultiPathAvatar) (Character, bool) {
	name, ok := db.LookupAvatarName(proto.AvatarID)
	if !ok {
		return Character{}, false
	}
	rawPath, ok := db.LookupAvatarPath(proto.AvatarID)
	if !ok {
		return Character{}, false
	}
	path, ok := pathToExport(rawPath)
	if !ok {
		return Character{}, false
	}

	c := newCharacter()
	c.ID = proto.AvatarID
	c.Name = name
	c.Path = path
	c.Eidolon = proto.Rank
	c.AbilityVersion = proto.SkilltreeVersion

	for _, node := range proto.AvatarPathSkillTree {
		if node.MultiPointID == 0 {
			continue
		}
		anchor, ok := db.SkillTreeAnchor(node.MultiPointID)
		if !ok {
			continue
		}
		switch anchor {
		case "basic", "skill", "ult", "talent":
			c.Skills[anchor] = node.Level
		case "memosprite_skill":
			c.MemospriteSkill = node.Level
		case "memosprite_talent":
			c.MemospriteTalent = node.Level
		default:
			c.Traces[anchor] = true
		}
	}

	return c, true
}
