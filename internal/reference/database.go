// Package reference holds the process-wide, read-only lookup tables
// that the decoder, sniffer, and exporter consult: avatar/equipment/item
// configs, relic and affix tables, the skill-tree anchor map, the
// multipath avatar table, the text map, and the per-session key table.
//
// Per spec.md's Out-of-scope list, the pipeline that compiles these
// tables from the game's own data files is an external collaborator.
// This package owns only the loader and the lookup surface, mirroring
// the teacher's internal/config package: a struct with tagged fields,
// a Load function, and a handful of accessor methods — except the
// source format is JSON (matching the original implementation's
// serde_json-backed tables and the wire format this system already
// speaks) rather than the teacher's YAML.
package reference

import (
	"embed"
	"encoding/json"
	"fmt"
)

//go:embed testdata/*.json
var embeddedFixtures embed.FS

// AvatarConfig is the per-avatar entry in the avatar config table.
type AvatarConfig struct {
	AvatarName    uint64 `json:"avatar_name"`
	Rarity        string `json:"rarity"`
	AvatarBaseType string `json:"avatar_base_type"`
}

type EquipmentConfig struct {
	EquipmentID   uint32 `json:"equipment_id"`
	EquipmentName uint64 `json:"equipment_name"`
	Rarity        string `json:"rarity"`
}

type ItemConfig struct {
	ID       uint32 `json:"id"`
	ItemName uint64 `json:"item_name"`
}

type RelicConfig struct {
	SetID           uint32 `json:"set_id"`
	Type            string `json:"type"`
	MaxLevel        uint32 `json:"max_level"`
	MainAffixGroup  uint32 `json:"main_affix_group"`
}

type RelicSetConfig struct {
	SetName uint64 `json:"set_name"`
}

type RelicMainAffixConfig struct {
	Property string `json:"property"`
}

type RelicSubAffixConfig struct {
	Property  string  `json:"property"`
	BaseValue float64 `json:"base_value"`
	StepValue float64 `json:"step_value"`
}

// SkillTreeConfig maps one skill-tree point id to the anchor it feeds
// in the exported character document: "basic", "skill", "ult",
// "talent", "ability_1".."ability_3", "stat_1".."stat_10",
// "memosprite_skill", or "memosprite_talent".
type SkillTreeConfig struct {
	Anchor string `json:"anchor"`
}

type mainAffixKey struct {
	Group uint32
	ID    uint32
}

type subAffixKey struct {
	Rarity uint32
	ID     uint32
}

// Database is the immutable set of reference lookup tables. It is safe
// for concurrent read access from every goroutine in the system; it is
// never mutated after Load returns.
type Database struct {
	AvatarConfig      map[uint32]AvatarConfig
	EquipmentConfig   map[uint32]EquipmentConfig
	ItemConfig        map[uint32]ItemConfig
	RelicConfig       map[uint32]RelicConfig
	RelicSetConfig    map[uint32]RelicSetConfig
	MultipathAvatarConfig map[uint32]uint32 // avatar_id -> base_avatar_id
	TextMap           map[uint64]string
	Keys              map[uint32][]byte // version_id -> session key
	SkillTreeConfig   map[uint32]SkillTreeConfig

	mainAffix      map[mainAffixKey]RelicMainAffixConfig
	subAffix       map[subAffixKey]RelicSubAffixConfig
	multipathBases map[uint32]struct{} // distinct values of MultipathAvatarConfig
}

// rawTables is the on-disk/embedded shape of the reference data: every
// table as a flat JSON object, decoded once at Load time.
type rawTables struct {
	AvatarConfig          map[string]AvatarConfig         `json:"avatar_config"`
	EquipmentConfig       map[string]EquipmentConfig       `json:"equipment_config"`
	ItemConfig            map[string]ItemConfig            `json:"item_config"`
	RelicConfig           map[string]RelicConfig           `json:"relic_config"`
	RelicSetConfig        map[string]RelicSetConfig        `json:"relic_set_config"`
	MultipathAvatarConfig map[string]uint32                `json:"multipath_avatar_config"`
	TextMap               map[string]string                `json:"text_map"`
	Keys                  map[string]string                `json:"keys"` // version_id -> base64 key
	SkillTreeConfig       map[string]SkillTreeConfig        `json:"skill_tree_config"`

	RelicMainAffixConfig []struct {
		Group    uint32 `json:"group"`
		AffixID  uint32 `json:"affix_id"`
		Property string `json:"property"`
	} `json:"relic_main_affix_config"`

	RelicSubAffixConfig []struct {
		Rarity    uint32  `json:"rarity"`
		AffixID   uint32  `json:"affix_id"`
		Property  string  `json:"property"`
		BaseValue float64 `json:"base_value"`
		StepValue float64 `json:"step_value"`
	} `json:"relic_sub_affix_config"`
}

// Load reads the reference database from dir (a single combined
// "reference.json" holding every table), or from the embedded fixture set when dir is
// empty. The embedded fixtures are the small, hand-authored dataset
// used by tests and described in spec.md's example scenarios; a real
// deployment points dir at a directory populated by the out-of-scope
// compiled-data pipeline.
func Load(dir string) (*Database, error) {
	var raw rawTables
	if dir == "" {
		if err := loadEmbedded(&raw); err != nil {
			return nil, fmt.Errorf("loading embedded reference fixtures: %w", err)
		}
	} else {
		if err := loadFromDir(dir, &raw); err != nil {
			return nil, fmt.Errorf("loading reference database from %s: %w", dir, err)
		}
	}

	return build(&raw)
}

func loadEmbedded(raw *rawTables) error {
	data, err := embeddedFixtures.ReadFile("testdata/reference.json")
	if err != nil {
		return err
	}
	return json.Unmarshal(data, raw)
}
