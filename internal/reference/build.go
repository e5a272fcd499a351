package reference

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// loadFromDir reads reference.json from a live deployment's data
// directory. Kept as a single combined file (rather than one file per
// table) to mirror how the teacher loads a single YAML document per
// server role (internal/config.LoadGameServer / LoadLoginServer).
func loadFromDir(dir string, raw *rawTables) error {
	data, err := os.ReadFile(filepath.Join(dir, "reference.json"))
	if err != nil {
		return err
	}
	return json.Unmarshal(data, raw)
}

func build(raw *rawTables) (*Database, error) {
	db := &Database{
		AvatarConfig:          make(map[uint32]AvatarConfig, len(raw.AvatarConfig)),
		EquipmentConfig:       make(map[uint32]EquipmentConfig, len(raw.EquipmentConfig)),
		ItemConfig:            make(map[uint32]ItemConfig, len(raw.ItemConfig)),
		RelicConfig:           make(map[uint32]RelicConfig, len(raw.RelicConfig)),
		RelicSetConfig:        make(map[uint32]RelicSetConfig, len(raw.RelicSetConfig)),
		MultipathAvatarConfig: make(map[uint32]uint32, len(raw.MultipathAvatarConfig)),
		TextMap:               make(map[uint64]string, len(raw.TextMap)),
		Keys:                  make(map[uint32][]byte, len(raw.Keys)),
		SkillTreeConfig:       make(map[uint32]SkillTreeConfig, len(raw.SkillTreeConfig)),
		mainAffix:             make(map[mainAffixKey]RelicMainAffixConfig, len(raw.RelicMainAffixConfig)),
		subAffix:              make(map[subAffixKey]RelicSubAffixConfig, len(raw.RelicSubAffixConfig)),
		multipathBases:        make(map[uint32]struct{}),
	}

	if err := fillUint32Map(raw.AvatarConfig, db.AvatarConfig); err != nil {
		return nil, fmt.Errorf("avatar_config: %w", err)
	}
	if err := fillUint32Map(raw.EquipmentConfig, db.EquipmentConfig); err != nil {
		return nil, fmt.Errorf("equipment_config: %w", err)
	}
	if err := fillUint32Map(raw.ItemConfig, db.ItemConfig); err != nil {
		return nil, fmt.Errorf("item_config: %w", err)
	}
	if err := fillUint32Map(raw.RelicConfig, db.RelicConfig); err != nil {
		return nil, fmt.Errorf("relic_config: %w", err)
	}
	if err := fillUint32Map(raw.RelicSetConfig, db.RelicSetConfig); err != nil {
		return nil, fmt.Errorf("relic_set_config: %w", err)
	}
	if err := fillUint32Map(raw.MultipathAvatarConfig, db.MultipathAvatarConfig); err != nil {
		return nil, fmt.Errorf("multipath_avatar_config: %w", err)
	}
	if err := fillUint32Map(raw.SkillTreeConfig, db.SkillTreeConfig); err != nil {
		return nil, fmt.Errorf("skill_tree_config: %w", err)
	}

	for _, baseID := range db.MultipathAvatarConfig {
		db.multipathBases[baseID] = struct{}{}
	}

	for k, v := range raw.TextMap {
		hash, err := strconv.ParseUint(k, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("text_map key %q: %w", k, err)
		}
		db.TextMap[hash] = v
	}

	for k, v := range raw.Keys {
		versionID, err := strconv.ParseUint(k, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("keys key %q: %w", k, err)
		}
		keyBytes, err := base64.StdEncoding.DecodeString(v)
		if err != nil {
			return nil, fmt.Errorf("keys value for version %s: %w", k, err)
		}
		db.Keys[uint32(versionID)] = keyBytes
	}

	for _, entry := range raw.RelicMainAffixConfig {
		db.mainAffix[mainAffixKey{Group: entry.Group, ID: entry.AffixID}] = RelicMainAffixConfig{
			Property: entry.Property,
		}
	}

	for _, entry := range raw.RelicSubAffixConfig {
		db.subAffix[subAffixKey{Rarity: entry.Rarity, ID: entry.AffixID}] = RelicSubAffixConfig{
			Property:  entry.Property,
			BaseValue: entry.BaseValue,
			StepValue: entry.StepValue,
		}
	}

	return db, nil
}

// fillUint32Map decodes a JSON-object-keyed-by-decimal-string map (the
// shape every id-keyed table takes on the wire, since JSON object keys
// must be strings) into a uint32-keyed Go map.
func fillUint32Map[V any](src map[string]V, dst map[uint32]V) error {
	for k, v := range src {
		id, err := strconv.ParseUint(k, 10, 32)
		if err != nil {
			return fmt.Errorf("key %q: %w", k, err)
		}
		dst[uint32(id)] = v
	}
	return nil
}
