package reference

// trailblazerID is the smallest avatar_id used by any Trailblazer path
// variant. Every id at or above it names "Trailblazer" regardless of
// what avatar_config says, though avatar_config is still consulted for
// path class — see DESIGN.md Open Question decision #1.
const trailblazerID = 8000

// LookupAvatarName resolves an avatar's display name, applying the
// Trailblazer short-circuit for multipath player-avatar ids.
func (db *Database) LookupAvatarName(avatarID uint32) (string, bool) {
	if avatarID >= trailblazerID {
		return "Trailblazer", true
	}
	cfg, ok := db.AvatarConfig[avatarID]
	if !ok {
		return "", false
	}
	return db.LookupText(cfg.AvatarName)
}

// LookupAvatarPath returns the avatar's raw path-class string (e.g.
// "Knight"), unaffected by the Trailblazer name short-circuit.
func (db *Database) LookupAvatarPath(avatarID uint32) (string, bool) {
	cfg, ok := db.AvatarConfig[avatarID]
	if !ok {
		return "", false
	}
	return cfg.AvatarBaseType, true
}

// LookupAvatarRarity returns the avatar's rarity string, e.g. "5".
func (db *Database) LookupAvatarRarity(avatarID uint32) (string, bool) {
	cfg, ok := db.AvatarConfig[avatarID]
	if !ok {
		return "", false
	}
	return cfg.Rarity, true
}

// LookupEquipmentName resolves a light cone's display name.
func (db *Database) LookupEquipmentName(equipmentID uint32) (string, bool) {
	cfg, ok := db.EquipmentConfig[equipmentID]
	if !ok {
		return "", false
	}
	return db.LookupText(cfg.EquipmentName)
}

// LookupEquipmentRarity returns a light cone's rarity string.
func (db *Database) LookupEquipmentRarity(equipmentID uint32) (string, bool) {
	cfg, ok := db.EquipmentConfig[equipmentID]
	if !ok {
		return "", false
	}
	return cfg.Rarity, true
}

// LookupItemName resolves a material's display name.
func (db *Database) LookupItemName(itemID uint32) (string, bool) {
	cfg, ok := db.ItemConfig[itemID]
	if !ok {
		return "", false
	}
	return db.LookupText(cfg.ItemName)
}

// LookupSetName resolves a relic set's display name.
func (db *Database) LookupSetName(setID uint32) (string, bool) {
	cfg, ok := db.RelicSetConfig[setID]
	if !ok {
		return "", false
	}
	return db.LookupText(cfg.SetName)
}

// RelicConfigByTid looks up a relic's static config by its tid.
func (db *Database) RelicConfigByTid(tid uint32) (RelicConfig, bool) {
	cfg, ok := db.RelicConfig[tid]
	return cfg, ok
}

// RelicRarity derives a relic's rarity from its config, per spec.md §9:
// integer division of the max level by three (max_level 15 -> rarity 5).
func RelicRarity(cfg RelicConfig) uint32 {
	return cfg.MaxLevel / 3
}

// MainAffixProperty resolves a relic's main stat property name.
func (db *Database) MainAffixProperty(group, affixID uint32) (string, bool) {
	entry, ok := db.mainAffix[mainAffixKey{Group: group, ID: affixID}]
	if !ok {
		return "", false
	}
	return entry.Property, true
}

// SubAffixProperty resolves a relic sub-stat's property name and the
// value scale used to compute its exported magnitude.
func (db *Database) SubAffixProperty(rarity, affixID uint32) (RelicSubAffixConfig, bool) {
	entry, ok := db.subAffix[subAffixKey{Rarity: rarity, ID: affixID}]
	return entry, ok
}

// LookupText resolves a text-map hash to its localized string.
func (db *Database) LookupText(hash uint64) (string, bool) {
	s, ok := db.TextMap[hash]
	return s, ok
}

// MultipathBaseAvatarID returns the base avatar id a multipath variant
// id maps to, per the multipath_avatar_config table.
func (db *Database) MultipathBaseAvatarID(avatarID uint32) (uint32, bool) {
	base, ok := db.MultipathAvatarConfig[avatarID]
	return base, ok
}

// IsMultipathBase reports whether avatarID is a base_avatar_id named by
// at least one entry of the multipath_avatar_config table, i.e. whether
// a base-avatar record carrying this id belongs to a multipath
// character rather than an ordinary one.
func (db *Database) IsMultipathBase(avatarID uint32) bool {
	_, ok := db.multipathBases[avatarID]
	return ok
}

// SessionKey resolves the per-version pre-shared key. The sniffer looks
// it up at handshake time and derives a cipher from it for every
// reassembled message of the session.
func (db *Database) SessionKey(versionID uint32) ([]byte, bool) {
	key, ok := db.Keys[versionID]
	return key, ok
}

// SkillTreeAnchor resolves a skill-tree point id to the anchor field it
// feeds in an exported character document (spec.md §3, §6).
func (db *Database) SkillTreeAnchor(pointID uint32) (string, bool) {
	cfg, ok := db.SkillTreeConfig[pointID]
	if !ok {
		return "", false
	}
	return cfg.Anchor, true
}
