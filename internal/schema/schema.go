// Package schema holds the plain Go structs that stand in for the
// game's generated message schema. The real schema is a proprietary
// protobuf-like layout maintained out of band; it is treated here as a
// fixed external artifact (see spec.md §1 and DESIGN.md's Open Question
// #3). The field names mirror the ones the specification and the
// original implementation name, so the decoder and the exporter can be
// written and tested purely in terms of them.
package schema

// Command ids for the recognized message set (spec.md §4.3).
const (
	PlayerGetTokenScRsp         uint32 = 1
	PlayerLoginScRsp            uint32 = 2
	GetBagScRsp                 uint32 = 3
	GetAvatarDataScRsp          uint32 = 4
	GetMultiPathAvatarInfoScRsp uint32 = 5
	PlayerSyncScNotify          uint32 = 6
	SetAvatarEnhancedIdScRsp    uint32 = 7
	GetGachaInfoScRsp           uint32 = 8
	DoGachaScRsp                uint32 = 9
)

// Names maps a recognized command id to its semantic name, for logging.
var Names = map[uint32]string{
	PlayerGetTokenScRsp:         "PlayerGetTokenScRsp",
	PlayerLoginScRsp:            "PlayerLoginScRsp",
	GetBagScRsp:                 "GetBagScRsp",
	GetAvatarDataScRsp:          "GetAvatarDataScRsp",
	GetMultiPathAvatarInfoScRsp: "GetMultiPathAvatarInfoScRsp",
	PlayerSyncScNotify:          "PlayerSyncScNotify",
	SetAvatarEnhancedIdScRsp:    "SetAvatarEnhancedIdScRsp",
	GetGachaInfoScRsp:           "GetGachaInfoScRsp",
	DoGachaScRsp:                "DoGachaScRsp",
}

type PlayerGetToken struct {
	UID uint32 `json:"uid"`
}

type BasicInfo struct {
	StellarJadeCount  uint32 `json:"stellar_jade_count"`
	OnericShardCount  uint32 `json:"oneric_shard_count"`
}

type PlayerLogin struct {
	BasicInfo BasicInfo `json:"basic_info"`
}

type ProtoRelic struct {
	Tid                  uint32      `json:"tid"`
	UniqueID             uint32      `json:"unique_id"`
	Level                uint32      `json:"level"`
	MainAffixID          uint32      `json:"main_affix_id"`
	SubAffixList         []RelicAffix `json:"sub_affix_list"`
	EquipAvatarID        uint32      `json:"equip_avatar_id"`
	IsProtected          bool        `json:"is_protected"`
	IsDiscarded          bool        `json:"is_discarded"`
}

type RelicAffix struct {
	AffixID uint32 `json:"affix_id"`
	Cnt     uint32 `json:"cnt"`
	Step    uint32 `json:"step"`
}

type ProtoEquipment struct {
	Tid           uint32 `json:"tid"`
	UniqueID      uint32 `json:"unique_id"`
	Level         uint32 `json:"level"`
	Promotion     uint32 `json:"promotion"`
	Rank          uint32 `json:"rank"`
	EquipAvatarID uint32 `json:"equip_avatar_id"`
	IsProtected   bool   `json:"is_protected"`
}

type ProtoMaterial struct {
	Tid uint32 `json:"tid"`
	Num uint32 `json:"num"`
}

type GetBag struct {
	RelicList     []ProtoRelic     `json:"relic_list"`
	EquipmentList []ProtoEquipment `json:"equipment_list"`
	MaterialList  []ProtoMaterial  `json:"material_list"`
}

// ProtoCharacter mirrors the base avatar record (proto Avatar message).
type ProtoCharacter struct {
	BaseAvatarID uint32 `json:"base_avatar_id"`
	Level        uint32 `json:"level"`
	Promotion    uint32 `json:"promotion"`
}

type SkillTreeNode struct {
	MultiPointID uint32 `json:"multi_point_id"`
	Level        uint32 `json:"level"`
}

// ProtoMultiPathAvatar mirrors the AvatarPathData / MultiPathAvatarInfo message.
type ProtoMultiPathAvatar struct {
	AvatarID            uint32          `json:"avatar_id"`
	Rank                uint32          `json:"rank"`
	SkilltreeVersion    uint32          `json:"skilltree_version"`
	AvatarPathSkillTree []SkillTreeNode `json:"avatar_path_skill_tree"`
}

type GetAvatarData struct {
	AvatarList             []ProtoCharacter       `json:"avatar_list"`
	MultiPathAvatarInfoList []ProtoMultiPathAvatar `json:"multi_path_avatar_info_list"`
}

type GetMultiPathAvatarInfo struct {
	MultiPathAvatarInfoList []ProtoMultiPathAvatar `json:"multi_path_avatar_info_list"`
}

type AvatarSync struct {
	AvatarList []ProtoCharacter `json:"avatar_list"`
}

type PlayerSync struct {
	RelicList               []ProtoRelic           `json:"relic_list"`
	EquipmentList           []ProtoEquipment        `json:"equipment_list"`
	MaterialList            []ProtoMaterial         `json:"material_list"`
	BasicInfo               *BasicInfo              `json:"basic_info,omitempty"`
	DelRelicList            []uint32                `json:"del_relic_list"`
	DelEquipmentList        []uint32                `json:"del_equipment_list"`
	AvatarSync              *AvatarSync             `json:"avatar_sync,omitempty"`
	MultiPathAvatarInfoList []ProtoMultiPathAvatar  `json:"multi_path_avatar_info_list"`
}

type SetAvatarEnhancedID struct {
	GrowthAvatarID   uint32 `json:"growth_avatar_id"`
	SkilltreeVersion uint32 `json:"skilltree_version"`
}

type GachaInfoEntry struct {
	GachaID        uint32   `json:"gacha_id"`
	ItemDetailList []uint32 `json:"item_detail_list"`
	PrizeItemList  []uint32 `json:"prize_item_list"`
}

type GetGachaInfo struct {
	GachaInfoList []GachaInfoEntry `json:"gacha_info_list"`
}

type GachaItem struct {
	ItemID uint32 `json:"item_id"`
}

type GachaItemEntry struct {
	GachaItem GachaItem `json:"gacha_item"`
}

type DoGacha struct {
	GachaID       uint32           `json:"gacha_id"`
	GachaItemList []GachaItemEntry `json:"gacha_item_list"`
}
