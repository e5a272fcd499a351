// Package exporter maintains the aggregate player-inventory snapshot
// (spec.md §3 "Aggregate State") and turns decoded commands into
// upsert/delete events. Grounded on
// original_source/src/export/fribbels/{handlers,converters,models}.rs,
// generalized from its async-actor-with-channel shape to a plain
// struct whose methods are called serially by the pipeline's single
// dispatch task (spec.md §5 "Exporter handlers run serially on a
// single task").
package exporter

// Relic is one inventoried relic instance (spec.md §3, §6). Fields
// already carry their exported form (e.g. Slot is "Head", not "HEAD")
// since the original implementation's converters build the exported
// shape directly off the wire message rather than keeping a separate
// raw/export pair.
type Relic struct {
	UID      uint32
	SetID    uint32
	SetName  string
	Slot     string
	Rarity   uint32
	Level    uint32
	MainStat string
	SubStats []SubStat
	Location uint32 // equipping avatar_id, 0 if unequipped
	Lock     bool
	Discard  bool
}

// SubStat is one relic sub-stat roll, its Value already scaled per
// spec.md §8 ("a substat whose exported key ends with _ has its value
// scaled by 100").
type SubStat struct {
	Key   string
	Value float64
	Count uint32
	Step  uint32
}

// LightCone is one inventoried light cone instance.
type LightCone struct {
	UID             uint32
	ID              uint32
	Name            string
	Level           uint32
	Ascension       uint32
	Superimposition uint32
	Location        uint32
	Lock            bool
}

// Material is one stack of a fungible inventory item.
type Material struct {
	ID         uint32
	Name       string
	Count      uint32
	ExpireTime *uint64 // never populated by the recognized message set; carried for export-shape parity
}

// Character is a roster entry, resolved or not (spec.md §4.4.1).
type Character struct {
	ID              uint32
	Name            string
	Path            string // exported path name, e.g. "Preservation"
	Level           uint32
	Ascension       uint32
	Eidolon         uint32
	Skills          map[string]uint32 // anchor -> level, for "basic"/"skill"/"ult"/"talent"
	Traces          map[string]bool   // anchor -> unlocked, for "ability_1".."ability_3"/"stat_1".."stat_10"
	MemospriteSkill uint32
	MemospriteTalent uint32
	AbilityVersion  uint32
}

func newCharacter() Character {
	return Character{
		Skills: make(map[string]uint32),
		Traces: make(map[string]bool),
	}
}

// GachaFunds is the player's current soft-currency counts.
type GachaFunds struct {
	StellarJade  uint32
	OnericShards uint32
}

// BannerType classifies a gacha banner (spec.md §4.4).
type BannerType string

const (
	BannerStandard  BannerType = "Standard"
	BannerLightCone BannerType = "LightCone"
	BannerCharacter BannerType = "Character"
)

// BannerInfo is a recorded gacha banner definition.
type BannerInfo struct {
	RateUpItems []uint32
	Type        BannerType
}

// PityKind distinguishes whether a PityUpdate is an accumulating add or
// a guarantee-tracking reset (spec.md §4.4.2).
type PityKind string

const (
	PityAdd   PityKind = "add"
	PityReset PityKind = "reset"
)

// PityUpdate is the derived state of one pity counter after processing
// every pull in a single DoGachaScRsp.
type PityUpdate struct {
	Kind         PityKind `json:"kind"`
	Amount       uint32   `json:"amount"`
	SetGuarantee bool     `json:"set_guarantee"` // only meaningful when Kind == PityReset
}

func (p *PityUpdate) increment() {
	p.Amount++
}

func (p *PityUpdate) reset(setGuarantee bool) {
	p.Kind = PityReset
	p.Amount = 0
	p.SetGuarantee = setGuarantee
}

// GachaResult is the per-pull-batch derivation emitted for one
// DoGachaScRsp command.
type GachaResult struct {
	BannerID    uint32      `json:"banner_id"`
	BannerType  BannerType  `json:"banner_type"`
	PullResults []uint32    `json:"pull_results"`
	Pity4       PityUpdate  `json:"pity_4"`
	Pity5       PityUpdate  `json:"pity_5"`
}
