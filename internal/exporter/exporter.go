package exporter

import (
	"log/slog"

	"github.com/IceDynamix/reliquary-archiver-go/internal/decoder"
	"github.com/IceDynamix/reliquary-archiver-go/internal/reference"
	"github.com/IceDynamix/reliquary-archiver-go/internal/schema"
)

// Exporter owns the aggregate player snapshot and reacts to decoded
// commands. Not safe for concurrent use: spec.md §5 requires handlers
// to run serially on a single task, the same ownership discipline
// internal/sniffer.Sniffer follows for its session table.
type Exporter struct {
	db *reference.Database

	uid         *uint32
	trailblazer *string

	relics     map[uint32]Relic
	lightCones map[uint32]LightCone
	materials  map[uint32]Material

	characters           map[uint32]Character
	multipathCharacters  map[uint32]Character
	multipathBaseAvatars map[uint32]schema.ProtoCharacter
	unresolvedMultipath  map[uint32]struct{}

	banners    map[uint32]BannerInfo
	gachaFunds GachaFunds

	gotUID, gotRelics, gotLightCones, gotCharacters, gotMultipathCharacters bool
	initialized                                                            bool
}

// New constructs an Exporter backed by db's lookup tables.
func New(db *reference.Database) *Exporter {
	e := &Exporter{db: db}
	e.reset()
	return e
}

func (e *Exporter) reset() {
	e.uid = nil
	e.trailblazer = nil
	e.relics = make(map[uint32]Relic)
	e.lightCones = make(map[uint32]LightCone)
	e.materials = make(map[uint32]Material)
	e.characters = make(map[uint32]Character)
	e.multipathCharacters = make(map[uint32]Character)
	e.multipathBaseAvatars = make(map[uint32]schema.ProtoCharacter)
	e.unresolvedMultipath = make(map[uint32]struct{})
	e.banners = make(map[uint32]BannerInfo)
	e.gachaFunds = GachaFunds{}
	e.gotUID = false
	e.gotRelics = false
	e.gotLightCones = false
	e.gotCharacters = false
	e.gotMultipathCharacters = false
	e.initialized = false
}

// Dispatch routes one decoded message to its handler and returns every
// Event it produces, including a trailing InitialScan if this call is
// the one that satisfies spec.md §4.4.4's initialization gate.
func (e *Exporter) Dispatch(commandID uint32, msg decoder.Message) []Event {
	var events []Event

	switch m := msg.(type) {
	case schema.PlayerGetToken:
		e.handleToken(m)
	case schema.PlayerLogin:
		events = append(events, e.handleLogin(m)...)
	case schema.GetBag:
		events = append(events, e.handleBag(m)...)
	case schema.GetAvatarData:
		events = append(events, e.handleAvatarData(m)...)
	case schema.GetMultiPathAvatarInfo:
		events = append(events, e.handleMultiPathAvatarInfo(m)...)
	case schema.PlayerSync:
		events = append(events, e.handlePlayerSync(m)...)
	case schema.SetAvatarEnhancedID:
		events = append(events, e.handleSetAvatarEnhanced(m)...)
	case schema.GetGachaInfo:
		e.handleGachaInfo(m)
	case schema.DoGacha:
		if ev := e.handleGacha(m); ev != nil {
			events = append(events, ev)
		}
	default:
		slog.Debug("exporter ignored unhandled message type", "command_id", commandID, "name", schema.Names[commandID])
		return nil
	}

	if !e.initialized && e.readyToInitialize() {
		e.initialized = true
		events = append(events, InitialScan{Export: e.Export()})
	}

	return events
}

// Initialized reports whether the aggregate has satisfied spec.md
// §4.4.4's initialization gate at least once. A bus snapshot source
// consults this before offering a new subscriber a synthetic
// InitialScan.
func (e *Exporter) Initialized() bool {
	return e.initialized
}

func (e *Exporter) readyToInitialize() bool {
	return e.gotUID && e.trailblazer != nil && e.gotRelics && e.gotLightCones &&
		e.gotCharacters && e.gotMultipathCharacters
}

func (e *Exporter) handleToken(m schema.PlayerGetToken) {
	e.reset()
	uid := m.UID
	e.uid = &uid
	e.gotUID = true
}

func (e *Exporter) handleLogin(m schema.PlayerLogin) []Event {
	e.gachaFunds = GachaFunds{
		StellarJade:  m.BasicInfo.StellarJadeCount,
		OnericShards: m.BasicInfo.OnericShardCount,
	}
	if !e.initialized {
		return nil
	}
	return []Event{UpdateGachaFunds{Funds: e.gachaFunds}}
}

func (e *Exporter) applyBag(relicList []schema.ProtoRelic, equipmentList []schema.ProtoEquipment, materialList []schema.ProtoMaterial) (relics []Relic, lightCones []LightCone, materials []Material) {
	for _, r := range relicList {
		if relic, ok := convertRelic(e.db, r); ok {
			e.relics[relic.UID] = relic
			relics = append(relics, relic)
		} else {
			slog.Warn("relic config not found, skipping", "tid", r.Tid)
		}
	}
	for _, eq := range equipmentList {
		if lc, ok := convertLightCone(e.db, eq); ok {
			e.lightCones[lc.UID] = lc
			lightCones = append(lightCones, lc)
		} else {
			slog.Warn("equipment config not found, skipping", "tid", eq.Tid)
		}
	}
	for _, mat := range materialList {
		if m, ok := convertMaterial(e.db, mat); ok {
			e.materials[m.ID] = m
			materials = append(materials, m)
		} else {
			slog.Warn("item config not found, skipping", "tid", mat.Tid)
		}
	}
	return relics, lightCones, materials
}

func (e *Exporter) handleBag(m schema.GetBag) []Event {
	relics, lightCones, materials := e.applyBag(m.RelicList, m.EquipmentList, m.MaterialList)
	e.gotRelics = true
	e.gotLightCones = true
	if !e.initialized {
		return nil
	}
	var events []Event
	if len(relics) > 0 {
		events = append(events, UpdateRelics{Relics: relics})
	}
	if len(lightCones) > 0 {
		events = append(events, UpdateLightCones{LightCones: lightCones})
	}
	if len(materials) > 0 {
		events = append(events, UpdateMaterials{Materials: materials})
	}
	return events
}

func (e *Exporter) handleAvatarData(m schema.GetAvatarData) []Event {
	var updated []Character
	for _, avatar := range m.AvatarList {
		c, ok, resolved := e.ingestCharacter(avatar)
		if ok {
			updated = append(updated, c)
		}
		updated = append(updated, resolved...)
	}
	for _, variant := range m.MultiPathAvatarInfoList {
		if c, ok := e.ingestMultipathCharacter(variant); ok {
			updated = append(updated, c)
		}
	}
	e.gotCharacters = true
	e.gotMultipathCharacters = true
	if len(updated) == 0 || !e.initialized {
		return nil
	}
	return []Event{UpdateCharacters{Characters: updated}}
}

func (e *Exporter) handleMultiPathAvatarInfo(m schema.GetMultiPathAvatarInfo) []Event {
	var updated []Character
	for _, variant := range m.MultiPathAvatarInfoList {
		if c, ok := e.ingestMultipathCharacter(variant); ok {
			updated = append(updated, c)
		}
	}
	if len(updated) == 0 || !e.initialized {
		return nil
	}
	return []Event{UpdateCharacters{Characters: updated}}
}

func (e *Exporter) handleSetAvatarEnhanced(m schema.SetAvatarEnhancedID) []Event {
	c, ok := e.characters[m.GrowthAvatarID]
	if !ok {
		slog.Warn("character not found when setting enhanced id, skipping", "avatar_id", m.GrowthAvatarID)
		return nil
	}
	c.AbilityVersion = m.SkilltreeVersion
	e.characters[m.GrowthAvatarID] = c
	if !e.initialized {
		return nil
	}
	return []Event{UpdateCharacters{Characters: []Character{c}}}
}
