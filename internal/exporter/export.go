package exporter

import (
	"sort"
	"strconv"
)

// buildVersion is stamped into every export document's "build" field.
// Set at link time would require an extra dependency for something
// this small; a constant mirrors how the teacher pins protocol/version
// constants (internal/protocol) directly in source.
const buildVersion = "0.1.0"

const exportSchemaVersion = 4

func itoa(v uint32) string {
	return strconv.FormatUint(uint64(v), 10)
}

// Document is the JSON shape of a full snapshot (spec.md §6).
type Document struct {
	Source     string          `json:"source"`
	Build      string          `json:"build"`
	Version    int             `json:"version"`
	Metadata   MetadataDoc     `json:"metadata"`
	Gacha      GachaFundsDoc   `json:"gacha"`
	Materials  []MaterialDoc   `json:"materials"`
	LightCones []LightConeDoc  `json:"light_cones"`
	Relics     []RelicDoc      `json:"relics"`
	Characters []CharacterDoc  `json:"characters"`
}

type MetadataDoc struct {
	UID         *uint32 `json:"uid"`
	Trailblazer *string `json:"trailblazer"`
}

type GachaFundsDoc struct {
	StellarJade  uint32 `json:"stellar_jade"`
	OnericShards uint32 `json:"oneric_shards"`
}

type MaterialDoc struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Count      uint32  `json:"count"`
	ExpireTime *uint64 `json:"expire_time,omitempty"`
}

type LightConeDoc struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Level           uint32 `json:"level"`
	Ascension       uint32 `json:"ascension"`
	Superimposition uint32 `json:"superimposition"`
	Location        string `json:"location"`
	Lock            bool   `json:"lock"`
	UID             string `json:"_uid"`
}

type SubStatDoc struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
	Count uint32  `json:"count"`
	Step  uint32  `json:"step"`
}

type RelicDoc struct {
	SetID    string       `json:"set_id"`
	Name     string       `json:"name"`
	Slot     string       `json:"slot"`
	Rarity   uint32       `json:"rarity"`
	Level    uint32       `json:"level"`
	MainStat string       `json:"mainstat"`
	SubStats []SubStatDoc `json:"substats"`
	Location string       `json:"location"`
	Lock     bool         `json:"lock"`
	Discard  bool         `json:"discard"`
	UID      string       `json:"_uid"`
}

type CharacterDoc struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Path       string          `json:"path"`
	Level      uint32          `json:"level"`
	Ascension  uint32          `json:"ascension"`
	Eidolon    uint32          `json:"eidolon"`
	Skills     SkillsDoc       `json:"skills"`
	Traces     TracesDoc       `json:"traces"`
	Memosprite *MemospriteDoc  `json:"memosprite,omitempty"`
}

type SkillsDoc struct {
	Basic uint32 `json:"basic"`
	Skill uint32 `json:"skill"`
	Ult   uint32 `json:"ult"`
	Talent uint32 `json:"talent"`
}

type TracesDoc struct {
	Ability1 bool `json:"ability_1"`
	Ability2 bool `json:"ability_2"`
	Ability3 bool `json:"ability_3"`
	Stat1    bool `json:"stat_1"`
	Stat2    bool `json:"stat_2"`
	Stat3    bool `json:"stat_3"`
	Stat4    bool `json:"stat_4"`
	Stat5    bool `json:"stat_5"`
	Stat6    bool `json:"stat_6"`
	Stat7    bool `json:"stat_7"`
	Stat8    bool `json:"stat_8"`
	Stat9    bool `json:"stat_9"`
	Stat10   bool `json:"stat_10"`
}

type MemospriteDoc struct {
	Skill  uint32 `json:"skill"`
	Talent uint32 `json:"talent"`
}

// Export is the aggregate's full snapshot, held by value so it can be
// captured into an InitialScan event without aliasing the exporter's
// live maps.
type Export struct {
	doc Document
}

// Document returns the JSON-ready export document.
func (ex Export) Document() Document { return ex.doc }

// Export builds a full snapshot of the current aggregate state.
func (e *Exporter) Export() Export {
	doc := Document{
		Source:  "reliquary_archiver",
		Build:   buildVersion,
		Version: exportSchemaVersion,
		Metadata: MetadataDoc{
			UID:         e.uid,
			Trailblazer: e.trailblazer,
		},
		Gacha: GachaFundsDoc{
			StellarJade:  e.gachaFunds.StellarJade,
			OnericShards: e.gachaFunds.OnericShards,
		},
	}

	for _, m := range sortedByKey(e.materials, func(m Material) uint32 { return m.ID }) {
		doc.Materials = append(doc.Materials, materialDoc(m))
	}
	for _, lc := range sortedByKey(e.lightCones, func(lc LightCone) uint32 { return lc.UID }) {
		doc.LightCones = append(doc.LightCones, lightConeDoc(lc))
	}
	for _, r := range sortedByKey(e.relics, func(r Relic) uint32 { return r.UID }) {
		doc.Relics = append(doc.Relics, relicDoc(r))
	}
	for _, c := range e.resolvedCharacters() {
		doc.Characters = append(doc.Characters, characterDoc(c))
	}

	return Export{doc: doc}
}

// resolvedCharacters returns every ordinary character plus every
// multipath character that has been joined with its base avatar record
// (spec.md invariant 3: only resolved characters are exported).
func (e *Exporter) resolvedCharacters() []Character {
	var out []Character
	for _, c := range sortedByKey(e.characters, func(c Character) uint32 { return c.ID }) {
		out = append(out, c)
	}
	for _, c := range sortedByKey(e.multipathCharacters, func(c Character) uint32 { return c.ID }) {
		if _, unresolved := e.unresolvedMultipath[c.ID]; unresolved {
			continue
		}
		out = append(out, c)
	}
	return out
}

func sortedByKey[K uint32, V any](m map[K]V, key func(V) uint32) []V {
	out := make([]V, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return key(out[i]) < key(out[j]) })
	return out
}

// ExportRelics converts an incremental relic delta to its wire document
// shape (spec.md §6), reusing the same field mapping as a full Export.
func ExportRelics(relics []Relic) []RelicDoc {
	docs := make([]RelicDoc, 0, len(relics))
	for _, r := range relics {
		docs = append(docs, relicDoc(r))
	}
	return docs
}

// ExportLightCones converts an incremental light cone delta to its wire
// document shape.
func ExportLightCones(lightCones []LightCone) []LightConeDoc {
	docs := make([]LightConeDoc, 0, len(lightCones))
	for _, lc := range lightCones {
		docs = append(docs, lightConeDoc(lc))
	}
	return docs
}

// ExportMaterials converts an incremental material delta to its wire
// document shape.
func ExportMaterials(materials []Material) []MaterialDoc {
	docs := make([]MaterialDoc, 0, len(materials))
	for _, m := range materials {
		docs = append(docs, materialDoc(m))
	}
	return docs
}

// ExportCharacters converts an incremental character delta to its wire
// document shape.
func ExportCharacters(characters []Character) []CharacterDoc {
	docs := make([]CharacterDoc, 0, len(characters))
	for _, c := range characters {
		docs = append(docs, characterDoc(c))
	}
	return docs
}

// ExportGachaFunds converts a GachaFunds snapshot to its wire document
// shape.
func ExportGachaFunds(f GachaFunds) GachaFundsDoc {
	return GachaFundsDoc{StellarJade: f.StellarJade, OnericShards: f.OnericShards}
}

func materialDoc(m Material) MaterialDoc {
	return MaterialDoc{ID: itoa(m.ID), Name: m.Name, Count: m.Count, ExpireTime: m.ExpireTime}
}

func lightConeDoc(lc LightCone) LightConeDoc {
	return LightConeDoc{
		ID:              itoa(lc.ID),
		Name:            lc.Name,
		Level:           lc.Level,
		Ascension:       lc.Ascension,
		Superimposition: lc.Superimposition,
		Location:        formatLocation(lc.Location),
		Lock:            lc.Lock,
		UID:             itoa(lc.UID),
	}
}

func relicDoc(r Relic) RelicDoc {
	subs := make([]SubStatDoc, 0, len(r.SubStats))
	for _, s := range r.SubStats {
		subs = append(subs, SubStatDoc{Key: s.Key, Value: s.Value, Count: s.Count, Step: s.Step})
	}
	return RelicDoc{
		SetID:    itoa(r.SetID),
		Name:     r.SetName,
		Slot:     r.Slot,
		Rarity:   r.Rarity,
		Level:    r.Level,
		MainStat: r.MainStat,
		SubStats: subs,
		Location: formatLocation(r.Location),
		Lock:     r.Lock,
		Discard:  r.Discard,
		UID:      itoa(r.UID),
	}
}

func characterDoc(c Character) CharacterDoc {
	doc := CharacterDoc{
		ID:        itoa(c.ID),
		Name:      c.Name,
		Path:      c.Path,
		Level:     c.Level,
		Ascension: c.Ascension,
		Eidolon:   c.Eidolon,
		Skills: SkillsDoc{
			Basic: c.Skills["basic"],
			Skill: c.Skills["skill"],
			Ult:   c.Skills["ult"],
			Talent: c.Skills["talent"],
		},
		Traces: TracesDoc{
			Ability1: c.Traces["ability_1"],
			Ability2: c.Traces["ability_2"],
			Ability3: c.Traces["ability_3"],
			Stat1:    c.Traces["stat_1"],
			Stat2:    c.Traces["stat_2"],
			Stat3:    c.Traces["stat_3"],
			Stat4:    c.Traces["stat_4"],
			Stat5:    c.Traces["stat_5"],
			Stat6:    c.Traces["stat_6"],
			Stat7:    c.Traces["stat_7"],
			Stat8:    c.Traces["stat_8"],
			Stat9:    c.Traces["stat_9"],
			Stat10:   c.Traces["stat_10"],
		},
	}
	if c.MemospriteSkill != 0 || c.MemospriteTalent != 0 {
		doc.Memosprite = &MemospriteDoc{Skill: c.MemospriteSkill, Talent: c.MemospriteTalent}
	}
	return doc
}
