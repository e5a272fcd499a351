package exporter

import (
	"log/slog"

	"github.com/IceDynamix/reliquary-archiver-go/internal/schema"
)

// handlePlayerSync applies an incremental update: upserts, deletes, and
// nested avatar syncs, each only surfaced as its own event when
// non-empty (spec.md §4.4.3, grounded on
// original_source/src/export/fribbels/handlers.rs handle_player_sync).
func (e *Exporter) handlePlayerSync(m schema.PlayerSync) []Event {
	var events []Event

	relics, lightCones, materials := e.applyBag(m.RelicList, m.EquipmentList, m.MaterialList)
	if len(relics) > 0 {
		events = append(events, UpdateRelics{Relics: relics})
	}
	if len(lightCones) > 0 {
		events = append(events, UpdateLightCones{LightCones: lightCones})
	}
	if len(materials) > 0 {
		events = append(events, UpdateMaterials{Materials: materials})
	}

	if m.BasicInfo != nil {
		e.gachaFunds = GachaFunds{
			StellarJade:  m.BasicInfo.StellarJadeCount,
			OnericShards: m.BasicInfo.OnericShardCount,
		}
		events = append(events, UpdateGachaFunds{Funds: e.gachaFunds})
	}

	if uids := e.deleteRelics(m.DelRelicList); len(uids) > 0 {
		events = append(events, DeleteRelics{UIDs: uids})
	}
	if uids := e.deleteLightCones(m.DelEquipmentList); len(uids) > 0 {
		events = append(events, DeleteLightCones{UIDs: uids})
	}

	var updatedCharacters []Character
	if m.AvatarSync != nil {
		for _, avatar := range m.AvatarSync.AvatarList {
			c, ok, resolved := e.ingestCharacter(avatar)
			if ok {
				updatedCharacters = append(updatedCharacters, c)
			}
			updatedCharacters = append(updatedCharacters, resolved...)
		}
	}
	for _, variant := range m.MultiPathAvatarInfoList {
		if c, ok := e.ingestMultipathCharacter(variant); ok {
			updatedCharacters = append(updatedCharacters, c)
		}
	}
	if len(updatedCharacters) > 0 {
		events = append(events, UpdateCharacters{Characters: updatedCharacters})
	}

	if !e.initialized {
		return nil
	}
	return events
}

func (e *Exporter) deleteRelics(uids []uint32) []uint32 {
	var deleted []uint32
	for _, uid := range uids {
		if _, ok := e.relics[uid]; !ok {
			slog.Warn("relic to delete not found, skipping", "uid", uid)
			continue
		}
		delete(e.relics, uid)
		deleted = append(deleted, uid)
	}
	return deleted
}

func (e *Exporter) deleteLightCones(uids []uint32) []uint32 {
	var deleted []uint32
	for _, uid := range uids {
		if _, ok := e.lightCones[uid]; !ok {
			slog.Warn("light cone to delete not found, skipping", "uid", uid)
			continue
		}
		delete(e.lightCones, uid)
		deleted = append(deleted, uid)
	}
	return deleted
}
