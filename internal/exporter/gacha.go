package exporter

import (
	"log/slog"
	"strconv"

	"github.com/IceDynamix/reliquary-archiver-go/internal/schema"
)

// handleGachaInfo records every advertised banner's rate-up pool and
// classifies its type, so a later DoGachaScRsp can be interpreted
// without re-deriving the banner from the pull itself (spec.md §4.4.2,
// grounded on
// original_source/src/export/fribbels/handlers.rs handle_gacha_info).
func (e *Exporter) handleGachaInfo(m schema.GetGachaInfo) {
	for _, entry := range m.GachaInfoList {
		e.banners[entry.GachaID] = BannerInfo{
			RateUpItems: entry.ItemDetailList,
			Type:        classifyBanner(e.db, entry),
		}
	}
}

func classifyBanner(db interface {
	LookupEquipmentRarity(id uint32) (string, bool)
}, entry schema.GachaInfoEntry) BannerType {
	if entry.GachaID == 1001 {
		return BannerStandard
	}
	if len(entry.PrizeItemList) > 0 {
		if _, ok := db.LookupEquipmentRarity(entry.PrizeItemList[0]); ok {
			return BannerLightCone
		}
	}
	return BannerCharacter
}

// handleGacha derives the pity state after one batch of pulls. The
// counters are computed fresh from this single command rather than
// threaded through the aggregate: original_source's handle_gacha
// builds a local GachaResult at the top of every call instead of
// reading back a stored pity value.
func (e *Exporter) handleGacha(m schema.DoGacha) Event {
	banner, ok := e.banners[m.GachaID]
	if !ok {
		slog.Warn("gacha banner not seen before pull, skipping", "gacha_id", m.GachaID)
		return nil
	}

	result := GachaResult{
		BannerID:   m.GachaID,
		BannerType: banner.Type,
		Pity4:      PityUpdate{Kind: PityAdd},
		Pity5:      PityUpdate{Kind: PityAdd},
	}

	for _, item := range m.GachaItemList {
		itemID := item.GachaItem.ItemID
		result.PullResults = append(result.PullResults, itemID)

		rarity, ok := rarityOf(e.db, itemID)
		if !ok {
			slog.Warn("gacha item rarity not found, skipping pity update", "item_id", itemID)
			continue
		}

		rateUp := containsUint32(banner.RateUpItems, itemID)
		switch rarity {
		case 5:
			result.Pity4.increment()
			result.Pity5.reset(!rateUp)
		case 4:
			result.Pity4.reset(!rateUp)
			result.Pity5.increment()
		case 3:
			result.Pity4.increment()
			result.Pity5.increment()
		}
	}

	return GachaResultEvent{Result: result}
}

// rarityOf looks up a pulled item's star rating, trying the
// equipment (light cone) table before the avatar (character) table.
func rarityOf(db interface {
	LookupEquipmentRarity(id uint32) (string, bool)
	LookupAvatarRarity(id uint32) (string, bool)
}, itemID uint32) (uint32, bool) {
	if raw, ok := db.LookupEquipmentRarity(itemID); ok {
		return parseRarity(raw)
	}
	if raw, ok := db.LookupAvatarRarity(itemID); ok {
		return parseRarity(raw)
	}
	return 0, false
}

func parseRarity(raw string) (uint32, bool) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return uint32(n), true
}

func containsUint32(haystack []uint32, needle uint32) bool {
	for _, v := range haystack {
		if v == needle {
			return true
		}
	}
	return false
}
