package exporter

import (
	"log/slog"

	"github.com/IceDynamix/reliquary-archiver-go/internal/schema"
)

// ingestCharacter handles one base avatar record. If the avatar id
// names a multipath base, the record is stashed rather than exported
// directly, and every variant still waiting on it is resolved; the
// resolved variants are returned alongside since they need to surface
// as their own update rather than as this function's own character
// (spec.md §4.4.1, grounded on
// original_source/src/export/fribbels/handlers.rs ingest_character).
func (e *Exporter) ingestCharacter(proto schema.ProtoCharacter) (Character, bool, []Character) {
	if e.db.IsMultipathBase(proto.BaseAvatarID) {
		e.multipathBaseAvatars[proto.BaseAvatarID] = proto

		var resolved []Character
		for variantID := range e.unresolvedMultipath {
			if c, ok := e.resolveMultipathCharacter(variantID); ok {
				resolved = append(resolved, c)
			}
		}
		return Character{}, false, resolved
	}

	c, ok := convertCharacter(e.db, proto)
	if !ok {
		slog.Warn("avatar config not found for character, skipping", "avatar_id", proto.BaseAvatarID)
		return Character{}, false, nil
	}
	e.characters[c.ID] = c
	return c, true, nil
}

// ingestMultipathCharacter handles one path-variant record. Trailblazer
// variants get their gender derived from the character id's parity on
// every ingestion (spec.md §4.4.1, not gated to first sight).
func (e *Exporter) ingestMultipathCharacter(proto schema.ProtoMultiPathAvatar) (Character, bool) {
	c, ok := convertMultipathCharacter(e.db, proto)
	if !ok {
		slog.Warn("avatar config not found for multipath character, skipping", "avatar_id", proto.AvatarID)
		return Character{}, false
	}

	if c.Name == "Trailblazer" {
		gender := "Caelus"
		if proto.AvatarID%2 == 0 {
			gender = "Stelle"
		}
		e.trailblazer = &gender
	}

	e.multipathCharacters[c.ID] = c
	return e.resolveMultipathCharacter(c.ID)
}

// resolveMultipathCharacter joins a stored multipath variant with its
// base avatar record, if known, filling in level and ascension which a
// variant message never carries on its own.
func (e *Exporter) resolveMultipathCharacter(characterID uint32) (Character, bool) {
	c, ok := e.multipathCharacters[characterID]
	if !ok {
		return Character{}, false
	}

	baseID, ok := e.db.MultipathBaseAvatarID(characterID)
	if !ok {
		e.unresolvedMultipath[characterID] = struct{}{}
		return Character{}, false
	}

	base, ok := e.multipathBaseAvatars[baseID]
	if !ok {
		e.unresolvedMultipath[characterID] = struct{}{}
		return Character{}, false
	}

	c.Level = base.Level
	c.Ascension = base.Promotion
	e.multipathCharacters[characterID] = c
	delete(e.unresolvedMultipath, characterID)
	return c, true
}
