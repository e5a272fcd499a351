package exporter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IceDynamix/reliquary-archiver-go/internal/reference"
	"github.com/IceDynamix/reliquary-archiver-go/internal/schema"
)

func testDB(t *testing.T) *reference.Database {
	t.Helper()
	db, err := reference.Load("")
	require.NoError(t, err)
	return db
}

// initialize drives an Exporter through the minimum message sequence
// needed to flip `initialized`, using the testdata fixture's 8003/8004
// multipath pair (left unresolved on purpose, so it never collides
// with the 8001/8002 pair Scenario B exercises directly).
func initialize(t *testing.T, e *Exporter) {
	t.Helper()
	e.Dispatch(schema.PlayerGetTokenScRsp, schema.PlayerGetToken{UID: 1})
	e.Dispatch(schema.GetBagScRsp, schema.GetBag{})
	events := e.Dispatch(schema.GetAvatarDataScRsp, schema.GetAvatarData{
		MultiPathAvatarInfoList: []schema.ProtoMultiPathAvatar{{AvatarID: 8004}},
	})
	require.NotEmpty(t, events)
}

// Scenario A — equip a relic.
func TestScenarioA_EquipRelic(t *testing.T) {
	db := testDB(t)
	e := New(db)
	initialize(t, e)

	events := e.Dispatch(schema.GetBagScRsp, schema.GetBag{
		RelicList: []schema.ProtoRelic{
			{Tid: 61020, UniqueID: 42, Level: 0, MainAffixID: 1},
		},
	})

	require.Len(t, events, 1)
	upd, ok := events[0].(UpdateRelics)
	require.True(t, ok)
	require.Len(t, upd.Relics, 1)

	r := upd.Relics[0]
	assert.Equal(t, "Head", r.Slot)
	assert.EqualValues(t, 5, r.Rarity)
	assert.EqualValues(t, 0, r.Level)
	assert.Equal(t, "HP", r.MainStat)
	assert.Equal(t, uint32(0), r.Location)
	assert.Equal(t, uint32(42), r.UID)
	assert.Empty(t, r.SubStats)

	doc := e.Export().Document()
	require.Len(t, doc.Relics, 1)
	assert.Equal(t, "42", doc.Relics[0].UID)
	assert.Equal(t, "", doc.Relics[0].Location)
}

// Scenario B — multipath resolution order: variant arrives before base.
func TestScenarioB_MultipathResolutionOrder(t *testing.T) {
	db := testDB(t)
	e := New(db)
	initialize(t, e)

	// Variant for 8002 (Trailblazer, Destruction) arrives first.
	events := e.Dispatch(schema.GetMultiPathAvatarInfoScRsp, schema.GetMultiPathAvatarInfo{
		MultiPathAvatarInfoList: []schema.ProtoMultiPathAvatar{{
			AvatarID: 8002,
			Rank:     0,
			AvatarPathSkillTree: []schema.SkillTreeNode{
				{MultiPointID: 1201, Level: 3},
				{MultiPointID: 1202, Level: 5},
				{MultiPointID: 1203, Level: 4},
				{MultiPointID: 1204, Level: 6},
			},
		}},
	})
	assert.Empty(t, events, "no event until the base avatar resolves the variant")
	require.NotNil(t, e.trailblazer)
	assert.Equal(t, "Stelle", *e.trailblazer, "8002 is even")

	// Base avatar for 8001 arrives second.
	events = e.Dispatch(schema.GetAvatarDataScRsp, schema.GetAvatarData{
		AvatarList: []schema.ProtoCharacter{
			{BaseAvatarID: 8001, Level: 60, Promotion: 4},
		},
	})

	require.Len(t, events, 1)
	upd, ok := events[0].(UpdateCharacters)
	require.True(t, ok)
	require.Len(t, upd.Characters, 1)

	c := upd.Characters[0]
	assert.Equal(t, uint32(8002), c.ID)
	assert.Equal(t, uint32(60), c.Level)
	assert.Equal(t, uint32(4), c.Ascension)
	assert.Equal(t, "Trailblazer", c.Name)
	assert.Equal(t, "Destruction", c.Path)
	assert.Equal(t, uint32(0), c.Eidolon)
	assert.Equal(t, uint32(3), c.Skills["basic"])
	assert.Equal(t, uint32(5), c.Skills["skill"])
	assert.Equal(t, uint32(4), c.Skills["ult"])
	assert.Equal(t, uint32(6), c.Skills["talent"])
}

// Scenario C — pity counters.
func TestScenarioC_PityCounters(t *testing.T) {
	db := testDB(t)
	e := New(db)
	initialize(t, e)

	e.Dispatch(schema.GetGachaInfoScRsp, schema.GetGachaInfo{
		GachaInfoList: []schema.GachaInfoEntry{
			{GachaID: 1001, ItemDetailList: []uint32{9999}},
		},
	})

	events := e.Dispatch(schema.DoGachaScRsp, schema.DoGacha{
		GachaID: 1001,
		GachaItemList: []schema.GachaItemEntry{
			{GachaItem: schema.GachaItem{ItemID: 10001}}, // 3-star equipment (fixture rarity)
			{GachaItem: schema.GachaItem{ItemID: 1001}},  // 4-star avatar, not rate-up
		},
	})

	require.Len(t, events, 1)
	res, ok := events[0].(GachaResultEvent)
	require.True(t, ok)

	assert.Equal(t, PityReset, res.Result.Pity4.Kind)
	assert.EqualValues(t, 0, res.Result.Pity4.Amount)
	assert.True(t, res.Result.Pity4.SetGuarantee)

	assert.Equal(t, PityAdd, res.Result.Pity5.Kind)
	assert.EqualValues(t, 2, res.Result.Pity5.Amount)
}

// Scenario D — delete flow.
func TestScenarioD_DeleteFlow(t *testing.T) {
	db := testDB(t)
	e := New(db)
	initialize(t, e)

	e.Dispatch(schema.GetBagScRsp, schema.GetBag{
		RelicList: []schema.ProtoRelic{{Tid: 61020, UniqueID: 42, MainAffixID: 1}},
	})

	events := e.Dispatch(schema.PlayerSyncScNotify, schema.PlayerSync{
		DelRelicList: []uint32{42},
	})

	require.Len(t, events, 1)
	del, ok := events[0].(DeleteRelics)
	require.True(t, ok)
	assert.Equal(t, []uint32{42}, del.UIDs)

	doc := e.Export().Document()
	assert.Empty(t, doc.Relics)
}

// Scenario E — login resets state.
func TestScenarioE_LoginResetsState(t *testing.T) {
	db := testDB(t)
	e := New(db)
	initialize(t, e)

	e.Dispatch(schema.GetBagScRsp, schema.GetBag{
		RelicList: []schema.ProtoRelic{{Tid: 61020, UniqueID: 42, MainAffixID: 1}},
	})
	require.NotEmpty(t, e.relics)

	events := e.Dispatch(schema.PlayerGetTokenScRsp, schema.PlayerGetToken{UID: 7})
	assert.Empty(t, events)
	require.NotNil(t, e.uid)
	assert.Equal(t, uint32(7), *e.uid)
	assert.Empty(t, e.relics)
	assert.Empty(t, e.characters)
	assert.False(t, e.initialized)
}

// Invariant 4 — InitialScan fires exactly once per login session.
func TestInitialScanFiresOnce(t *testing.T) {
	db := testDB(t)
	e := New(db)

	e.Dispatch(schema.PlayerGetTokenScRsp, schema.PlayerGetToken{UID: 1})
	e.Dispatch(schema.GetBagScRsp, schema.GetBag{})
	events := e.Dispatch(schema.GetAvatarDataScRsp, schema.GetAvatarData{
		MultiPathAvatarInfoList: []schema.ProtoMultiPathAvatar{{AvatarID: 8004}},
	})

	var scans int
	for _, ev := range events {
		if ev.EventName() == "InitialScan" {
			scans++
		}
	}
	assert.Equal(t, 1, scans)

	// A further update after initialization must not emit another InitialScan.
	events = e.Dispatch(schema.GetBagScRsp, schema.GetBag{
		RelicList: []schema.ProtoRelic{{Tid: 61020, UniqueID: 1, MainAffixID: 1}},
	})
	for _, ev := range events {
		assert.NotEqual(t, "InitialScan", ev.EventName())
	}
}

// Idempotence — replaying the same GetBagScRsp twice leaves state unchanged.
func TestReplayedBagIsIdempotent(t *testing.T) {
	db := testDB(t)
	e := New(db)
	initialize(t, e)

	bag := schema.GetBag{
		RelicList: []schema.ProtoRelic{{Tid: 61020, UniqueID: 42, MainAffixID: 1, Level: 3}},
	}
	e.Dispatch(schema.GetBagScRsp, bag)
	first := e.Export().Document()

	e.Dispatch(schema.GetBagScRsp, bag)
	second := e.Export().Document()

	assert.Equal(t, first, second)
}

// Boundary behavior — a substat whose key ends in "_" is scaled by 100.
func TestSubStatPercentScaling(t *testing.T) {
	db := testDB(t)
	e := New(db)
	initialize(t, e)

	events := e.Dispatch(schema.GetBagScRsp, schema.GetBag{
		RelicList: []schema.ProtoRelic{{
			Tid: 61020, UniqueID: 1, MainAffixID: 1,
			SubAffixList: []schema.RelicAffix{{AffixID: 4, Cnt: 1, Step: 0}},
		}},
	})

	require.Len(t, events, 1)
	upd := events[0].(UpdateRelics)
	require.Len(t, upd.Relics[0].SubStats, 1)
	s := upd.Relics[0].SubStats[0]
	require.True(t, hasPercentSuffix(s.Key), "CriticalChanceBase exports as CRIT Rate_")
	assert.Equal(t, "CRIT Rate_", s.Key)
	assert.InDelta(t, 1.94, s.Value, 1e-9) // (1*0.0194 + 0*0.0097) * 100
}
