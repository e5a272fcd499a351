package reference

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbedded(t *testing.T) {
	db, err := Load("")
	require.NoError(t, err)
	require.NotNil(t, db)

	assert.Len(t, db.AvatarConfig, 6)
	assert.Len(t, db.RelicConfig, 2)
	assert.Len(t, db.Keys, 1)
}

func TestLookupAvatarName(t *testing.T) {
	db, err := Load("")
	require.NoError(t, err)

	tests := []struct {
		name     string
		avatarID uint32
		want     string
		wantOK   bool
	}{
		{"known non-multipath avatar", 1001, "March 7th", true},
		{"multipath base avatar above threshold short-circuits", 8001, "Trailblazer", true},
		{"multipath path variant above threshold", 8002, "Trailblazer", true},
		{"unknown id below threshold", 7999, "", false},
		{"unknown id above threshold still short-circuits", 20000, "Trailblazer", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := db.LookupAvatarName(tt.avatarID)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLookupAvatarPathConsultsConfigAboveThreshold(t *testing.T) {
	db, err := Load("")
	require.NoError(t, err)

	path, ok := db.LookupAvatarPath(8003)
	require.True(t, ok)
	assert.Equal(t, "Knight", path)

	_, ok = db.LookupAvatarPath(20000)
	assert.False(t, ok, "path lookup for an unconfigured id above the threshold should miss")
}

func TestMultipathBaseAvatarID(t *testing.T) {
	db, err := Load("")
	require.NoError(t, err)

	base, ok := db.MultipathBaseAvatarID(8002)
	require.True(t, ok)
	assert.Equal(t, uint32(8001), base)

	_, ok = db.MultipathBaseAvatarID(8001)
	assert.False(t, ok, "a base avatar id is not itself a key in multipath_avatar_config")
}

func TestIsMultipathBase(t *testing.T) {
	db, err := Load("")
	require.NoError(t, err)

	assert.True(t, db.IsMultipathBase(8001), "8001 is the target of the 8002 multipath_avatar_config entry")
	assert.False(t, db.IsMultipathBase(8002), "8002 is a variant id, not a base id")
	assert.False(t, db.IsMultipathBase(1001), "1001 never appears as a multipath base")
}

func TestRelicRarity(t *testing.T) {
	db, err := Load("")
	require.NoError(t, err)

	cfg, ok := db.RelicConfigByTid(61020)
	require.True(t, ok)
	assert.Equal(t, uint32(5), RelicRarity(cfg))

	cfg, ok = db.RelicConfigByTid(61021)
	require.True(t, ok)
	assert.Equal(t, uint32(4), RelicRarity(cfg))
}

func TestAffixLookups(t *testing.T) {
	db, err := Load("")
	require.NoError(t, err)

	property, ok := db.MainAffixProperty(5, 1)
	require.True(t, ok)
	assert.Equal(t, "HPAddedRatio", property)

	sub, ok := db.SubAffixProperty(5, 4)
	require.True(t, ok)
	assert.Equal(t, "CriticalChanceBase", sub.Property)
	assert.InDelta(t, 0.0194, sub.BaseValue, 0.0001)

	_, ok = db.MainAffixProperty(5, 99)
	assert.False(t, ok)
}

func TestSessionKey(t *testing.T) {
	db, err := Load("")
	require.NoError(t, err)

	key, ok := db.SessionKey(11)
	require.True(t, ok)
	assert.Len(t, key, 16)

	_, ok = db.SessionKey(12)
	assert.False(t, ok)
}

func TestSkillTreeAnchor(t *testing.T) {
	db, err := Load("")
	require.NoError(t, err)

	anchor, ok := db.SkillTreeAnchor(1201)
	require.True(t, ok)
	assert.Equal(t, "basic", anchor)

	anchor, ok = db.SkillTreeAnchor(1203)
	require.True(t, ok)
	assert.Equal(t, "ult", anchor)

	_, ok = db.SkillTreeAnchor(9999)
	assert.False(t, ok)
}

func TestLoadFromDirMissingFile(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.Error(t, err)
}
