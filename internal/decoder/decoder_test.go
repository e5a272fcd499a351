package decoder

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IceDynamix/reliquary-archiver-go/internal/schema"
)

func TestDecodeRecognizedCommands(t *testing.T) {
	tests := []struct {
		name      string
		commandID uint32
		payload   string
		want      Message
	}{
		{
			"PlayerGetTokenScRsp",
			schema.PlayerGetTokenScRsp,
			`{"uid":12345}`,
			schema.PlayerGetToken{UID: 12345},
		},
		{
			"PlayerLoginScRsp",
			schema.PlayerLoginScRsp,
			`{"basic_info":{"stellar_jade_count":100,"oneric_shard_count":20}}`,
			schema.PlayerLogin{BasicInfo: schema.BasicInfo{StellarJadeCount: 100, OnericShardCount: 20}},
		},
		{
			"GetBagScRsp",
			schema.GetBagScRsp,
			`{"relic_list":[{"tid":1,"unique_id":2}],"equipment_list":[{"tid":3}],"material_list":[{"tid":4,"num":5}]}`,
			schema.GetBag{
				RelicList:     []schema.ProtoRelic{{Tid: 1, UniqueID: 2}},
				EquipmentList: []schema.ProtoEquipment{{Tid: 3}},
				MaterialList:  []schema.ProtoMaterial{{Tid: 4, Num: 5}},
			},
		},
		{
			"GetAvatarDataScRsp",
			schema.GetAvatarDataScRsp,
			`{"avatar_list":[{"base_avatar_id":1001,"level":10}]}`,
			schema.GetAvatarData{AvatarList: []schema.ProtoCharacter{{BaseAvatarID: 1001, Level: 10}}},
		},
		{
			"GetMultiPathAvatarInfoScRsp",
			schema.GetMultiPathAvatarInfoScRsp,
			`{"multi_path_avatar_info_list":[{"avatar_id":8001,"rank":2}]}`,
			schema.GetMultiPathAvatarInfo{MultiPathAvatarInfoList: []schema.ProtoMultiPathAvatar{{AvatarID: 8001, Rank: 2}}},
		},
		{
			"PlayerSyncScNotify",
			schema.PlayerSyncScNotify,
			`{"del_relic_list":[7,8]}`,
			schema.PlayerSync{DelRelicList: []uint32{7, 8}},
		},
		{
			"SetAvatarEnhancedIdScRsp",
			schema.SetAvatarEnhancedIdScRsp,
			`{"growth_avatar_id":1001,"skilltree_version":3}`,
			schema.SetAvatarEnhancedID{GrowthAvatarID: 1001, SkilltreeVersion: 3},
		},
		{
			"GetGachaInfoScRsp",
			schema.GetGachaInfoScRsp,
			`{"gacha_info_list":[{"gacha_id":1}]}`,
			schema.GetGachaInfo{GachaInfoList: []schema.GachaInfoEntry{{GachaID: 1}}},
		},
		{
			"DoGachaScRsp",
			schema.DoGachaScRsp,
			`{"gacha_id":1,"gacha_item_list":[{"gacha_item":{"item_id":9}}]}`,
			schema.DoGacha{GachaID: 1, GachaItemList: []schema.GachaItemEntry{{GachaItem: schema.GachaItem{ItemID: 9}}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, ok, err := Decode(tt.commandID, []byte(tt.payload))
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, tt.want, msg)
		})
	}
}

func TestDecodeUnrecognizedCommandID(t *testing.T) {
	msg, ok, err := Decode(999, []byte(`{}`))
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, msg)
}

func TestDecodeMalformedPayloadReturnsDecodeError(t *testing.T) {
	msg, ok, err := Decode(schema.PlayerGetTokenScRsp, []byte(`not json`))
	require.Error(t, err)
	assert.True(t, ok, "a recognized command id that fails to decode is still reported as recognized")
	assert.Nil(t, msg)

	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, schema.PlayerGetTokenScRsp, decodeErr.CommandID)

	var syntaxErr *json.SyntaxError
	require.ErrorAs(t, decodeErr.Unwrap(), &syntaxErr, "Unwrap should surface the underlying json.Unmarshal error")
}
