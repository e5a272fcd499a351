// Package decoder maps a sniffed command id and its raw payload to a
// typed message from internal/schema. It is a pure function: no state,
// no side effects beyond logging a dropped/unrecognized command.
//
// Grounded on the dispatch-by-opcode style of
// internal/gslistener/handler.go in the teacher repo, generalized from
// a (state, opcode) switch to a (command_id) switch since the decoder
// itself carries no session state (spec.md §4.3: "Pure function, no
// state").
package decoder

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/IceDynamix/reliquary-archiver-go/internal/schema"
)

// Message is any of the schema.* structs produced by Decode.
type Message any

// DecodeError reports a failure to decode a specific command, per
// spec.md §7 ("Schema decode failure — per-command warn with id;
// command dropped").
type DecodeError struct {
	CommandID uint32
	Reason    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode command %d: %v", e.CommandID, e.Reason)
}

func (e *DecodeError) Unwrap() error { return e.Reason }

// Decode maps a command id and payload to a typed message. Unknown ids
// return (nil, false, nil) and are logged here at debug level; that log
// line is this function's only side effect.
func Decode(commandID uint32, payload []byte) (Message, bool, error) {
	var (
		msg Message
		err error
	)

	switch commandID {
	case schema.PlayerGetTokenScRsp:
		var m schema.PlayerGetToken
		err = json.Unmarshal(payload, &m)
		msg = m
	case schema.PlayerLoginScRsp:
		var m schema.PlayerLogin
		err = json.Unmarshal(payload, &m)
		msg = m
	case schema.GetBagScRsp:
		var m schema.GetBag
		err = json.Unmarshal(payload, &m)
		msg = m
	case schema.GetAvatarDataScRsp:
		var m schema.GetAvatarData
		err = json.Unmarshal(payload, &m)
		msg = m
	case schema.GetMultiPathAvatarInfoScRsp:
		var m schema.GetMultiPathAvatarInfo
		err = json.Unmarshal(payload, &m)
		msg = m
	case schema.PlayerSyncScNotify:
		var m schema.PlayerSync
		err = json.Unmarshal(payload, &m)
		msg = m
	case schema.SetAvatarEnhancedIdScRsp:
		var m schema.SetAvatarEnhancedID
		err = json.Unmarshal(payload, &m)
		msg = m
	case schema.GetGachaInfoScRsp:
		var m schema.GetGachaInfo
		err = json.Unmarshal(payload, &m)
		msg = m
	case schema.DoGachaScRsp:
		var m schema.DoGacha
		err = json.Unmarshal(payload, &m)
		msg = m
	default:
		slog.Debug("ignored unrecognized command", "command_id", commandID)
		return nil, false, nil
	}

	if err != nil {
		return nil, true, &DecodeError{CommandID: commandID, Reason: err}
	}

	return msg, true, nil
}
