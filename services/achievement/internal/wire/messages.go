// Package wire encodes the achievement packets sent to game clients.
//
// Payloads use the protobuf wire format so clients decode them with their
// generated message types. Field numbers are part of the client contract.
package wire

import (
	"math"
	"time"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/example/game-platform/services/achievement/internal/domain"
)

// Client packet opcodes.
const (
	OpWatcherAllDataNotify     uint16 = 2272
	OpAchievementAllDataNotify uint16 = 2676
)

// Message is an outbound client packet.
type Message interface {
	Opcode() uint16
	Marshal() []byte
}

// WatcherAllDataNotify lists the achievements the client should stop
// watching.
type WatcherAllDataNotify struct {
	WatcherList []uint32
}

func (*WatcherAllDataNotify) Opcode() uint16 { return OpWatcherAllDataNotify }

// Marshal writes field 1 as a packed repeated uint32. An empty list encodes
// to an empty payload.
func (m *WatcherAllDataNotify) Marshal() []byte {
	if len(m.WatcherList) == 0 {
		return []byte{}
	}
	var packed []byte
	for _, id := range m.WatcherList {
		packed = protowire.AppendVarint(packed, uint64(id))
	}
	b := protowire.AppendTag(nil, 1, protowire.BytesType)
	return protowire.AppendBytes(b, packed)
}

// Achievement is one entry of AchievementAllDataNotify.
type Achievement struct {
	ID              uint32
	Status          domain.Status
	CurProgress     uint32
	TotalProgress   uint32
	FinishTimestamp uint32 // unix seconds, 0 when unfinished
}

// finishTimestamp converts t to the uint32 wire field. 0 means "absent" on
// the wire, so instants at or before the epoch encode as 1 and instants past
// 2106-02-07 saturate at math.MaxUint32.
func finishTimestamp(t time.Time) uint32 {
	sec := t.Unix()
	switch {
	case sec < 1:
		return 1
	case sec > math.MaxUint32:
		return math.MaxUint32
	}
	return uint32(sec)
}

// AchievementFromEntry converts a snapshot entry.
func AchievementFromEntry(e domain.SnapshotEntry) Achievement {
	a := Achievement{
		ID:            e.ID,
		Status:        e.Status,
		CurProgress:   e.CurrentProgress,
		TotalProgress: e.TotalProgress,
	}
	if e.FinishedAt != nil {
		a.FinishTimestamp = finishTimestamp(*e.FinishedAt)
	}
	return a
}

// FinishedAt is the inverse of the timestamp conversion in AchievementFromEntry.
func (a Achievement) FinishedAt() *time.Time {
	if a.FinishTimestamp == 0 {
		return nil
	}
	t := time.Unix(int64(a.FinishTimestamp), 0).UTC()
	return &t
}

func (a Achievement) appendTo(b []byte) []byte {
	b = appendUint(b, 1, uint64(a.ID))
	b = appendUint(b, 2, uint64(a.Status))
	b = appendUint(b, 3, uint64(a.CurProgress))
	b = appendUint(b, 4, uint64(a.TotalProgress))
	b = appendUint(b, 5, uint64(a.FinishTimestamp))
	return b
}

// AchievementAllDataNotify is the full achievement snapshot.
type AchievementAllDataNotify struct {
	AchievementList []Achievement
}

func (*AchievementAllDataNotify) Opcode() uint16 { return OpAchievementAllDataNotify }

func (m *AchievementAllDataNotify) Marshal() []byte {
	b := []byte{}
	for _, a := range m.AchievementList {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, a.appendTo(nil))
	}
	return b
}

// appendUint skips zero values like proto3 does for scalar fields.
func appendUint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}
