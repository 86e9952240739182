package wire

import (
	"bytes"
	"math"
	"testing"
	"time"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/example/game-platform/services/achievement/internal/domain"
)

func TestWatcherAllDataNotify_PackedEncoding(t *testing.T) {
	m := &WatcherAllDataNotify{WatcherList: []uint32{1, 300}}
	// tag(1, bytes)=0x0a, len=3, varint 1, varint 300 (0xac 0x02)
	want := []byte{0x0a, 0x03, 0x01, 0xac, 0x02}
	if got := m.Marshal(); !bytes.Equal(got, want) {
		t.Fatalf("expected % x, got % x", want, got)
	}
}

func TestWatcherAllDataNotify_Empty(t *testing.T) {
	m := &WatcherAllDataNotify{}
	if got := m.Marshal(); len(got) != 0 {
		t.Fatalf("expected empty payload, got % x", got)
	}
	back, err := UnmarshalWatcherAllDataNotify(nil)
	if err != nil || len(back.WatcherList) != 0 {
		t.Fatalf("expected empty list, got %+v, %v", back, err)
	}
}

func TestUnmarshalWatcherAllDataNotify_Unpacked(t *testing.T) {
	var b []byte
	for _, id := range []uint32{5, 6} {
		b = protowire.AppendTag(b, 1, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(id))
	}
	m, err := UnmarshalWatcherAllDataNotify(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(m.WatcherList) != 2 || m.WatcherList[0] != 5 || m.WatcherList[1] != 6 {
		t.Fatalf("unexpected list %v", m.WatcherList)
	}
}

func TestAchievementAllDataNotify_SkipsZeroFields(t *testing.T) {
	m := &AchievementAllDataNotify{AchievementList: []Achievement{
		{ID: 1, Status: domain.StatusUnfinished, CurProgress: 2, TotalProgress: 5},
	}}
	// entry: 08 01 | 10 01 | 18 02 | 20 05, no field 5
	want := []byte{0x0a, 0x08, 0x08, 0x01, 0x10, 0x01, 0x18, 0x02, 0x20, 0x05}
	if got := m.Marshal(); !bytes.Equal(got, want) {
		t.Fatalf("expected % x, got % x", want, got)
	}
}

func TestAchievementAllDataNotify_Decode(t *testing.T) {
	ts := time.Unix(1700000000, 0).UTC()
	entries := []domain.SnapshotEntry{
		{ID: 2, Status: domain.StatusFinished, CurrentProgress: 5, TotalProgress: 5, FinishedAt: &ts},
		{ID: 3, Status: domain.StatusUnfinished, CurrentProgress: 0, TotalProgress: 10},
	}
	m := &AchievementAllDataNotify{}
	for _, e := range entries {
		m.AchievementList = append(m.AchievementList, AchievementFromEntry(e))
	}

	back, err := UnmarshalAchievementAllDataNotify(m.Marshal())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(back.AchievementList) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(back.AchievementList))
	}
	got := back.AchievementList[0]
	if got.FinishedAt() == nil || !got.FinishedAt().Equal(ts) {
		t.Fatalf("expected finish timestamp %v, got %v", ts, got.FinishedAt())
	}
	if back.AchievementList[1].FinishedAt() != nil {
		t.Fatal("unfinished entry must not carry a timestamp")
	}
	if back.AchievementList[1].CurProgress != 0 || back.AchievementList[1].TotalProgress != 10 {
		t.Fatalf("unexpected entry %+v", back.AchievementList[1])
	}
}

func TestUnmarshal_Truncated(t *testing.T) {
	if _, err := UnmarshalAchievementAllDataNotify([]byte{0x0a, 0x05, 0x08}); err == nil {
		t.Fatal("expected error for truncated payload")
	}
}

func TestBatch_PreservesOrder(t *testing.T) {
	watchers := &WatcherAllDataNotify{WatcherList: []uint32{1}}
	snapshot := &AchievementAllDataNotify{}

	packets, err := DecodeBatch(EncodeBatch(watchers, snapshot))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(packets) != 2 {
		t.Fatalf("expected 2 packets, got %d", len(packets))
	}
	if packets[0].Opcode != OpWatcherAllDataNotify || packets[1].Opcode != OpAchievementAllDataNotify {
		t.Fatalf("unexpected opcode order %d, %d", packets[0].Opcode, packets[1].Opcode)
	}
	if !bytes.Equal(packets[0].Payload, watchers.Marshal()) {
		t.Fatal("watcher payload mismatch")
	}
	if packets[1].Payload == nil || len(packets[1].Payload) != 0 {
		t.Fatalf("expected empty snapshot payload, got %v", packets[1].Payload)
	}
}

func TestAchievementFromEntry_FinishTimestampRange(t *testing.T) {
	cases := map[string]struct {
		at   time.Time
		want uint32
	}{
		"epoch":      {time.Unix(0, 0).UTC(), 1},
		"pre-epoch":  {time.Date(1960, 1, 1, 0, 0, 0, 0, time.UTC), 1},
		"zero time":  {time.Time{}, 1},
		"past range": {time.Date(2200, 1, 1, 0, 0, 0, 0, time.UTC), math.MaxUint32},
		"in range":   {time.Unix(1700000000, 0).UTC(), 1700000000},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			at := tc.at
			a := AchievementFromEntry(domain.SnapshotEntry{ID: 1, Status: domain.StatusFinished, FinishedAt: &at})
			if a.FinishTimestamp != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, a.FinishTimestamp)
			}
			back, err := UnmarshalAchievementAllDataNotify((&AchievementAllDataNotify{AchievementList: []Achievement{a}}).Marshal())
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if back.AchievementList[0].FinishedAt() == nil {
				t.Fatal("finished entry lost its timestamp on the wire")
			}
		})
	}
}
