package wire

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/example/game-platform/services/achievement/internal/domain"
)

// UnmarshalWatcherAllDataNotify accepts both packed and unpacked encodings
// of field 1.
func UnmarshalWatcherAllDataNotify(b []byte) (*WatcherAllDataNotify, error) {
	m := &WatcherAllDataNotify{}
	err := eachField(b, func(num protowire.Number, typ protowire.Type, v []byte) (int, error) {
		if num != 1 {
			return skip(num, typ, v)
		}
		switch typ {
		case protowire.VarintType:
			x, n := protowire.ConsumeVarint(v)
			if n < 0 {
				return n, protowire.ParseError(n)
			}
			m.WatcherList = append(m.WatcherList, uint32(x))
			return n, nil
		case protowire.BytesType:
			packed, n := protowire.ConsumeBytes(v)
			if n < 0 {
				return n, protowire.ParseError(n)
			}
			for len(packed) > 0 {
				x, k := protowire.ConsumeVarint(packed)
				if k < 0 {
					return k, protowire.ParseError(k)
				}
				m.WatcherList = append(m.WatcherList, uint32(x))
				packed = packed[k:]
			}
			return n, nil
		}
		return 0, fmt.Errorf("watcher_list: unexpected wire type %d", typ)
	})
	if err != nil {
		return nil, fmt.Errorf("decode WatcherAllDataNotify: %w", err)
	}
	return m, nil
}

func UnmarshalAchievementAllDataNotify(b []byte) (*AchievementAllDataNotify, error) {
	m := &AchievementAllDataNotify{}
	err := eachField(b, func(num protowire.Number, typ protowire.Type, v []byte) (int, error) {
		if num != 1 || typ != protowire.BytesType {
			return skip(num, typ, v)
		}
		raw, n := protowire.ConsumeBytes(v)
		if n < 0 {
			return n, protowire.ParseError(n)
		}
		a, err := unmarshalAchievement(raw)
		if err != nil {
			return 0, err
		}
		m.AchievementList = append(m.AchievementList, a)
		return n, nil
	})
	if err != nil {
		return nil, fmt.Errorf("decode AchievementAllDataNotify: %w", err)
	}
	return m, nil
}

func unmarshalAchievement(b []byte) (Achievement, error) {
	var a Achievement
	err := eachField(b, func(num protowire.Number, typ protowire.Type, v []byte) (int, error) {
		if typ != protowire.VarintType {
			return skip(num, typ, v)
		}
		x, n := protowire.ConsumeVarint(v)
		if n < 0 {
			return n, protowire.ParseError(n)
		}
		switch num {
		case 1:
			a.ID = uint32(x)
		case 2:
			a.Status = domain.Status(x)
		case 3:
			a.CurProgress = uint32(x)
		case 4:
			a.TotalProgress = uint32(x)
		case 5:
			a.FinishTimestamp = uint32(x)
		}
		return n, nil
	})
	return a, err
}

// eachField walks the top-level fields of b. fn consumes the value that
// follows the tag and returns how many bytes it used.
func eachField(b []byte, fn func(num protowire.Number, typ protowire.Type, v []byte) (int, error)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		m, err := fn(num, typ, b)
		if err != nil {
			return err
		}
		b = b[m:]
	}
	return nil
}

func skip(num protowire.Number, typ protowire.Type, v []byte) (int, error) {
	n := protowire.ConsumeFieldValue(num, typ, v)
	if n < 0 {
		return n, protowire.ParseError(n)
	}
	return n, nil
}
