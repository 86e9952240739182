package wire

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Packet is an encoded message as carried inside a batch.
type Packet struct {
	Opcode  uint16
	Payload []byte
}

// EncodeBatch frames msgs, in order, into one PacketBatch payload
// (field 1: repeated Packet{1: opcode, 2: payload}). The session gateway
// writes the packets to the client connection in the same order.
func EncodeBatch(msgs ...Message) []byte {
	b := []byte{}
	for _, m := range msgs {
		var p []byte
		p = protowire.AppendTag(p, 1, protowire.VarintType)
		p = protowire.AppendVarint(p, uint64(m.Opcode()))
		p = protowire.AppendTag(p, 2, protowire.BytesType)
		p = protowire.AppendBytes(p, m.Marshal())

		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, p)
	}
	return b
}

// DecodeBatch is the inverse of EncodeBatch.
func DecodeBatch(b []byte) ([]Packet, error) {
	var out []Packet
	err := eachField(b, func(num protowire.Number, typ protowire.Type, v []byte) (int, error) {
		if num != 1 || typ != protowire.BytesType {
			return skip(num, typ, v)
		}
		raw, n := protowire.ConsumeBytes(v)
		if n < 0 {
			return n, protowire.ParseError(n)
		}
		p, err := decodePacket(raw)
		if err != nil {
			return 0, err
		}
		out = append(out, p)
		return n, nil
	})
	if err != nil {
		return nil, fmt.Errorf("decode packet batch: %w", err)
	}
	return out, nil
}

func decodePacket(b []byte) (Packet, error) {
	p := Packet{Payload: []byte{}}
	err := eachField(b, func(num protowire.Number, typ protowire.Type, v []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.VarintType:
			x, n := protowire.ConsumeVarint(v)
			if n < 0 {
				return n, protowire.ParseError(n)
			}
			if x > 0xFFFF {
				return 0, fmt.Errorf("opcode %d out of range", x)
			}
			p.Opcode = uint16(x)
			return n, nil
		case num == 2 && typ == protowire.BytesType:
			raw, n := protowire.ConsumeBytes(v)
			if n < 0 {
				return n, protowire.ParseError(n)
			}
			p.Payload = append([]byte{}, raw...)
			return n, nil
		}
		return skip(num, typ, v)
	})
	return p, err
}
