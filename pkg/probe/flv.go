package probe

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"fortio.org/safecast"
)

// flvScanTags bounds how many tags DecodeFLV reads looking for metadata.
const flvScanTags = 32

// DecodeFLV reads the stream flags of an FLV file, the video size from its
// onMetaData script tag and the channel layout of the first audio tag.
func DecodeFLV(r io.ReaderAt, size int64) (Properties, error) {
	props := Properties{Format: FormatFLV}
	var head [9]byte
	if _, err := r.ReadAt(head[:], 0); err != nil {
		return props, fmt.Errorf("flv: read header: %w", err)
	}
	if string(head[:3]) != "FLV" {
		return props, fmt.Errorf("flv: bad signature")
	}
	hasAudio := head[4]&0x04 != 0
	props.HasVideo = head[4]&0x01 != 0

	// PreviousTagSize0 follows the header.
	off := int64(binary.BigEndian.Uint32(head[5:9])) + 4
	var tag [11]byte
	for i := 0; i < flvScanTags && off+11 <= size; i++ {
		if _, err := r.ReadAt(tag[:], off); err != nil {
			return props, fmt.Errorf("flv: read tag at %d: %w", off, err)
		}
		typ := tag[0] & 0x1F
		n := int64(tag[1])<<16 | int64(tag[2])<<8 | int64(tag[3])
		data := off + 11
		if data+n > size {
			return props, fmt.Errorf("flv: tag at %d overruns the file", off)
		}
		switch typ {
		case 8: // audio
			if hasAudio && props.AudioChannels == 0 && n > 0 {
				var b [1]byte
				if _, err := r.ReadAt(b[:], data); err != nil {
					return props, fmt.Errorf("flv: read audio tag: %w", err)
				}
				props.AudioChannels = 1 + int(b[0]&0x01)
			}
		case 18: // script data
			b, err := readBox(r, data, n)
			if err != nil {
				return props, err
			}
			meta := parseOnMetaData(b)
			if w, err := safecast.Truncate[int](meta["width"]); err == nil {
				props.Width = w
			}
			if h, err := safecast.Truncate[int](meta["height"]); err == nil {
				props.Height = h
			}
		}
		off = data + n + 4
	}
	if hasAudio && props.AudioChannels == 0 {
		props.AudioChannels = 1
	}
	return props, nil
}

// parseOnMetaData extracts the numeric properties of an AMF0 onMetaData
// script body. Parsing stops at the first value type it does not handle.
func parseOnMetaData(b []byte) map[string]float64 {
	out := map[string]float64{}
	name, rest, ok := amfString(b)
	if !ok || name != "onMetaData" || len(rest) < 1 {
		return out
	}
	switch rest[0] {
	case 0x08: // ECMA array: approximate count, then properties
		if len(rest) < 5 {
			return out
		}
		rest = rest[5:]
	case 0x03: // object
		rest = rest[1:]
	default:
		return out
	}
	for len(rest) >= 3 {
		klen := int(binary.BigEndian.Uint16(rest))
		if klen == 0 || len(rest) < 2+klen+1 {
			return out
		}
		key := string(rest[2 : 2+klen])
		rest = rest[2+klen:]
		switch rest[0] {
		case 0x00: // number
			if len(rest) < 9 {
				return out
			}
			out[key] = math.Float64frombits(binary.BigEndian.Uint64(rest[1:9]))
			rest = rest[9:]
		case 0x01: // boolean
			if len(rest) < 2 {
				return out
			}
			rest = rest[2:]
		case 0x02: // string
			_, r, ok := amfString(rest)
			if !ok {
				return out
			}
			rest = r
		default:
			return out
		}
	}
	return out
}

// amfString decodes a type-marked AMF0 short string.
func amfString(b []byte) (string, []byte, bool) {
	if len(b) < 3 || b[0] != 0x02 {
		return "", b, false
	}
	n := int(binary.BigEndian.Uint16(b[1:]))
	if len(b) < 3+n {
		return "", b, false
	}
	return string(b[3 : 3+n]), b[3+n:], true
}
