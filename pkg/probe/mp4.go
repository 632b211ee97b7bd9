package probe

import (
	"encoding/binary"
	"fmt"
	"io"
)

// maxLeafBox bounds the payload read for boxes parsed in memory.
const maxLeafBox = 1 << 20

// DecodeMP4 reads track properties from an ISO base media file (mp4, m4v,
// mov): presentation size of video tracks from tkhd and channel counts of
// audio tracks from the first stsd sample entry.
func DecodeMP4(r io.ReaderAt, size int64) (Properties, error) {
	props := Properties{Format: FormatMP4}
	foundMoov := false
	err := walkBoxes(r, 0, size, func(typ string, off, n int64) error {
		if typ != "moov" {
			return nil
		}
		foundMoov = true
		return walkBoxes(r, off, n, func(typ string, off, n int64) error {
			if typ != "trak" {
				return nil
			}
			t, err := decodeTrak(r, off, n)
			if err != nil {
				return err
			}
			switch t.handler {
			case "vide":
				props.HasVideo = true
				w, h := t.width, t.height
				if w == 0 || h == 0 {
					w, h = t.sampleWidth, t.sampleHeight
				}
				props.Width = max(props.Width, w)
				props.Height = max(props.Height, h)
			case "soun":
				props.AudioChannels += max(t.channels, 1)
			}
			return nil
		})
	})
	if err != nil {
		return Properties{}, err
	}
	if !foundMoov {
		return Properties{}, fmt.Errorf("mp4: no moov box")
	}
	return props, nil
}

type mp4Track struct {
	handler                   string
	width, height             int
	sampleWidth, sampleHeight int
	channels                  int
}

func decodeTrak(r io.ReaderAt, off, size int64) (mp4Track, error) {
	var t mp4Track
	var visit func(typ string, off, n int64) error
	visit = func(typ string, off, n int64) error {
		switch typ {
		case "mdia", "minf", "stbl":
			return walkBoxes(r, off, n, visit)
		case "tkhd":
			b, err := readBox(r, off, n)
			if err != nil {
				return err
			}
			return parseTkhd(b, &t)
		case "hdlr":
			b, err := readBox(r, off, n)
			if err != nil {
				return err
			}
			if len(b) < 12 {
				return fmt.Errorf("mp4: short hdlr box")
			}
			t.handler = string(b[8:12])
		case "stsd":
			b, err := readBox(r, off, n)
			if err != nil {
				return err
			}
			parseStsd(b, &t)
		}
		return nil
	}
	return t, walkBoxes(r, off, size, visit)
}

func parseTkhd(b []byte, t *mp4Track) error {
	if len(b) < 1 {
		return fmt.Errorf("mp4: empty tkhd box")
	}
	// version, flags, times, track ID, reserved and duration precede the
	// fixed tail of reserved, layer, group, volume, reserved and matrix.
	head := 24
	if b[0] == 1 {
		head = 36
	}
	at := head + 8 + 2 + 2 + 2 + 2 + 36
	if len(b) < at+8 {
		return fmt.Errorf("mp4: short tkhd box (%d bytes)", len(b))
	}
	// 16.16 fixed point
	t.width = int(binary.BigEndian.Uint32(b[at:]) >> 16)
	t.height = int(binary.BigEndian.Uint32(b[at+4:]) >> 16)
	return nil
}

func parseStsd(b []byte, t *mp4Track) {
	// version/flags, entry count, then the first sample entry: size, type,
	// 6 reserved bytes and the data reference index.
	const entry = 8
	const fields = entry + 8 + 8
	if len(b) < fields {
		return
	}
	e := b[fields:]
	switch t.handler {
	case "soun":
		// reserved[2] then channelcount
		if len(e) >= 10 {
			t.channels = int(binary.BigEndian.Uint16(e[8:]))
		}
	case "vide":
		// pre_defined, reserved and pre_defined[3] then width and height
		if len(e) >= 20 {
			t.sampleWidth = int(binary.BigEndian.Uint16(e[16:]))
			t.sampleHeight = int(binary.BigEndian.Uint16(e[18:]))
		}
	}
}

// walkBoxes calls fn for every box in [off, off+size) with the offset and
// size of its payload.
func walkBoxes(r io.ReaderAt, off, size int64, fn func(typ string, off, n int64) error) error {
	end := off + size
	var hdr [16]byte
	for off+8 <= end {
		if _, err := r.ReadAt(hdr[:8], off); err != nil {
			return fmt.Errorf("mp4: read box header at %d: %w", off, err)
		}
		boxSize := int64(binary.BigEndian.Uint32(hdr[:4]))
		typ := string(hdr[4:8])
		headerLen := int64(8)
		switch boxSize {
		case 0:
			boxSize = end - off
		case 1:
			if _, err := r.ReadAt(hdr[8:16], off+8); err != nil {
				return fmt.Errorf("mp4: read large size at %d: %w", off, err)
			}
			boxSize = int64(binary.BigEndian.Uint64(hdr[8:16]))
			headerLen = 16
		}
		if boxSize < headerLen || off+boxSize > end {
			return fmt.Errorf("mp4: box %q at %d has invalid size %d", typ, off, boxSize)
		}
		if err := fn(typ, off+headerLen, boxSize-headerLen); err != nil {
			return err
		}
		off += boxSize
	}
	return nil
}

func readBox(r io.ReaderAt, off, n int64) ([]byte, error) {
	if n > maxLeafBox {
		return nil, fmt.Errorf("mp4: box of %d bytes exceeds limit", n)
	}
	b := make([]byte, n)
	if _, err := r.ReadAt(b, off); err != nil && err != io.EOF {
		return nil, fmt.Errorf("mp4: read box at %d: %w", off, err)
	}
	return b, nil
}
