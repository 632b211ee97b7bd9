package probe

import (
	"encoding/binary"
	"fmt"
	"io"
)

// DecodeAVI reads the stream headers of a RIFF AVI file. Only the hdrl list
// is inspected; frame data is never read.
func DecodeAVI(r io.ReaderAt, size int64) (Properties, error) {
	props := Properties{Format: FormatAVI}
	var head [12]byte
	if _, err := r.ReadAt(head[:], 0); err != nil {
		return props, fmt.Errorf("avi: read header: %w", err)
	}
	if string(head[:4]) != "RIFF" || string(head[8:12]) != "AVI " {
		return props, fmt.Errorf("avi: not a RIFF AVI file")
	}

	foundHdrl := false
	err := walkChunks(r, 12, size-12, func(id, list string, off, n int64) error {
		if id != "LIST" || list != "hdrl" {
			return nil
		}
		foundHdrl = true
		return walkChunks(r, off, n, func(id, list string, off, n int64) error {
			switch {
			case id == "avih":
				b, err := readBox(r, off, n)
				if err != nil {
					return err
				}
				if len(b) < 40 {
					return fmt.Errorf("avi: short avih chunk")
				}
				props.Width = int(binary.LittleEndian.Uint32(b[32:]))
				props.Height = int(binary.LittleEndian.Uint32(b[36:]))
			case id == "LIST" && list == "strl":
				return decodeStrl(r, off, n, &props)
			}
			return nil
		})
	})
	if err != nil {
		return Properties{}, err
	}
	if !foundHdrl {
		return Properties{}, fmt.Errorf("avi: no hdrl list")
	}
	return props, nil
}

func decodeStrl(r io.ReaderAt, off, n int64, props *Properties) error {
	var kind string
	return walkChunks(r, off, n, func(id, _ string, off, n int64) error {
		if id != "strh" && id != "strf" {
			return nil
		}
		b, err := readBox(r, off, n)
		if err != nil {
			return err
		}
		switch id {
		case "strh":
			if len(b) < 4 {
				return fmt.Errorf("avi: short strh chunk")
			}
			kind = string(b[:4])
			if kind == "vids" {
				props.HasVideo = true
			}
		case "strf":
			switch kind {
			case "auds":
				// WAVEFORMATEX: format tag then channel count
				if len(b) >= 4 {
					props.AudioChannels += max(int(binary.LittleEndian.Uint16(b[2:])), 1)
				} else {
					props.AudioChannels++
				}
			case "vids":
				// BITMAPINFOHEADER: header size, width, height
				if len(b) >= 12 && props.Width == 0 {
					props.Width = int(int32(binary.LittleEndian.Uint32(b[4:])))
					h := int(int32(binary.LittleEndian.Uint32(b[8:])))
					props.Height = max(h, -h)
				}
			}
		}
		return nil
	})
}

// walkChunks calls fn for every RIFF chunk in [off, off+size). For LIST
// chunks list is the list type and the payload excludes it.
func walkChunks(r io.ReaderAt, off, size int64, fn func(id, list string, off, n int64) error) error {
	end := off + size
	var hdr [12]byte
	for off+8 <= end {
		if _, err := r.ReadAt(hdr[:8], off); err != nil {
			return fmt.Errorf("avi: read chunk header at %d: %w", off, err)
		}
		id := string(hdr[:4])
		n := int64(binary.LittleEndian.Uint32(hdr[4:8]))
		if off+8+n > end {
			return fmt.Errorf("avi: chunk %q at %d overruns its parent", id, off)
		}
		payload, plen := off+8, n
		var list string
		if id == "LIST" {
			if n < 4 {
				return fmt.Errorf("avi: short LIST chunk at %d", off)
			}
			if _, err := r.ReadAt(hdr[8:12], off+8); err != nil {
				return fmt.Errorf("avi: read list type at %d: %w", off, err)
			}
			list = string(hdr[8:12])
			if list == "movi" {
				return nil
			}
			payload, plen = off+12, n-4
		}
		if err := fn(id, list, payload, plen); err != nil {
			return err
		}
		off += 8 + n + n&1
	}
	return nil
}
