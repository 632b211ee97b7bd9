package probe

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
)

// Format is a detected container format.
type Format string

const (
	FormatUnknown Format = ""
	FormatMP4     Format = "mp4"
	FormatAVI     Format = "avi"
	FormatFLV     Format = "flv"
	FormatMKV     Format = "mkv"
	FormatMP3     Format = "mp3"
	FormatOGG     Format = "ogg"
	FormatWAV     Format = "wav"
	FormatJPEG    Format = "jpeg"
	FormatPNG     Format = "png"
)

// Sniff determines the container format from the magic number at the start
// of r, falling back to the extension of hint.
func Sniff(r io.ReaderAt, hint string) (Format, error) {
	// Read first 16 bytes for magic number detection
	header := make([]byte, 16)
	n, err := r.ReadAt(header, 0)
	if err != nil && err != io.EOF {
		return FormatUnknown, err
	}
	header = header[:n]

	switch {
	case len(header) >= 12 && (string(header[4:8]) == "ftyp" || string(header[4:8]) == "moov"):
		return FormatMP4, nil
	case len(header) >= 12 && string(header[:4]) == "RIFF" && string(header[8:12]) == "AVI ":
		return FormatAVI, nil
	case len(header) >= 12 && string(header[:4]) == "RIFF" && string(header[8:12]) == "WAVE":
		return FormatWAV, nil
	case len(header) >= 3 && string(header[:3]) == "FLV":
		return FormatFLV, nil
	case len(header) >= 4 && bytes.Equal(header[:4], []byte{0x1A, 0x45, 0xDF, 0xA3}):
		return FormatMKV, nil
	case len(header) >= 3 && string(header[:3]) == "ID3",
		len(header) >= 2 && header[0] == 0xFF && header[1]&0xE0 == 0xE0:
		return FormatMP3, nil
	case len(header) >= 4 && string(header[:4]) == "OggS":
		return FormatOGG, nil
	case len(header) >= 3 && header[0] == 0xFF && header[1] == 0xD8 && header[2] == 0xFF:
		return FormatJPEG, nil
	case len(header) >= 8 && string(header[:8]) == "\x89PNG\r\n\x1a\n":
		return FormatPNG, nil
	}

	switch strings.ToLower(filepath.Ext(hint)) {
	case ".mp4", ".m4v", ".mov":
		return FormatMP4, nil
	case ".avi":
		return FormatAVI, nil
	case ".flv":
		return FormatFLV, nil
	case ".mkv", ".webm":
		return FormatMKV, nil
	}
	return FormatUnknown, nil
}
