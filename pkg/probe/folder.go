package probe

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Decoder reads stream properties from a container of a known format.
type Decoder func(r io.ReaderAt, size int64) (Properties, error)

// DefaultDecoders are the container decoders a Folder uses when none are
// configured.
var DefaultDecoders = map[Format]Decoder{
	FormatMP4: DecodeMP4,
	FormatAVI: DecodeAVI,
	FormatFLV: DecodeFLV,
}

// Folder probes files inside a beatmapset folder on disk. All access goes
// through an os.Root, so symlinks cannot lead outside the folder either.
type Folder struct {
	Root     string
	Decoders map[Format]Decoder
}

// NewFolder returns a prober rooted at dir using DefaultDecoders.
func NewFolder(dir string) *Folder {
	return &Folder{Root: dir, Decoders: DefaultDecoders}
}

// Probe inspects one file. A panic inside a decoder is reported as a
// Failed result.
func (f *Folder) Probe(path string) (res Result) {
	if Escapes(path) {
		return Result{Status: LeavesFolder}
	}
	root, err := os.OpenRoot(f.Root)
	if err != nil {
		return Failure("open set folder: %w", err)
	}
	defer root.Close()

	file, err := root.Open(localPath(path))
	if errors.Is(err, fs.ErrNotExist) {
		return Result{Status: Missing}
	}
	if err != nil && f.linksOut(path) {
		return Result{Status: LeavesFolder}
	}
	if err != nil {
		return Failure("open %s: %w", path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return Failure("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return Failure("%s is a directory", path)
	}

	defer func() {
		if r := recover(); r != nil {
			res = Failure("decode %s: %v", path, r)
		}
	}()

	format, err := Sniff(file, path)
	if err != nil {
		return Failure("sniff %s: %w", path, err)
	}
	decoders := f.Decoders
	if decoders == nil {
		decoders = DefaultDecoders
	}
	decode, ok := decoders[format]
	if !ok {
		if format == FormatUnknown {
			return Failure("%s: unrecognized container", path)
		}
		return Failure("%s: no decoder for %s", path, format)
	}
	props, err := decode(file, info.Size())
	if err != nil {
		return Failure("%w", err)
	}
	props.Format = format
	return Result{Status: OK, Properties: props}
}

// Size returns the size of a file in the folder.
func (f *Folder) Size(path string) (int64, error) {
	if Escapes(path) {
		return 0, fmt.Errorf("%s leaves the set folder", path)
	}
	root, err := os.OpenRoot(f.Root)
	if err != nil {
		return 0, fmt.Errorf("open set folder: %w", err)
	}
	defer root.Close()
	info, err := root.Stat(localPath(path))
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// linksOut reports whether path resolves, through symlinks, to a location
// outside the folder. os.Root refuses to follow such links.
func (f *Folder) linksOut(path string) bool {
	root, err := filepath.EvalSymlinks(f.Root)
	if err != nil {
		return false
	}
	target, err := filepath.EvalSymlinks(filepath.Join(f.Root, localPath(path)))
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(root, target)
	return err != nil || !filepath.IsLocal(rel)
}
