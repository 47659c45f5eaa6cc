// Package romloader reads cartridge images from plain files and from
// compressed archives (ZIP, 7z, gzip, tar.gz, RAR).
package romloader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Magic bytes for format detection
var (
	magicZIP    = []byte{0x50, 0x4B, 0x03, 0x04}
	magicZIPEnd = []byte{0x50, 0x4B, 0x05, 0x06} // empty zip
	magic7z     = []byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}
	magicGzip   = []byte{0x1F, 0x8B}
	magicRAR    = []byte{0x52, 0x61, 0x72, 0x21} // "Rar!"
)

// DefaultMaxSize matches the largest cartridge.
const DefaultMaxSize = 8 * 1024 * 1024

// DefaultExtensions are the image extensions looked for inside archives.
var DefaultExtensions = []string{".gb", ".gbc", ".bin"}

var (
	// ErrNoROMFile is returned when an archive holds no file with a known extension.
	ErrNoROMFile = errors.New("no ROM file found in archive")
	// ErrUnsupportedFormat is returned for unrecognized file formats.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrFileTooLarge is returned when the image exceeds the size limit.
	ErrFileTooLarge = errors.New("file exceeds maximum size limit")
)

// Format is a detected container format.
type Format int

const (
	FormatUnknown Format = iota
	FormatRaw
	FormatZIP
	Format7z
	FormatGzip
	FormatTarGzip
	FormatRAR
)

func (f Format) String() string {
	switch f {
	case FormatRaw:
		return "raw"
	case FormatZIP:
		return "zip"
	case Format7z:
		return "7z"
	case FormatGzip:
		return "gzip"
	case FormatTarGzip:
		return "tar.gz"
	case FormatRAR:
		return "rar"
	}
	return "unknown"
}

// ROM is a loaded image.
type ROM struct {
	Data   []byte
	Name   string // Base name of the image file, for display
	Format Format // Container it was read from
}

// Loader reads images. The zero value uses DefaultExtensions and
// DefaultMaxSize.
type Loader struct {
	Extensions []string
	MaxSize    int64
}

// Load reads path with the default loader.
func Load(path string) (ROM, error) {
	var l Loader
	return l.Load(path)
}

// Load reads an image from path. Archives are detected by magic bytes and
// the first member with a known extension is returned. Plain files need a
// known extension.
func (l *Loader) Load(path string) (ROM, error) {
	f, err := os.Open(path)
	if err != nil {
		return ROM{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	header := make([]byte, 16)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return ROM{}, fmt.Errorf("failed to read file header: %w", err)
	}
	format := l.Detect(header[:n], path)

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return ROM{}, fmt.Errorf("failed to seek file: %w", err)
	}

	var rom ROM
	switch format {
	case FormatRaw:
		rom.Data, err = l.read(f)
		rom.Name = filepath.Base(path)
	case FormatZIP:
		rom, err = l.fromZIP(path)
	case Format7z:
		rom, err = l.from7z(path)
	case FormatGzip:
		rom, err = l.fromGzip(f, path)
	case FormatTarGzip:
		rom, err = l.fromTarGzip(f)
	case FormatRAR:
		rom, err = l.fromRAR(f)
	default:
		return ROM{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return ROM{}, fmt.Errorf("%s: %w", format, err)
	}
	rom.Format = format
	return rom, nil
}

// Detect determines the container format from the leading bytes, falling
// back to the file extension.
func (l *Loader) Detect(header []byte, path string) Format {
	lower := strings.ToLower(path)
	tarball := strings.HasSuffix(lower, ".tar.gz") || strings.HasSuffix(lower, ".tgz")

	switch {
	case bytes.HasPrefix(header, magicZIP), bytes.HasPrefix(header, magicZIPEnd):
		return FormatZIP
	case bytes.HasPrefix(header, magicRAR):
		return FormatRAR
	case bytes.HasPrefix(header, magic7z):
		return Format7z
	case bytes.HasPrefix(header, magicGzip):
		if tarball {
			return FormatTarGzip
		}
		return FormatGzip
	}

	if tarball {
		return FormatTarGzip
	}
	switch filepath.Ext(lower) {
	case ".zip":
		return FormatZIP
	case ".7z":
		return Format7z
	case ".gz":
		return FormatGzip
	case ".rar":
		return FormatRAR
	}
	if l.IsROMFile(path) {
		return FormatRaw
	}
	return FormatUnknown
}

// IsROMFile reports whether name has one of the loader's extensions
// (case-insensitive).
func (l *Loader) IsROMFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return slices.ContainsFunc(l.extensions(), func(e string) bool {
		return strings.ToLower(e) == ext
	})
}

func (l *Loader) extensions() []string {
	if len(l.Extensions) == 0 {
		return DefaultExtensions
	}
	return l.Extensions
}

func (l *Loader) maxSize() int64 {
	if l.MaxSize <= 0 {
		return DefaultMaxSize
	}
	return l.MaxSize
}

// read reads r up to the size limit.
func (l *Loader) read(r io.Reader) ([]byte, error) {
	limit := l.maxSize()
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, ErrFileTooLarge
	}
	return data, nil
}
