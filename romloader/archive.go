package romloader

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/nwaples/rardecode/v2"
)

// member is an archive entry that can be opened on demand.
type member interface {
	FileInfo() fs.FileInfo
	Open() (io.ReadCloser, error)
}

// firstMember reads the first regular member with a known extension.
func firstMember[M member](l *Loader, members []M, name func(M) string) (ROM, error) {
	for _, m := range members {
		if m.FileInfo().IsDir() || !l.IsROMFile(name(m)) {
			continue
		}
		rc, err := m.Open()
		if err != nil {
			return ROM{}, fmt.Errorf("failed to open %s in archive: %w", name(m), err)
		}
		data, err := l.read(rc)
		rc.Close()
		if err != nil {
			return ROM{}, fmt.Errorf("failed to read %s: %w", name(m), err)
		}
		return ROM{Data: data, Name: filepath.Base(name(m))}, nil
	}
	return ROM{}, ErrNoROMFile
}

func (l *Loader) fromZIP(path string) (ROM, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return ROM{}, err
	}
	defer r.Close()
	return firstMember(l, r.File, func(f *zip.File) string { return f.Name })
}

func (l *Loader) from7z(path string) (ROM, error) {
	r, err := sevenzip.OpenReader(path)
	if err != nil {
		return ROM{}, err
	}
	defer r.Close()
	return firstMember(l, r.File, func(f *sevenzip.File) string { return f.Name })
}

// fromGzip treats the decompressed stream as the image, named after the
// archive without its .gz suffix.
func (l *Loader) fromGzip(r io.Reader, path string) (ROM, error) {
	gr, err := gzip.NewReader(r)
	if err != nil {
		return ROM{}, err
	}
	defer gr.Close()

	data, err := l.read(gr)
	if err != nil {
		return ROM{}, fmt.Errorf("failed to decompress: %w", err)
	}
	name := filepath.Base(path)
	if strings.EqualFold(filepath.Ext(name), ".gz") {
		name = name[:len(name)-3]
	}
	return ROM{Data: data, Name: name}, nil
}

func (l *Loader) fromTarGzip(r io.Reader) (ROM, error) {
	gr, err := gzip.NewReader(r)
	if err != nil {
		return ROM{}, err
	}
	defer gr.Close()

	tr := tar.NewReader(gr)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return ROM{}, ErrNoROMFile
		}
		if err != nil {
			return ROM{}, fmt.Errorf("failed to read tar entry: %w", err)
		}
		if header.Typeflag != tar.TypeReg || !l.IsROMFile(header.Name) {
			continue
		}
		data, err := l.read(tr)
		if err != nil {
			return ROM{}, fmt.Errorf("failed to read %s: %w", header.Name, err)
		}
		return ROM{Data: data, Name: filepath.Base(header.Name)}, nil
	}
}

func (l *Loader) fromRAR(r io.Reader) (ROM, error) {
	rr, err := rardecode.NewReader(r)
	if err != nil {
		return ROM{}, err
	}

	for {
		header, err := rr.Next()
		if err == io.EOF {
			return ROM{}, ErrNoROMFile
		}
		if err != nil {
			return ROM{}, fmt.Errorf("failed to read rar entry: %w", err)
		}
		if header.IsDir || !l.IsROMFile(header.Name) {
			continue
		}
		data, err := l.read(rr)
		if err != nil {
			return ROM{}, fmt.Errorf("failed to read %s: %w", header.Name, err)
		}
		return ROM{Data: data, Name: filepath.Base(header.Name)}, nil
	}
}
