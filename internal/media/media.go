// Package media classifies vault entries by content.
package media

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/djherbis/times"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	"github.com/rwcarlsen/goexif/exif"
)

// Kind is the coarse content class of an entry
type Kind string

const (
	KindImage    Kind = "image"
	KindVideo    Kind = "video"
	KindAudio    Kind = "audio"
	KindDocument Kind = "document"
	KindOther    Kind = "other"
	KindFolder   Kind = "folder"
)

// HeaderSize is the number of leading bytes filetype needs to match.
const HeaderSize = 261

const defaultMIME = "application/octet-stream"

// Info is what can be learned about a file without trusting its name.
type Info struct {
	Kind      Kind
	MIME      string
	CreatedAt *time.Time
	TakenAt   *time.Time
}

// Sniff classifies a file header. name is only consulted when the
// header does not match any known signature.
func Sniff(header []byte, name string) (Kind, string) {
	t, err := filetype.Match(header)
	if err != nil || t == filetype.Unknown {
		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
		t = filetype.GetType(ext)
	}
	if t == filetype.Unknown || t.MIME.Value == "" {
		return KindOther, defaultMIME
	}
	return classify(t), t.MIME.Value
}

func classify(t types.Type) Kind {
	switch t.MIME.Type {
	case "image":
		return KindImage
	case "video":
		return KindVideo
	case "audio":
		return KindAudio
	case "text":
		return KindDocument
	}

	sub := t.MIME.Subtype
	switch {
	case sub == "pdf", sub == "rtf", sub == "epub+zip",
		strings.Contains(sub, "msword"),
		strings.Contains(sub, "officedocument"),
		strings.Contains(sub, "opendocument"),
		strings.Contains(sub, "ms-excel"),
		strings.Contains(sub, "ms-powerpoint"):
		return KindDocument
	}
	return KindOther
}

// SniffFile classifies the file at path from its header alone.
func SniffFile(path string) (Kind, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return KindOther, defaultMIME, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	header, err := readHeader(f)
	if err != nil {
		return KindOther, defaultMIME, fmt.Errorf("failed to read %s: %w", path, err)
	}
	kind, mime := Sniff(header, path)
	return kind, mime, nil
}

func readHeader(r io.Reader) ([]byte, error) {
	header := make([]byte, HeaderSize)
	n, err := io.ReadFull(r, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	return header[:n], nil
}

// Inspect reads the header of the file at path and fills Info. Capture
// time and birth time are best effort and left nil when unavailable.
func Inspect(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	header, err := readHeader(f)
	if err != nil {
		return Info{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	info := Info{}
	info.Kind, info.MIME = Sniff(header, path)

	if ts, err := times.Stat(path); err == nil && ts.HasBirthTime() {
		bt := ts.BirthTime()
		info.CreatedAt = &bt
	}

	if info.Kind == KindImage {
		if _, err := f.Seek(0, io.SeekStart); err == nil {
			info.TakenAt = takenAt(f)
		}
	}

	return info, nil
}

func takenAt(r io.Reader) *time.Time {
	x, err := exif.Decode(r)
	if err != nil {
		return nil
	}
	tm, err := x.DateTime()
	if err != nil {
		return nil
	}
	return &tm
}
