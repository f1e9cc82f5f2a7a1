// Package upload turns uploaded picture files into the text payload stored on a character.
package upload

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/hpungsan/charsheet/internal/errors"
)

// File is a handle to an uploaded file. Open may be called more than once.
type File interface {
	Name() string
	Open() (io.ReadCloser, error)
}

// BytesFile is an in-memory File, used for multipart uploads and MCP payloads.
type BytesFile struct {
	name string
	data []byte
}

func NewBytesFile(name string, data []byte) *BytesFile {
	return &BytesFile{name: name, data: data}
}

func (f *BytesFile) Name() string { return f.name }

func (f *BytesFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

// PathFile is a File on local disk.
type PathFile string

func (f PathFile) Name() string { return string(f) }

func (f PathFile) Open() (io.ReadCloser, error) {
	file, err := os.Open(string(f))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewFileNotFound(string(f))
		}
		return nil, err
	}
	return file, nil
}

// Decoder converts a file into its text payload.
type Decoder interface {
	Decode(ctx context.Context, f File) (string, error)
}

// DataURLDecoder encodes a file as a base64 data URL with a sniffed MIME type.
type DataURLDecoder struct {
	// MaxBytes rejects larger files; zero means unlimited.
	MaxBytes int64
}

func (d DataURLDecoder) Decode(ctx context.Context, f File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	var r io.Reader = rc
	if d.MaxBytes > 0 {
		r = io.LimitReader(rc, d.MaxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", f.Name(), err)
	}
	if d.MaxBytes > 0 && int64(len(data)) > d.MaxBytes {
		return "", errors.NewImageTooLarge(d.MaxBytes, int64(len(data)))
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	return EncodeDataURL(data), nil
}

// EncodeDataURL returns data as a data URL. Empty input yields "".
func EncodeDataURL(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	mime := mimetype.Detect(data).String()
	// Drop parameters such as "; charset=utf-8"
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURL splits a data URL into its MIME type and raw bytes.
func DecodeDataURL(s string) (mime string, data []byte, err error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(s), "data:")
	if !ok {
		return "", nil, errors.NewInvalidRequest("not a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, errors.NewInvalidRequest("data URL has no payload")
	}
	mime, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return mime, []byte(payload), nil
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, errors.NewInvalidRequest(fmt.Sprintf("invalid base64 payload: %v", err))
	}
	return mime, data, nil
}
