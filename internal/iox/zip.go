package iox

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mocukie/imagecore/pkg/zipx"
	"github.com/pkg/errors"
)

// ZipInput reads one entry of an archive. The entry is matched by its
// stored name or by its recovered UTF-8 name.
type ZipInput struct {
	io.ReadCloser
	zip     *zip.ReadCloser
	entry   *zip.File
	path    string
	archive string
	name    string
}

func NewZipInput(path string) (*ZipInput, error) {
	archive, name, ok := SplitNested(path)
	if !ok {
		return nil, errors.Errorf("invalid zip path %q", path)
	}
	return &ZipInput{path: path, archive: archive, name: name}, nil
}

func (zi *ZipInput) Path() string {
	return zi.path
}

func (zi *ZipInput) Open() error {
	var err error
	zi.zip, err = zip.OpenReader(zi.archive)
	if err != nil {
		return errors.WithStack(err)
	}

	for _, entry := range zi.zip.File {
		if name, _ := zipx.DetectZipUTF8Path(&entry.FileHeader); entry.Name == zi.name || name == zi.name {
			zi.entry = entry
			zi.ReadCloser, err = entry.Open()
			return errors.WithStack(err)
		}
	}
	return errors.Errorf("zip entry %q not found", zi.name)
}

func (zi *ZipInput) Info() (os.FileInfo, error) {
	if zi.entry == nil {
		return nil, errors.New("zip not open yet")
	}
	return zi.entry.FileInfo(), nil
}

func (zi *ZipInput) Close() error {
	var err error
	if zi.ReadCloser != nil {
		err = zi.ReadCloser.Close()
		zi.ReadCloser = nil
	}
	if zi.zip != nil {
		if e := zi.zip.Close(); e != nil && err == nil {
			err = e
		}
	}
	zi.zip = nil
	zi.entry = nil
	return errors.WithStack(err)
}

// SafeZipWriter is shared by the outputs of one archive. The archive is
// finished when the last of ref outputs is closed.
type SafeZipWriter struct {
	f io.Closer
	*zip.Writer
	sync.Mutex
	ref int32
}

func NewZipWriter(f io.WriteCloser, ref int32) *SafeZipWriter {
	return &SafeZipWriter{
		f:      f,
		Writer: zip.NewWriter(f),
		ref:    ref,
	}
}

func (zw *SafeZipWriter) UnRef() error {
	if atomic.AddInt32(&zw.ref, -1) != 0 {
		return nil
	}
	if err := zw.Writer.Close(); err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(zw.f.Close())
}

// ZipOutput buffers one entry and appends it to the shared writer on Close.
type ZipOutput struct {
	bytes.Buffer
	zip  *SafeZipWriter
	path string
	name string
	fh   *zip.FileHeader
}

func NewZipOutput(path string) (*ZipOutput, error) {
	_, name, ok := SplitNested(path)
	if !ok {
		return nil, errors.Errorf("invalid zip path %q", path)
	}
	return &ZipOutput{path: path, name: name}, nil
}

func (zo *ZipOutput) SetZipWriter(zw *SafeZipWriter) {
	zo.zip = zw
}

func (zo *ZipOutput) Path() string {
	return zo.path
}

func (zo *ZipOutput) Open(info os.FileInfo) error {
	zo.Reset()
	var fh *zip.FileHeader
	if info != nil {
		fh, _ = zip.FileInfoHeader(info)
	}
	if fh == nil {
		fh = &zip.FileHeader{Modified: time.Now()}
	}
	fh.Name = zo.name
	fh.Method = zip.Deflate
	zo.fh = fh
	return nil
}

func (zo *ZipOutput) Close() error {
	z := zo.zip
	if z == nil {
		return errors.New("zip writer not set")
	}
	z.Lock()
	defer z.Unlock()

	var err error
	if zo.fh != nil {
		var w io.Writer
		if w, err = z.CreateHeader(zo.fh); err == nil {
			_, err = zo.WriteTo(w)
		}
		zo.fh = nil
	}
	if e := z.UnRef(); e != nil && err == nil {
		err = e
	}
	return errors.WithStack(err)
}
