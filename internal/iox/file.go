package iox

import (
	"os"
	"time"

	"github.com/pkg/errors"
)

type FileInput struct {
	*os.File
	path string
	info os.FileInfo
}

func NewFileInput(path string, info os.FileInfo) *FileInput {
	return &FileInput{
		path: path,
		info: info,
	}
}

func (fi *FileInput) Path() string {
	return fi.path
}

func (fi *FileInput) Open() error {
	var err error
	fi.File, err = os.Open(fi.path)
	return errors.WithStack(err)
}

func (fi *FileInput) Info() (os.FileInfo, error) {
	var err error
	if fi.info == nil {
		fi.info, err = os.Stat(fi.path)
	}
	return fi.info, errors.WithStack(err)
}

func (fi *FileInput) Close() error {
	if fi.File == nil {
		return nil
	}
	err := fi.File.Close()
	fi.File = nil
	return errors.WithStack(err)
}

// FileOutput creates the file on Open. When opened with a FileInfo, Close
// copies its mode and modification time onto the written file.
type FileOutput struct {
	*os.File
	path string
	info os.FileInfo
}

func NewFileOutput(path string) *FileOutput {
	return &FileOutput{path: path}
}

func (fo *FileOutput) Path() string {
	return fo.path
}

func (fo *FileOutput) Open(info os.FileInfo) error {
	var err error
	fo.File, err = os.Create(fo.path)
	fo.info = info
	return errors.WithStack(err)
}

func (fo *FileOutput) Close() error {
	if fo.File != nil {
		if err := fo.File.Close(); err != nil {
			return errors.WithStack(err)
		}
		fo.File = nil
	}

	if fo.info == nil {
		return nil
	}
	i, p := fo.info, fo.path
	fo.info = nil
	if err := os.Chmod(p, i.Mode()); err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(os.Chtimes(p, time.Now(), i.ModTime()))
}
