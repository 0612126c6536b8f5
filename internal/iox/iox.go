// Package iox abstracts the files the batch pipeline reads and writes:
// plain files and entries of zip archives addressed as "archive.zip|entry".
package iox

import (
	"io"
	"os"
	"strings"
)

const NestSeparator = "|"

type Input interface {
	io.Reader
	Path() string
	Info() (os.FileInfo, error)
	Open() error
	Close() error
}

type Output interface {
	io.Writer
	Path() string
	Open(info os.FileInfo) error
	Close() error
}

// SplitNested splits "archive.zip|entry" into its archive and entry parts.
func SplitNested(path string) (archive, entry string, ok bool) {
	idx := strings.LastIndex(path, NestSeparator)
	if idx == -1 {
		return path, "", false
	}
	return path[:idx], path[idx+1:], true
}

// NewInput opens nested paths as zip entries and anything else as a file.
func NewInput(path string) Input {
	if _, _, ok := SplitNested(path); ok {
		if zi, err := NewZipInput(path); err == nil {
			return zi
		}
	}
	return NewFileInput(path, nil)
}
