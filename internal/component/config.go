// Package component runs batch identify and convert jobs: a scanner walks
// the input and queues jobs, a transfer pool runs them, and a monitor
// reports progress. They talk over an event bus.
package component

import (
	"path"
	"path/filepath"
	"strings"
)

type PathMatcher func(pathname string, depPlatform bool) bool

type Mode int

const (
	ModeConvert Mode = iota
	ModeIdentify
)

type Config struct {
	Mode         Mode
	Src          string
	Dest         string
	Recursively  bool
	ConvertMatch PathMatcher
	CopyMatch    PathMatcher
	ArchiveMatch PathMatcher
	CopyFileMeta bool
	MaxGo        int
	LogPath      string
	// OutExt replaces the extension of converted files, e.g. ".webp".
	OutExt   string
	Codec    Codec
	JobQueue chan *Job
}

// NewGlobMatcher matches file extensions against "|" separated globs such
// as "*.png|*.jpg". Matching ignores case.
func NewGlobMatcher(pattern string) (PathMatcher, error) {
	patterns := strings.Split(strings.ToLower(pattern), "|")
	for _, s := range patterns {
		if _, err := path.Match(s, "foobar"); err != nil {
			return nil, err
		}
	}

	return func(pathname string, depPlatform bool) bool {
		var name string
		if depPlatform {
			name = filepath.Ext(pathname)
		} else {
			name = path.Ext(pathname)
		}
		name = strings.ToLower(name)
		for _, s := range patterns {
			if ok, _ := path.Match(s, name); ok {
				return true
			}
		}
		return false
	}, nil
}

func replaceExt(name, ext string, depPlatform bool) string {
	if ext == "" {
		return name
	}
	var old string
	if depPlatform {
		old = filepath.Ext(name)
	} else {
		old = path.Ext(name)
	}
	return name[:len(name)-len(old)] + ext
}
