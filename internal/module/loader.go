package module

import (
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/mocukie/imagecore/internal/format"
	"github.com/mocukie/imagecore/internal/logging"
	"golang.org/x/sync/singleflight"
)

// Loader opens modules from shared objects on the module path. Each
// module is opened at most once; concurrent requests share one attempt.
type Loader struct {
	paths []string
	open  func(paths []string, name string) (Entry, error)
	group singleflight.Group

	mu     sync.Mutex
	opened map[string]Entry
	log    hclog.Logger
}

func NewLoader(paths []string, log hclog.Logger) *Loader {
	return &Loader{
		paths:  paths,
		open:   openPlugin,
		opened: map[string]Entry{},
		log:    logging.OrNull(log),
	}
}

// Supported reports whether this build can open shared objects.
func Supported() bool { return dynamicLoading }

func (l *Loader) Open(name string) (Entry, error) {
	key := format.Key(name)
	l.mu.Lock()
	e, ok := l.opened[key]
	l.mu.Unlock()
	if ok {
		return e, nil
	}

	v, err, shared := l.group.Do(key, func() (interface{}, error) {
		e, err := l.open(l.paths, name)
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		l.opened[key] = e
		l.mu.Unlock()
		return e, nil
	})
	if err != nil {
		return Entry{}, err
	}
	l.log.Debug("module opened", "name", name, "shared", shared)
	return v.(Entry), nil
}
