package core

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/mocukie/imagecore/pkg/atomicx"
	"gopkg.in/vrecan/death.v3"
)

var fatalSignals = []os.Signal{syscall.SIGHUP, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM}

var (
	lifecycleMu  sync.Mutex
	instantiated atomicx.Bool
	current      *Environment
	handlers     *signalHandlers
)

// Genesis creates the process Environment. It returns the existing one when
// called again before Terminus.
func Genesis(clientPath string, installSignalHandlers bool) (*Environment, error) {
	return GenesisWith(Options{ClientPath: clientPath}, installSignalHandlers)
}

func GenesisWith(opts Options, installSignalHandlers bool) (*Environment, error) {
	lifecycleMu.Lock()
	defer lifecycleMu.Unlock()
	if instantiated.T() {
		return current, nil
	}

	env, err := NewEnvironment(opts)
	if err != nil {
		return nil, err
	}
	if installSignalHandlers {
		handlers = installHandlers(env)
	}
	current = env
	instantiated.Set(true)
	env.Log.Debug("genesis", "signals", installSignalHandlers)
	env.Bus.Publish(TopicGenesis, env)
	return env, nil
}

// Terminus tears down the process Environment. It does nothing when
// Genesis has not run.
func Terminus() {
	lifecycleMu.Lock()
	defer lifecycleMu.Unlock()
	terminusLocked()
}

func terminusLocked() {
	if instantiated.F() {
		return
	}
	env := current
	if handlers != nil {
		handlers.uninstall()
		handlers = nil
	}
	env.Close()
	current = nil
	instantiated.Set(false)
	env.Log.Debug("terminus")
	env.Bus.Publish(TopicTerminus, env)
}

// Current returns the process Environment, or nil outside Genesis/Terminus.
func Current() *Environment {
	lifecycleMu.Lock()
	defer lifecycleMu.Unlock()
	return current
}

type signalHandlers struct {
	fired   atomicx.Bool
	stopped atomicx.Bool
	deaths  []*death.Death
	wg      sync.WaitGroup
}

// installHandlers runs Terminus on a fatal signal, then restores the
// default disposition and raises the signal again.
func installHandlers(env *Environment) *signalHandlers {
	h := &signalHandlers{}
	for _, sig := range fatalSignals {
		sig := sig
		d := death.NewDeath(sig)
		h.deaths = append(h.deaths, d)
		h.wg.Add(1)
		go func() {
			defer h.wg.Done()
			d.WaitForDeathWithFunc(func() {
				// FallOnSword wakes the handler too
				if h.stopped.T() || !h.fired.CAS(false, true) {
					return
				}
				env.Log.Warn("caught signal, cleaning up", "signal", sig)
				lifecycleMu.Lock()
				terminusLocked()
				lifecycleMu.Unlock()
				signal.Reset(sig)
				raise(sig)
			})
		}()
	}
	return h
}

// uninstall stops every handler, including the others when one of them is
// running Terminus.
func (h *signalHandlers) uninstall() {
	if !h.stopped.CAS(false, true) {
		return
	}
	for _, d := range h.deaths {
		d.FallOnSword()
	}
	signal.Reset(fatalSignals...)
}

func raise(sig os.Signal) {
	if p, err := os.FindProcess(os.Getpid()); err == nil && p.Signal(sig) == nil {
		return
	}
	os.Exit(2)
}
