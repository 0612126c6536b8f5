package component

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/mattn/go-colorable"
	"github.com/mocukie/imagecore/internal/logging"
	"github.com/mocukie/imagecore/pkg/eventbus"
)

var requireTopics = []eventbus.Topic{
	EvtScannerNewJob,
	EvtScannerError,
	EvtTransferJobDone,
	EvtTransferDone,
}

type counter struct {
	v int
	t int
}

// Monitor counts job events, draws a progress line on the console and
// logs failures.
type Monitor struct {
	eb        *eventbus.Bus
	sub       eventbus.Subscriber
	config    *Config
	log       hclog.Logger
	console   io.Writer
	counters  map[string]*counter
	Errs      int
	Warnings  int
	startTime time.Time
}

// NewMonitor logs to log; a nil console means colorable stdout.
func NewMonitor(eb *eventbus.Bus, config *Config, log hclog.Logger, console io.Writer) *Monitor {
	if console == nil {
		console = colorable.NewColorableStdout()
	}
	mo := &Monitor{
		eb:      eb,
		config:  config,
		log:     logging.OrNull(log),
		console: console,
		counters: map[string]*counter{
			KindConvert:  {},
			KindCopy:     {},
			KindIdentify: {},
		},
	}
	mo.sub = mo.subscribe()
	return mo
}

func (mo *Monitor) Counter(kind string) (done, total int) {
	c := mo.counters[kind]
	return c.v, c.t
}

func (mo *Monitor) identifying() bool {
	return mo.config.Mode == ModeIdentify
}

// Start returns after the transfer pool reports done or ctx is cancelled.
func (mo *Monitor) Start(ctx context.Context) {
	var (
		sub  = mo.sub
		t1s  = time.NewTicker(1 * time.Second)
		t30s = time.NewTicker(30 * time.Second)
	)
	mo.startTime = time.Now()
	mo.hideCursor()
Loop:
	for {
		select {
		case msg := <-sub:
			if msg.Topic == EvtTransferDone {
				mo.drain(sub)
				break Loop
			}
			mo.processEvent(msg)
		case <-t1s.C:
			mo.updateConsole()
		case <-t30s.C:
			mo.logCounter()
		case <-ctx.Done():
			break Loop
		}
	}
	t1s.Stop()
	t30s.Stop()
	mo.updateConsole()
	fmt.Fprintln(mo.console)
	mo.showCursor()
	mo.unSubscribe(sub)
	mo.logCounter()
	if n := mo.eb.Dropped(); n > 0 {
		mo.log.Warn("events dropped, counters may be incomplete", "dropped", n)
	}
}

func (mo *Monitor) drain(sub eventbus.Subscriber) {
	for {
		select {
		case msg := <-sub:
			mo.processEvent(msg)
		default:
			return
		}
	}
}

func (mo *Monitor) subscribe() eventbus.Subscriber {
	sub := make(eventbus.Subscriber, 512)
	mo.eb.Subscribe(sub, requireTopics...)
	return sub
}

func (mo *Monitor) unSubscribe(sub eventbus.Subscriber) {
	mo.eb.UnSubscribe(sub, requireTopics...)
}

func (mo *Monitor) processEvent(msg eventbus.Message) {
	switch msg.Topic {
	case EvtScannerNewJob:
		job := msg.Data.(*Job)
		mo.counters[job.Codec.Kind()].t++
	case EvtTransferJobDone:
		job := msg.Data.(*Job)
		out := ""
		if job.Out != nil {
			out = job.Out.Path()
		}
		if job.Err != nil {
			mo.Errs++
			mo.log.Error("transfer failed", "in", job.In.Path(), "out", out, "error", fmt.Sprintf("%+v", job.Err))
			if mo.identifying() {
				mo.printLine("\x1b[31m%s: %v\x1b[0m", job.In.Path(), job.Err)
			}
		} else {
			mo.counters[job.Codec.Kind()].v++
			mo.log.Info("transfer done", "in", job.In.Path(), "out", out, "summary", job.Summary)
			if mo.identifying() {
				mo.printLine("%s %s", job.In.Path(), job.Summary)
			}
		}
		mo.Warnings += len(job.Warnings)
		for _, warn := range job.Warnings {
			mo.log.Warn("transfer warning", "in", job.In.Path(), "out", out, "warning", warn)
		}
	case EvtScannerError:
		mo.Errs++
		err, _ := msg.Data.(error)
		mo.log.Error("scanner failed", "error", fmt.Sprintf("%+v", err))
		if mo.identifying() {
			mo.printLine("\x1b[31m%v\x1b[0m", err)
		}
	}
	mo.updateConsole()
}

// printLine writes a result line above the progress line.
func (mo *Monitor) printLine(format string, args ...interface{}) {
	fmt.Fprint(mo.console, "\r\x1b[K")
	fmt.Fprintf(mo.console, format+"\n", args...)
}

func (mo *Monitor) updateConsole() {
	fmt.Fprint(mo.console, "\r")
	mo.printCounter()
}

func (mo *Monitor) printCounter() {
	if mo.identifying() {
		c := mo.counters[KindIdentify]
		fmt.Fprintf(mo.console, "\x1b[36mident\x1b[0m: %d/%d | \x1B[31merror\x1b[0m: %d | elapsed: %10v",
			c.v, c.t, mo.Errs, time.Since(mo.startTime).Round(time.Millisecond))
		return
	}
	conv, cp := mo.counters[KindConvert], mo.counters[KindCopy]
	fmt.Fprintf(mo.console, "\x1b[36mconv\x1b[0m: %d/%d | \x1b[32mcopy\x1b[0m: %d/%d | \x1B[31merror\x1b[0m: %d | \x1b[33mwarn\x1B[0m: %d | elapsed: %10v",
		conv.v, conv.t, cp.v, cp.t, mo.Errs, mo.Warnings, time.Since(mo.startTime).Round(time.Millisecond))
}

func (mo *Monitor) logCounter() {
	conv, cp, id := mo.counters[KindConvert], mo.counters[KindCopy], mo.counters[KindIdentify]
	mo.log.Info("progress",
		"conv", fmt.Sprintf("%d/%d", conv.v, conv.t),
		"copy", fmt.Sprintf("%d/%d", cp.v, cp.t),
		"ident", fmt.Sprintf("%d/%d", id.v, id.t),
		"errors", mo.Errs,
		"warnings", mo.Warnings,
		"elapsed", time.Since(mo.startTime))
}

func (mo *Monitor) hideCursor() {
	fmt.Fprint(mo.console, "\033[?25l")
}

func (mo *Monitor) showCursor() {
	fmt.Fprint(mo.console, "\033[?25h")
}
