package component

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/mocukie/imagecore/internal/iox"
	"github.com/mocukie/imagecore/pkg/eventbus"
	"github.com/pkg/errors"
)

const (
	EvtTransferDone    eventbus.Topic = "transfer.done"
	EvtTransferJobDone eventbus.Topic = "transfer.job-done"
)

// Job is one input and, except for identify jobs, one output.
type Job struct {
	In       iox.Input
	Out      iox.Output
	Codec    Codec
	CopyMeta bool
	Summary  string
	Err      error
	Warnings []error
}

func (job *Job) do() {
	var (
		in   = job.In
		out  = job.Out
		info os.FileInfo
	)

	defer func() {
		if e := in.Close(); e != nil && job.Err == nil {
			job.Err = errors.WithStack(e)
		}
		if out == nil {
			return
		}
		if e := out.Close(); e != nil && job.Err == nil {
			job.Err = errors.WithStack(e)
		}
	}()

	if err := in.Open(); err != nil {
		job.Err = errors.WithStack(err)
		return
	}

	if job.CopyMeta {
		var err error
		info, err = in.Info()
		if err != nil {
			job.Warnings = append(job.Warnings, errors.WithStack(err))
		}
	}

	if out != nil {
		if err := out.Open(info); err != nil {
			job.Err = errors.WithStack(err)
			return
		}
	}

	summary, w, e := job.Codec.Convert(in, out)
	if e != nil {
		job.Err = errors.WithStack(e)
	}
	job.Summary = summary
	job.Warnings = append(job.Warnings, w...)
}

// Transfer runs queued jobs on MaxGo workers until the scanner closes the
// queue.
type Transfer struct {
	maxGo    int
	jobQueue <-chan *Job
	eb       *eventbus.Bus
	sub      eventbus.Subscriber
}

func NewTransfer(eb *eventbus.Bus, config *Config) *Transfer {
	maxGo := config.MaxGo
	if maxGo < 1 {
		maxGo = 1
	}
	tr := &Transfer{
		maxGo:    maxGo,
		jobQueue: config.JobQueue,
		eb:       eb,
		sub:      make(eventbus.Subscriber, 1),
	}
	// subscribed before Start so a fast scanner's result is not missed
	eb.Subscribe(tr.sub, EvtScannerDone)
	return tr
}

func (tr *Transfer) Start(ctx context.Context) {
	defer tr.eb.UnSubscribe(tr.sub, EvtScannerDone)

	var wg sync.WaitGroup
	for i := 0; i < tr.maxGo; i++ {
		wg.Add(1)
		go tr.worker(ctx, &wg)
	}
	wg.Wait()

	if ctx.Err() == nil {
		select {
		case msg := <-tr.sub:
			sc := msg.Data.(*scannerResult)
			for _, pair := range sc.pp {
				if info, err := os.Stat(pair.src); err == nil {
					_ = os.Chmod(pair.dst, info.Mode())
					_ = os.Chtimes(pair.dst, time.Now(), info.ModTime())
				}
			}
		case <-ctx.Done():
		}
	}
	tr.eb.Publish(EvtTransferDone, nil)
}

func (tr *Transfer) worker(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		select {
		case job, ok := <-tr.jobQueue:
			if !ok {
				return
			}
			job.do()
			tr.eb.Publish(EvtTransferJobDone, job)
		case <-ctx.Done():
			return
		}
	}
}
