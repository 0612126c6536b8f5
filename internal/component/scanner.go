package component

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/karrick/godirwalk"
	"github.com/mocukie/imagecore/internal/iox"
	"github.com/mocukie/imagecore/pkg/eventbus"
	"github.com/mocukie/imagecore/pkg/zipx"
	"github.com/pkg/errors"
)

const (
	EvtScannerNewJob eventbus.Topic = "scanner.new-job"
	EvtScannerDone   eventbus.Topic = "scanner.done"
	EvtScannerError  eventbus.Topic = "scanner.error"
)

type pathPair struct {
	src string
	dst string
}

type scannerResult struct {
	pp       []pathPair
	jobCount int
	errCount int
}

type PathScanner struct {
	config *Config
	eb     *eventbus.Bus
	result *scannerResult
	ctx    context.Context
}

// NewPathScanner expects config.Src and config.Dest cleaned by
// filepath.Clean.
func NewPathScanner(eb *eventbus.Bus, config *Config) *PathScanner {
	return &PathScanner{eb: eb, config: config, result: new(scannerResult)}
}

func (sc *PathScanner) identifying() bool {
	return sc.config.Mode == ModeIdentify
}

// Scan queues a job for every matching input and closes the job queue.
func (sc *PathScanner) Scan(ctx context.Context) {
	conf := sc.config
	sc.ctx = ctx
	defer func() {
		sc.eb.Publish(EvtScannerDone, sc.result)
		close(conf.JobQueue)
	}()

	if _, _, nested := iox.SplitNested(conf.Src); nested && sc.identifying() {
		sc.sendJob(&Job{Codec: conf.Codec, In: iox.NewInput(conf.Src)})
		return
	}

	stat, err := os.Stat(conf.Src)
	if err != nil {
		sc.handleError(errors.Wrapf(err, "get <%s> stat failed", conf.Src))
		return
	}

	if stat.IsDir() {
		err = godirwalk.Walk(conf.Src, &godirwalk.Options{
			Callback: sc.walkDir,
			ErrorCallback: func(s string, e error) godirwalk.ErrorAction {
				sc.handleError(errors.Wrapf(e, "walk on file node <%s> failed", s))
				return godirwalk.SkipNode
			},
		})
		if err != nil && ctx.Err() == nil {
			sc.handleError(errors.Wrapf(err, "can not walk directory <%s>", conf.Src))
		}
		return
	}

	if !sc.identifying() {
		dir := filepath.Dir(conf.Dest)
		if err = os.MkdirAll(dir, os.ModePerm); err != nil {
			sc.handleError(errors.Wrapf(err, "can not make output directory <%s>", dir))
			return
		}
	}

	if conf.ArchiveMatch(conf.Src, true) {
		sc.walkZip(conf.Src, conf.Dest)
		return
	}
	job := &Job{Codec: conf.Codec, CopyMeta: conf.CopyFileMeta, In: iox.NewFileInput(conf.Src, stat)}
	if !sc.identifying() {
		job.Out = iox.NewFileOutput(conf.Dest)
	}
	sc.sendJob(job)
}

func (sc *PathScanner) walkDir(pathname string, de *godirwalk.Dirent) error {
	conf := sc.config
	if err := sc.ctx.Err(); err != nil {
		return err
	}
	if conf.Src == pathname {
		if sc.identifying() {
			return nil
		}
		if err := os.MkdirAll(conf.Dest, os.ModePerm); err != nil {
			sc.handleError(errors.Wrapf(err, "can not make dest directory <%s>", conf.Dest))
			return godirwalk.SkipThis
		}
		return nil
	} else if !sc.identifying() && (conf.Dest == pathname || conf.LogPath == pathname) {
		return godirwalk.SkipThis
	}

	rel, _ := filepath.Rel(conf.Src, pathname)
	outPathname := filepath.Join(conf.Dest, rel)
	if de.IsDir() {
		if !conf.Recursively {
			return godirwalk.SkipThis
		}
		if sc.identifying() {
			return nil
		}
		if err := os.MkdirAll(outPathname, os.ModePerm); err != nil {
			sc.handleError(errors.Wrapf(err, "can not make dest directory <%s>", outPathname))
			return godirwalk.SkipThis
		}
		if conf.CopyFileMeta {
			sc.result.pp = append(sc.result.pp, pathPair{src: pathname, dst: outPathname})
		}
		return nil
	}

	if conf.ArchiveMatch(pathname, true) {
		if conf.Recursively {
			sc.walkZip(pathname, outPathname)
		}
		return nil
	}

	job := sc.newJob(pathname, true)
	if job == nil {
		return nil
	}
	job.In = iox.NewFileInput(pathname, nil)
	if !sc.identifying() {
		if job.Codec.Kind() == KindConvert {
			outPathname = replaceExt(outPathname, conf.OutExt, true)
		}
		job.Out = iox.NewFileOutput(outPathname)
	}
	sc.sendJob(job)
	return nil
}

// newJob picks the codec for name, or returns nil to skip it.
func (sc *PathScanner) newJob(name string, depPlatform bool) *Job {
	conf := sc.config
	switch {
	case conf.ConvertMatch(name, depPlatform):
		return &Job{Codec: conf.Codec, CopyMeta: conf.CopyFileMeta}
	case !sc.identifying() && conf.CopyMatch != nil && conf.CopyMatch(name, depPlatform):
		return &Job{Codec: &Copy{}, CopyMeta: true}
	}
	return nil
}

func (sc *PathScanner) walkZip(pathname, outPathname string) {
	conf := sc.config
	reader, err := zip.OpenReader(pathname)
	if err != nil {
		sc.handleError(errors.Wrapf(err, "can not open archive <%s>", pathname))
		return
	}
	defer reader.Close()

	var (
		jobs []*Job
		dirs []*zip.FileHeader
	)
	for _, entry := range reader.File {
		if entry.Mode().IsDir() {
			fh := entry.FileHeader
			fh.Name, fh.NonUTF8 = zipx.DetectZipUTF8Path(&entry.FileHeader)
			dirs = append(dirs, &fh)
			continue
		}

		job := sc.newJob(entry.Name, false)
		if job == nil {
			continue
		}
		job.In, _ = iox.NewZipInput(pathname + iox.NestSeparator + entry.Name)
		if !sc.identifying() {
			outName, _ := zipx.DetectZipUTF8Path(&entry.FileHeader)
			if job.Codec.Kind() == KindConvert {
				outName = replaceExt(outName, conf.OutExt, false)
			}
			job.Out, _ = iox.NewZipOutput(outPathname + iox.NestSeparator + outName)
		}
		jobs = append(jobs, job)
	}

	if len(jobs) == 0 {
		return
	}
	if sc.identifying() {
		for _, job := range jobs {
			sc.sendJob(job)
		}
		return
	}

	f, err := os.Create(outPathname)
	if err != nil {
		sc.handleError(errors.Wrapf(err, "can not create archive <%s>", outPathname))
		return
	}

	zw := iox.NewZipWriter(f, int32(len(jobs)))
	for _, dir := range dirs {
		if !conf.CopyFileMeta {
			dir.Modified = time.Now()
			dir.SetMode(os.ModeDir | os.ModePerm)
		}
		if _, err := zw.CreateHeader(dir); err != nil {
			sc.handleError(errors.Wrapf(err, "can not create archive entry <%s%s%s>", outPathname, iox.NestSeparator, dir.Name))
		}
	}
	for _, job := range jobs {
		job.Out.(*iox.ZipOutput).SetZipWriter(zw)
		sc.sendJob(job)
	}

	if conf.CopyFileMeta {
		sc.result.pp = append(sc.result.pp, pathPair{src: pathname, dst: outPathname})
	}
}

func (sc *PathScanner) handleError(err error) {
	sc.result.errCount++
	sc.eb.Publish(EvtScannerError, err)
}

func (sc *PathScanner) sendJob(job *Job) {
	sc.result.jobCount++
	sc.eb.Publish(EvtScannerNewJob, job)
	select {
	case sc.config.JobQueue <- job:
	case <-sc.ctx.Done():
	}
}
