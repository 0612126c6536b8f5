package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/mocukie/imagecore/internal/coders"
	"github.com/mocukie/imagecore/internal/component"
	"github.com/mocukie/imagecore/internal/core"
	"github.com/mocukie/imagecore/internal/logging"
	"github.com/mocukie/imagecore/internal/pixel"
	"github.com/mocukie/imagecore/pkg/eventbus"
	"github.com/pkg/errors"
	flag "github.com/spf13/pflag"
	"gopkg.in/vrecan/death.v3"
)

var (
	convertPattern string
	copyPattern    string
	archivePattern string
	outFormat      string
	ops            []string
	quality        int
	lossless       bool
	stripMeta      bool
	ping           bool

	conf = new(component.Config)
)

func initBatchFlags() *flag.FlagSet {
	fs := flag.NewFlagSet("batchFlags", flag.ContinueOnError)
	fs.BoolVarP(&conf.Recursively, "recursive", "r", false, "scan input directory recursively")
	fs.StringVarP(&convertPattern, "pattern", "p", "*.png|*.jpg|*.jpeg|*.gif|*.bmp|*.tif|*.tiff|*.webp", "image glob pattern in batch mode")
	fs.StringVar(&copyPattern, "copy", "", "copy glob pattern in batch mode")
	fs.Lookup("copy").NoOptDefVal = "*"
	fs.StringVar(&archivePattern, "archive", "*.zip|*.cbz", "archive glob pattern in batch mode")
	fs.BoolVar(&conf.CopyFileMeta, "file_meta", false, "copy file metadata")
	fs.StringVarP(&outFormat, "format", "f", "", "output format, guessed from the output extension when omitted")
	fs.StringArrayVar(&ops, "op", nil, "operation name=arg applied before encoding, repeatable ("+strings.Join(pixel.Names(), ", ")+")")
	fs.IntVarP(&quality, "quality", "q", 0, "encoder quality factor (1..100)")
	fs.BoolVar(&lossless, "lossless", false, "ask the encoder for lossless output")
	fs.BoolVar(&stripMeta, "strip", false, "drop ICC, EXIF and XMP profiles")
	fs.BoolVar(&ping, "ping", false, "identify the format without decoding pixels")
	fs.IntVar(&conf.MaxGo, "max_go", runtime.NumCPU(), "max thread number")
	fs.StringVarP(&conf.Dest, "output", "o", "", "output path")
	fs.StringVar(&conf.LogPath, "log", "", "log directory")
	fs.SortFlags = false
	return fs
}

func setupConfig(env *core.Environment, src string, identify bool) error {
	var err error

	conf.Src = filepath.Clean(src)
	conf.ConvertMatch, err = component.NewGlobMatcher(convertPattern)
	if err != nil {
		return errors.WithMessage(err, "invalid convert pattern: "+convertPattern)
	}
	if copyPattern != "" {
		conf.CopyMatch, err = component.NewGlobMatcher(copyPattern)
		if err != nil {
			return errors.WithMessage(err, "invalid copy pattern: "+copyPattern)
		}
	}
	conf.ArchiveMatch, err = component.NewGlobMatcher(archivePattern)
	if err != nil {
		return errors.WithMessage(err, "invalid archive pattern: "+archivePattern)
	}

	if identify {
		conf.Mode = component.ModeIdentify
		conf.Codec = &component.Identifier{Env: env, Ping: ping}
		return nil
	}

	if conf.Dest == "" {
		return errors.New("missing output path, use -o")
	}
	conf.Dest = filepath.Clean(conf.Dest)
	if outFormat == "" {
		outFormat = env.FormatForPath(conf.Dest)
	}
	if outFormat == "" {
		return errors.New("can not guess the output format, use --format")
	}
	info := env.Formats.Lookup(outFormat)
	if info == nil || !info.CanEncode() {
		return errors.Errorf("no encoder for format %s", outFormat)
	}
	conf.OutExt = "." + strings.ToLower(info.Name)

	pixelOps, err := pixel.ParseAll(ops)
	if err != nil {
		return err
	}
	props := map[string]string{}
	if quality > 0 {
		props[coders.QualityProp] = strconv.Itoa(quality)
	}
	if lossless {
		props[coders.LosslessProp] = "true"
	}
	conf.Mode = component.ModeConvert
	conf.Codec = &component.Converter{Env: env, Format: info.Name, Ops: pixelOps, Props: props, StripMeta: stripMeta}
	return nil
}

func openLog() (hclog.Logger, func(), error) {
	if conf.LogPath == "" {
		return hclog.NewNullLogger(), func() {}, nil
	}
	if err := os.MkdirAll(conf.LogPath, os.ModePerm); err != nil {
		return nil, nil, errors.Wrapf(err, "can not make log directory <%s>", conf.LogPath)
	}
	conf.LogPath = filepath.Join(conf.LogPath, time.Now().Format("imagecore-2006-01-02T15.04.05Z07.00.log"))
	logOut, err := os.Create(conf.LogPath)
	if err != nil {
		return nil, nil, errors.Wrap(err, "can not create log file")
	}
	return logging.New("imagecore", "info", logOut), func() { logOut.Close() }, nil
}

// runBatch identifies or converts every source. The registries are torn
// down on return; SIGINT and SIGTERM cancel the running jobs first.
func runBatch(sources []string, identify bool) error {
	if len(sources) == 0 {
		return errors.New("missing input path")
	}
	if !identify && len(sources) > 1 {
		return errors.New("convert takes a single input path")
	}

	env, err := core.Genesis(os.Args[0], false)
	if err != nil {
		return err
	}
	defer core.Terminus()

	log, closeLog, err := openLog()
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, abort := context.WithCancel(context.Background())
	defer abort()
	hook := death.NewDeath(syscall.SIGINT, syscall.SIGTERM)
	go hook.WaitForDeathWithFunc(abort)

	if !identify {
		printBanner()
	}
	failed := 0
	for _, src := range sources {
		if err = setupConfig(env, src, identify); err != nil {
			return err
		}
		conf.JobQueue = make(chan *component.Job, 1024)
		var (
			eb       = eventbus.New()
			transfer = component.NewTransfer(eb, conf)
			monitor  = component.NewMonitor(eb, conf, log, stdout)
			scanner  = component.NewPathScanner(eb, conf)
		)
		go transfer.Start(ctx)
		go scanner.Scan(ctx)
		monitor.Start(ctx)
		if ctx.Err() != nil {
			return errors.New("aborted")
		}
		failed += monitor.Errs
	}
	if !identify {
		fmt.Fprintln(stdout, "\nDone.")
	}
	if failed > 0 {
		return errors.Errorf("%d inputs failed", failed)
	}
	return nil
}
