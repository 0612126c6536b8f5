package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/mattn/go-colorable"
	"github.com/mocukie/imagecore/internal/core"
	"github.com/mocukie/imagecore/internal/module"
	"github.com/pkg/errors"
	flag "github.com/spf13/pflag"
)

const version = "0.3.0"

var (
	listKind    string
	showVersion bool

	cmdFlags *flag.FlagSet
	stdout   io.Writer = colorable.NewColorableStdout()
)

func printBanner() {
	var banner = `  _
 (_)_ __ ___   __ _  __ _  ___  ___ ___  _ __ ___
 | | '_ ' _ \ / _' |/ _' |/ _ \/ __/ _ \| '__/ _ \
 | | | | | | | (_| | (_| |  __/ (_| (_) | | |  __/
 |_|_| |_| |_|\__,_|\__, |\___|\___\___/|_|  \___|
 %47v
==================================================
`
	fmt.Fprintf(stdout, banner, "v"+version)
}

func printUsage() {
	printBanner()
	name := filepath.Base(os.Args[0])
	fmt.Fprintln(stdout, "Usage:")
	fmt.Fprintf(stdout, "\t%v -list format|coder|magic|module|policy|filter\n", name)
	fmt.Fprintf(stdout, "\t%v identify [options] /path/to/image/or/archive/or/dir ...\n", name)
	fmt.Fprintf(stdout, "\t%v convert [options] /path/to/image/or/archive/or/dir -o out/file/or/dir\n", name)
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Options:")
	fmt.Fprint(stdout, cmdFlags.FlagUsages())
}

// normalizeArgs accepts single dash long options such as "-list".
func normalizeArgs(fs *flag.FlagSet, args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = a
		if len(a) > 2 && a[0] == '-' && a[1] != '-' {
			name := strings.SplitN(a[1:], "=", 2)[0]
			if fs.Lookup(name) != nil {
				out[i] = "-" + a
			}
		}
	}
	return out
}

func printVersion() {
	fmt.Fprintf(stdout, "Version: imagecore %s %s/%s\n", version, runtime.GOOS, runtime.GOARCH)
	features := []string{"static-modules"}
	if module.Supported() {
		features = append(features, "dynamic-modules")
	}
	fmt.Fprintf(stdout, "Features: %s\n", strings.Join(features, " "))
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", filepath.Base(os.Args[0]), err)
	core.Terminus()
	os.Exit(1)
}

func main() {
	cmdFlags = flag.NewFlagSet("imagecore", flag.ContinueOnError)
	cmdFlags.StringVar(&listKind, "list", "", "print a table of format|coder|magic|module|policy|filter")
	cmdFlags.BoolVarP(&showVersion, "version", "v", false, "print version")
	batch := initBatchFlags()
	cmdFlags.AddFlagSet(batch)
	cmdFlags.Usage = printUsage
	cmdFlags.SortFlags = false

	err := cmdFlags.Parse(normalizeArgs(cmdFlags, os.Args[1:]))
	if err == flag.ErrHelp {
		os.Exit(0)
	} else if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if showVersion {
		printVersion()
		return
	}

	args := cmdFlags.Args()
	switch {
	case listKind != "":
		env, err := core.Genesis(os.Args[0], true)
		if err != nil {
			fatal(err)
		}
		defer core.Terminus()
		if err = list(env, stdout, listKind); err != nil {
			fatal(err)
		}
	case len(args) > 0 && args[0] == "identify":
		err = runBatch(args[1:], true)
	case len(args) > 0 && args[0] == "convert":
		err = runBatch(args[1:], false)
	default:
		cmdFlags.Usage()
		os.Exit(1)
	}
	if err != nil {
		fatal(err)
	}
}

func list(env *core.Environment, w io.Writer, kind string) error {
	switch strings.ToLower(kind) {
	case "format":
		if err := env.Formats.ListTo(w); err != nil {
			return err
		}
		if err := env.Formats.Err(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
		return nil
	case "coder":
		return env.Coders.ListTo(w)
	case "magic":
		if err := env.Magic.Err(); err != nil {
			return err
		}
		return env.Magic.ListTo(w)
	case "module":
		env.Formats.Lookup("*")
		return env.Modules.ListTo(w)
	case "policy":
		return env.Policy.ListTo(w)
	case "filter":
		return env.Filters.ListTo(w)
	}
	return errors.Errorf("unrecognized list type %q", kind)
}
