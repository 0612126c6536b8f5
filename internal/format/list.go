package format

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ListTo writes the format table used by "-list format".
func (r *Registry) ListTo(w io.Writer) error {
	list := r.List("*")
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "   Format  Module    Mode  Description")
	fmt.Fprintln(bw, strings.Repeat("-", 79))
	for _, info := range list {
		blob := ' '
		if info.Has(BlobSupport) {
			blob = '*'
		}
		fmt.Fprintf(bw, "%9s%c %-9.9s %c%c%c ", info.Name, blob, info.Module,
			flagChar(info.CanDecode(), 'r'),
			flagChar(info.CanEncode(), 'w'),
			flagChar(info.CanEncode() && info.Has(Adjoin), '+'))
		if info.Description != "" {
			fmt.Fprintf(bw, "  %s", info.Description)
		}
		if info.Version != "" {
			fmt.Fprintf(bw, " (%s)", info.Version)
		}
		fmt.Fprintln(bw)
		if info.Note != "" {
			for _, line := range strings.Split(info.Note, "\n") {
				fmt.Fprintf(bw, "           %s\n", line)
			}
		}
	}
	fmt.Fprint(bw, "\n* native blob support\n")
	fmt.Fprint(bw, "r read support\n")
	fmt.Fprint(bw, "w write support\n")
	fmt.Fprint(bw, "+ support for multiple images\n")
	return bw.Flush()
}

func flagChar(on bool, c byte) byte {
	if on {
		return c
	}
	return '-'
}
