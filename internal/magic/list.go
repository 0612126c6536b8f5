package magic

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ListTo writes the rule table used by "-list magic".
func (e *Engine) ListTo(w io.Writer) error {
	bw := bufio.NewWriter(w)
	first := true
	var last string
	for _, r := range e.List("*") {
		if first || r.Path != last {
			fmt.Fprintf(bw, "\nPath: %s\n\n", r.Path)
			fmt.Fprintln(bw, "Name      Offset Target")
			fmt.Fprintln(bw, strings.Repeat("-", 79))
		}
		first, last = false, r.Path
		fmt.Fprintf(bw, "%-10s%6d ", r.Name, r.Offset)
		for _, c := range r.Target {
			if c >= 0x20 && c < 0x7f {
				bw.WriteByte(c)
			} else {
				fmt.Fprintf(bw, "\\%03o", c)
			}
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
