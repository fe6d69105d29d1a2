package tube

import (
	"bytes"
	"fmt"
	"io"
	"text/tabwriter"
)

// Write one row per slice: index, domain, input gate, envelope and output
// gate, in aligned columns.
func (t *Tube) WriteTable(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tdomain\tin\tcodomain\tout")
	i := 0
	for s := t.First(); s != nil; s = s.next {
		fmt.Fprintf(tw, "%d\t%v\t%v\t%v\t%v\n", i, s.domain, *s.in, s.codomain, *s.out)
		i++
	}
	return tw.Flush()
}

// Return the slice table as a reader, see WriteTable.
func (t *Tube) Table() io.Reader {
	var buf bytes.Buffer
	// writes to a bytes.Buffer do not fail
	_ = t.WriteTable(&buf)
	return &buf
}
