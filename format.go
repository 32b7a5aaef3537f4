package main

import (
	"bufio"
	"io"
	"sort"
	"strconv"
)

// formatLines renders every entry as "<stack> <count>" and sorts the lines
// by byte order so output does not depend on the host locale.
func formatLines(t *countTable) []string {
	lines := make([]string, 0, len(t.counts))
	for stack, count := range t.counts {
		lines = append(lines, stack+" "+strconv.FormatInt(count, 10))
	}
	sort.Strings(lines)
	return lines
}

// writeLines writes each line followed by "\n", independent of platform.
func writeLines(w io.Writer, lines []string) error {
	bw := bufio.NewWriter(w)
	for _, l := range lines {
		if _, err := bw.WriteString(l); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}
