package main

// countTable counts occurrences of each collapsed stack.
type countTable struct {
	counts map[string]int64
}

func newCountTable() *countTable {
	return &countTable{counts: make(map[string]int64)}
}

func (t *countTable) add(stack string) {
	t.counts[stack]++
}

func (t *countTable) len() int { return len(t.counts) }

// total is the number of stacks added, i.e. the sum of all counts.
func (t *countTable) total() int64 {
	var n int64
	for _, c := range t.counts {
		n += c
	}
	return n
}
