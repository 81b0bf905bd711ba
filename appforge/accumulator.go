package appforge

import "strings"

// Fragment is one streamed delta together with the text received so far.
type Fragment struct {
	// Index is the position of the fragment in the stream, starting at 0.
	Index int
	Delta string
	// Text is the accumulated response including Delta.
	Text string
}

// Accumulator appends streamed deltas into the running response.
// The zero value is ready to use. It is not safe for concurrent use.
type Accumulator struct {
	buf strings.Builder
	n   int
}

// Add appends delta and returns the resulting Fragment.
func (a *Accumulator) Add(delta string) Fragment {
	a.buf.WriteString(delta)
	f := Fragment{Index: a.n, Delta: delta, Text: a.buf.String()}
	a.n++
	return f
}

// String returns the accumulated text.
func (a *Accumulator) String() string { return a.buf.String() }

// Len returns the number of fragments added.
func (a *Accumulator) Len() int { return a.n }
