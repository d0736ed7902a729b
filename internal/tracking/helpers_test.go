package tracking

import (
	"testing"
	"time"
)

func collect(src interface{ OnSample(func(Sample)) }) chan Sample {
	got := make(chan Sample, 16)
	src.OnSample(func(s Sample) { got <- s })
	return got
}

func next(t *testing.T, got <-chan Sample) Sample {
	t.Helper()
	select {
	case s := <-got:
		return s
	case <-time.After(2 * time.Second):
		t.Fatalf("no sample delivered")
		return Sample{}
	}
}
