package utils

import (
	"fmt"
	"io"
	"os"

	"rfield/receptive"
)

// Verbose controls whether per-layer breakdowns are printed.
// Set to false to suppress output.
var Verbose = true

// Output is the writer where reports are printed.
// Defaults to os.Stdout.
var Output io.Writer = os.Stdout

// PrintTrace prints the per-layer breakdown of one stack.
// Respects the Verbose flag - does nothing if Verbose is false.
func PrintTrace(name string, trace []receptive.LayerTrace) {
	if !Verbose {
		return
	}
	fmt.Fprintf(Output, "\n=== %s ===\n", name)
	fmt.Fprintf(Output, "%5s %6s %8s %6s %9s %6s %8s\n", "layer", "kernel", "dilation", "stride", "effective", "jump", "rf")
	for _, l := range trace {
		fmt.Fprintf(Output, "%5d %6d %8d %6d %9d %6d %8d\n", l.Index, l.Kernel, l.Dilation, l.Stride, l.EffectiveKernel, l.Jump, l.ReceptiveField)
	}
	rf := 1
	if len(trace) > 0 {
		rf = trace[len(trace)-1].ReceptiveField
	}
	fmt.Fprintf(Output, "Receptive field: %d\n", rf)
}

// PrintResults prints one line per stack and returns the number of failures.
// Failures are always printed.
func PrintResults(names []string, results []receptive.Result) int {
	failed := 0
	for i, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(Output, "%-20s error: %v\n", names[i], r.Err)
			continue
		}
		fmt.Fprintf(Output, "%-20s %d\n", names[i], r.ReceptiveField)
	}
	return failed
}
