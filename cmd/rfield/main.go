// rfield: receptive field of a stack of convolution / pooling layers
//
// Usage:
//
//	rfield -kernels=3,3 -dilations=1 -strides=2,2
//	rfield -kernels=3 -layers=4 -trace
//	rfield -config=stacks.yaml -workers=4
//	rfield -model=vgg16
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"rfield/nn/bench"
	"rfield/receptive"
	"rfield/utils"
)

type options struct {
	kernels   string
	dilations string
	strides   string
	layers    int
	config    string
	model     string
	workers   int
	trace     bool
	verbose   bool
}

func main() {
	var opts options
	flag.StringVar(&opts.kernels, "kernels", "", "Kernel sizes: one value for every layer, or a list (\"3,3\" or \"[3]\")")
	flag.StringVar(&opts.dilations, "dilations", "1", "Dilations, same format as -kernels")
	flag.StringVar(&opts.strides, "strides", "1", "Strides, same format as -kernels")
	flag.IntVar(&opts.layers, "layers", 0, "Number of layers (0 = infer from the list arguments)")
	flag.StringVar(&opts.config, "config", "", "Stack file (.json, .yaml, .yml) with named stacks")
	flag.StringVar(&opts.model, "model", "", fmt.Sprintf("Reference model, one of %v", bench.Names()))
	flag.IntVar(&opts.workers, "workers", 0, "Workers for -config (0 = number of CPUs)")
	flag.BoolVar(&opts.trace, "trace", false, "Print the per-layer breakdown")
	flag.BoolVar(&opts.verbose, "verbose", true, "Print warnings")
	flag.Parse()

	if err := run(opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options, out io.Writer) error {
	receptive.Verbose = opts.verbose
	utils.Output = out
	utils.Verbose = opts.trace

	switch {
	case opts.config != "":
		return runStacks(opts)
	case opts.model != "":
		return runModel(opts.model)
	case opts.kernels != "":
		return runSingle(opts)
	}
	return fmt.Errorf("one of -kernels, -config or -model is required")
}

func runSingle(opts options) error {
	var cfg receptive.Config
	var err error
	if cfg.KernelSizes, err = utils.ParseParam(opts.kernels); err != nil {
		return fmt.Errorf("-kernels: %w", err)
	}
	if cfg.Dilations, err = utils.ParseParam(opts.dilations); err != nil {
		return fmt.Errorf("-dilations: %w", err)
	}
	if cfg.Strides, err = utils.ParseParam(opts.strides); err != nil {
		return fmt.Errorf("-strides: %w", err)
	}
	cfg.Layers = opts.layers

	trace, err := cfg.Trace()
	if err != nil {
		return err
	}
	if opts.trace {
		utils.PrintTrace(cfg.String(), trace)
		return nil
	}
	rf := 1
	if len(trace) > 0 {
		rf = trace[len(trace)-1].ReceptiveField
	}
	fmt.Fprintln(utils.Output, rf)
	return nil
}

func runStacks(opts options) error {
	file, err := utils.LoadStacks(opts.config)
	if err != nil {
		return err
	}

	names := make([]string, len(file.Stacks))
	cfgs := make([]receptive.Config, len(file.Stacks))
	for i, s := range file.Stacks {
		names[i] = s.Name
		cfgs[i] = s.Config()
	}

	results := receptive.ComputeAll(cfgs, opts.workers)
	if failed := utils.PrintResults(names, results); failed > 0 {
		return fmt.Errorf("%d of %d stacks failed", failed, len(results))
	}
	if !utils.Verbose {
		return nil
	}
	// configs were already validated by ComputeAll; tracing is for display only
	for i, cfg := range cfgs {
		if trace, err := cfg.Trace(); err == nil {
			utils.PrintTrace(names[i], trace)
		}
	}
	return nil
}

func runModel(name string) error {
	net, err := bench.Build(name)
	if err != nil {
		return err
	}
	rfs, err := net.Net.ReceptiveFields()
	if err != nil {
		return err
	}
	fmt.Fprintf(utils.Output, "%s: %d layers, receptive field %v\n", net.Name, len(net.Net.Layers), rfs)
	if !utils.Verbose {
		return nil
	}
	for a := range rfs {
		if trace, err := net.Net.Trace(a); err == nil {
			utils.PrintTrace(fmt.Sprintf("%s axis %d", net.Name, a), trace)
		}
	}
	return nil
}
