// Package receptive computes the receptive field of a stack of
// convolution / pooling layers from their kernel sizes, dilations and strides.
package receptive

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sync"
)

// ErrInvalidConfiguration is returned (wrapped) for every rejected layer configuration.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Verbose controls whether warnings are printed.
var Verbose = true

// Output is the writer where warnings are printed.
// Defaults to os.Stderr.
var Output io.Writer = os.Stderr

// outputMu serializes warnings from concurrent calls.
var outputMu sync.Mutex

type paramKind int

const (
	unset paramKind = iota
	scalar
	sequence
)

// Param is a per-layer integer parameter: either one value shared by every
// layer or one value per layer. The zero value is unset.
type Param struct {
	kind   paramKind
	values []int
}

// Scalar returns a Param that uses v for every layer.
func Scalar(v int) Param {
	return Param{kind: scalar, values: []int{v}}
}

// Seq returns a Param with one value per layer.
func Seq(vs ...int) Param {
	return Param{kind: sequence, values: append([]int{}, vs...)}
}

// IsSet reports whether p holds a value.
func (p Param) IsSet() bool { return p.kind != unset }

// IsSeq reports whether p is a per-layer sequence.
func (p Param) IsSeq() bool { return p.kind == sequence }

// Len returns the sequence length, or 0 for scalars and unset params.
func (p Param) Len() int {
	if p.kind != sequence {
		return 0
	}
	return len(p.values)
}

// Values returns a copy of the underlying values.
func (p Param) Values() []int {
	return append([]int{}, p.values...)
}

func (p Param) String() string {
	switch p.kind {
	case scalar:
		return fmt.Sprintf("%d", p.values[0])
	case sequence:
		return fmt.Sprintf("%v", p.values)
	}
	return "<unset>"
}

// expand turns p into exactly n values. Unset params expand to def.
func (p Param) expand(n, def int) []int {
	switch p.kind {
	case sequence:
		return append([]int{}, p.values...)
	case scalar:
		def = p.values[0]
	}
	out := make([]int, n)
	for i := range out {
		out[i] = def
	}
	return out
}

// Config describes a layer stack. Unset Dilations and Strides default to 1.
// Layers == 0 means the layer count is inferred from the sequence params.
type Config struct {
	KernelSizes Param
	Dilations   Param
	Strides     Param
	Layers      int
}

// LayerTrace is the state of the computation after one layer.
type LayerTrace struct {
	Index           int
	Kernel          int
	Dilation        int
	Stride          int
	EffectiveKernel int
	Jump            int // product of the strides of all preceding layers
	ReceptiveField  int
}

// Compute returns the receptive field of the stack. layers == 0 infers the
// layer count from whichever params are sequences; an explicit zero-layer
// stack is expressed with empty sequences (Seq()), not with layers == 0.
func Compute(kernelSizes, dilations, strides Param, layers int) (int, error) {
	cfg := Config{
		KernelSizes: kernelSizes,
		Dilations:   dilations,
		Strides:     strides,
		Layers:      layers,
	}
	return cfg.ReceptiveField()
}

// layerCount resolves the number of layers. Without an explicit count the
// last sequence in (kernel sizes, dilations, strides) order wins.
func (c Config) layerCount() (int, error) {
	if c.Layers < 0 {
		return 0, fmt.Errorf("%w: layer count must be non-negative, got %d", ErrInvalidConfiguration, c.Layers)
	}
	if c.Layers > 0 {
		return c.Layers, nil
	}

	n := -1
	lens := []int{}
	for _, p := range []Param{c.KernelSizes, c.Dilations, c.Strides} {
		if p.IsSeq() {
			n = p.Len()
			lens = append(lens, p.Len())
		}
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: at least one of kernel_sizes/dilations/strides must be a sequence, or n_layers must be specified", ErrInvalidConfiguration)
	}
	for _, l := range lens {
		if l != n {
			warnf("layer count inferred as %d from the last sequence parameter, but sequence lengths differ: %v", n, lens)
			break
		}
	}
	return n, nil
}

// Normalize expands every param to one value per layer and validates them.
func (c Config) Normalize() (kernels, dilations, strides []int, err error) {
	if !c.KernelSizes.IsSet() {
		return nil, nil, nil, fmt.Errorf("%w: kernel sizes are required", ErrInvalidConfiguration)
	}
	n, err := c.layerCount()
	if err != nil {
		return nil, nil, nil, err
	}

	kernels = c.KernelSizes.expand(n, 1)
	dilations = c.Dilations.expand(n, 1)
	strides = c.Strides.expand(n, 1)
	if len(kernels) != n || len(dilations) != n || len(strides) != n {
		return nil, nil, nil, fmt.Errorf("%w: mismatched lengths: kernel_sizes=%d dilations=%d strides=%d, layers=%d",
			ErrInvalidConfiguration, len(kernels), len(dilations), len(strides), n)
	}

	for _, check := range []struct {
		name string
		vals []int
	}{
		{"kernel size", kernels},
		{"dilation", dilations},
		{"stride", strides},
	} {
		for i, v := range check.vals {
			if v < 1 {
				return nil, nil, nil, fmt.Errorf("%w: %s of layer %d must be >= 1, got %d", ErrInvalidConfiguration, check.name, i, v)
			}
		}
	}
	return kernels, dilations, strides, nil
}

// Trace runs the computation and records the state after every layer.
func (c Config) Trace() ([]LayerTrace, error) {
	ks, ds, ss, err := c.Normalize()
	if err != nil {
		return nil, err
	}

	trace := make([]LayerTrace, 0, len(ks))
	rf, jump := 1, 1
	for i := range ks {
		k, d, s := ks[i], ds[i], ss[i]

		span, ok := mul(d, k-1)
		if !ok {
			return nil, overflow(i)
		}
		grow, ok := mul(span, jump)
		if !ok {
			return nil, overflow(i)
		}
		if rf, ok = add(rf, grow); !ok {
			return nil, overflow(i)
		}

		trace = append(trace, LayerTrace{
			Index:           i,
			Kernel:          k,
			Dilation:        d,
			Stride:          s,
			EffectiveKernel: span + 1,
			Jump:            jump,
			ReceptiveField:  rf,
		})

		// the last stride never reaches the result
		if i < len(ks)-1 {
			if jump, ok = mul(jump, s); !ok {
				return nil, overflow(i)
			}
		}
	}
	return trace, nil
}

// ReceptiveField returns the receptive field of the stack, always >= 1.
func (c Config) ReceptiveField() (int, error) {
	trace, err := c.Trace()
	if err != nil {
		return 0, err
	}
	if len(trace) == 0 {
		return 1, nil
	}
	return trace[len(trace)-1].ReceptiveField, nil
}

func (c Config) String() string {
	return fmt.Sprintf("kernel_sizes=%v dilations=%v strides=%v layers=%d", c.KernelSizes, c.Dilations, c.Strides, c.Layers)
}

func mul(a, b int) (int, bool) {
	if a != 0 && b > math.MaxInt/a {
		return 0, false
	}
	return a * b, true
}

func add(a, b int) (int, bool) {
	if a > math.MaxInt-b {
		return 0, false
	}
	return a + b, true
}

func overflow(layer int) error {
	return fmt.Errorf("%w: receptive field overflows int at layer %d", ErrInvalidConfiguration, layer)
}

func warnf(format string, args ...interface{}) {
	if !Verbose {
		return
	}
	outputMu.Lock()
	defer outputMu.Unlock()
	fmt.Fprintf(Output, "receptive: warning: "+format+"\n", args...)
}
