package nn

import (
	"fmt"

	"rfield/receptive"
)

// Axis is the sliding-window geometry of a layer along one spatial axis.
type Axis struct {
	Kernel   int
	Dilation int
	Stride   int
}

// Identity leaves an axis untouched.
var Identity = Axis{Kernel: 1, Dilation: 1, Stride: 1}

// Layer defines a single layer/unit in the network, reduced to its geometry.
type Layer interface {
	// Geometry returns one Axis per spatial axis, outermost first
	// (height before width).
	Geometry() []Axis
	Tag() string
}

// Sequential chains multiple Layers in order.
type Sequential struct {
	Layers []Layer
}

// Axes returns the number of spatial axes of the widest layer.
func (s *Sequential) Axes() int {
	n := 0
	for _, layer := range s.Layers {
		if g := len(layer.Geometry()); g > n {
			n = g
		}
	}
	return n
}

// axis returns the geometry of layer along axis of an nAxes-dimensional stack.
// Layers with fewer axes are aligned to the innermost ones; a 1-D layer
// acts on width.
func axis(layer Layer, a, nAxes int) Axis {
	g := layer.Geometry()
	i := a - (nAxes - len(g))
	if i < 0 {
		return Identity
	}
	return g[i]
}

// Config returns the receptive.Config of the stack along axis a.
func (s *Sequential) Config(a int) (receptive.Config, error) {
	nAxes := s.Axes()
	if a < 0 || a >= nAxes {
		return receptive.Config{}, fmt.Errorf("%w: axis %d out of range for a %d-axis stack", receptive.ErrInvalidConfiguration, a, nAxes)
	}

	ks := make([]int, len(s.Layers))
	ds := make([]int, len(s.Layers))
	ss := make([]int, len(s.Layers))
	for i, layer := range s.Layers {
		g := axis(layer, a, nAxes)
		ks[i], ds[i], ss[i] = g.Kernel, g.Dilation, g.Stride
	}
	return receptive.Config{
		KernelSizes: receptive.Seq(ks...),
		Dilations:   receptive.Seq(ds...),
		Strides:     receptive.Seq(ss...),
	}, nil
}

// ReceptiveField computes the receptive field along axis a.
func (s *Sequential) ReceptiveField(a int) (int, error) {
	cfg, err := s.Config(a)
	if err != nil {
		return 0, err
	}
	return cfg.ReceptiveField()
}

// ReceptiveFields computes the receptive field along every axis.
func (s *Sequential) ReceptiveFields() ([]int, error) {
	out := make([]int, s.Axes())
	for a := range out {
		rf, err := s.ReceptiveField(a)
		if err != nil {
			return nil, fmt.Errorf("axis %d: %w", a, err)
		}
		out[a] = rf
	}
	return out, nil
}

// Trace returns the per-layer breakdown along axis a.
func (s *Sequential) Trace(a int) ([]receptive.LayerTrace, error) {
	cfg, err := s.Config(a)
	if err != nil {
		return nil, err
	}
	return cfg.Trace()
}
