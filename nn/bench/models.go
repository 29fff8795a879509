// Package bench holds reference architectures whose receptive fields are
// well known.
package bench

import (
	"fmt"
	"sort"

	"rfield/nn"
	"rfield/nn/layers"
)

// BuiltNet holds a model's name and layer stack
type BuiltNet struct {
	Name string
	Net  *nn.Sequential
}

// 1. Classic LeNet (conv-pool-conv-pool)
func BuildLeNet() BuiltNet {
	return BuiltNet{
		Name: "lenet",
		Net: &nn.Sequential{Layers: []nn.Layer{
			layers.NewConv2D(5, 5),
			layers.NewAvgPool2D(2),
			layers.NewConv2D(5, 5),
			layers.NewAvgPool2D(2),
		}},
	}
}

// 2. VGG16 feature extractor: five blocks of 3x3 convs, each closed by 2x2 pooling
func BuildVGG16() BuiltNet {
	var ls []nn.Layer
	for _, convs := range []int{2, 2, 3, 3, 3} {
		for i := 0; i < convs; i++ {
			ls = append(ls, layers.NewConv2D(3, 3))
		}
		ls = append(ls, layers.NewAvgPool2D(2))
	}
	return BuiltNet{Name: "vgg16", Net: &nn.Sequential{Layers: ls}}
}

// 3. Temporal convolution block: kernel 2 with doubling dilation
func BuildTCN(levels int) BuiltNet {
	ls := make([]nn.Layer, levels)
	for i := range ls {
		ls[i] = layers.NewConv1D(2).WithDilation(1, 1<<i)
	}
	return BuiltNet{Name: fmt.Sprintf("tcn%d", levels), Net: &nn.Sequential{Layers: ls}}
}

// 4. 1-D conv net over sequences (conv-pool-conv-pool)
func BuildConv1DNet() BuiltNet {
	return BuiltNet{
		Name: "conv1d",
		Net: &nn.Sequential{Layers: []nn.Layer{
			layers.NewConv1D(3),
			layers.NewMaxPool1D(2),
			layers.NewConv1D(3),
			layers.NewMaxPool1D(2),
		}},
	}
}

var builders = map[string]func() BuiltNet{
	"lenet":  BuildLeNet,
	"vgg16":  BuildVGG16,
	"tcn8":   func() BuiltNet { return BuildTCN(8) },
	"conv1d": BuildConv1DNet,
}

// Names lists the available models in sorted order.
func Names() []string {
	names := make([]string, 0, len(builders))
	for n := range builders {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Build returns the named model.
func Build(name string) (BuiltNet, error) {
	b, ok := builders[name]
	if !ok {
		return BuiltNet{}, fmt.Errorf("unknown model %q (available: %v)", name, Names())
	}
	return b(), nil
}
