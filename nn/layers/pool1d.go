package layers

import (
	"fmt"

	"rfield/nn"
)

// MaxPool1D pools non-overlapping windows, so its stride equals the window.
type MaxPool1D struct {
	Window int
}

func NewMaxPool1D(window int) *MaxPool1D { return &MaxPool1D{Window: window} }

func (p *MaxPool1D) Geometry() []nn.Axis {
	return []nn.Axis{{Kernel: p.Window, Dilation: 1, Stride: p.Window}}
}

func (p *MaxPool1D) Tag() string {
	return fmt.Sprintf("MaxPool1D_%d", p.Window)
}
