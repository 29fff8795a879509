package layers

import (
	"fmt"

	"rfield/nn"
)

// AvgPool2D averages non-overlapping p x p windows.
type AvgPool2D struct {
	poolSize int
}

func NewAvgPool2D(p int) *AvgPool2D {
	return &AvgPool2D{poolSize: p}
}

func (a *AvgPool2D) Geometry() []nn.Axis {
	g := nn.Axis{Kernel: a.poolSize, Dilation: 1, Stride: a.poolSize}
	return []nn.Axis{g, g}
}

func (a *AvgPool2D) Tag() string {
	return fmt.Sprintf("AvgPool2D_%d", a.poolSize)
}
