package layers

import (
	"fmt"

	"rfield/nn"
)

// Conv2D is a 2D convolutional layer, described by its window geometry.
type Conv2D struct {
	KH, KW               int // kernel height and width
	StrideH, StrideW     int
	DilationH, DilationW int
}

// NewConv2D creates a new Conv2D layer with stride and dilation 1.
func NewConv2D(kh, kw int) *Conv2D {
	return &Conv2D{
		KH:        kh,
		KW:        kw,
		StrideH:   1,
		StrideW:   1,
		DilationH: 1,
		DilationW: 1,
	}
}

// WithStride sets the stride along height and width.
func (c *Conv2D) WithStride(sh, sw int) *Conv2D {
	c.StrideH, c.StrideW = sh, sw
	return c
}

// WithDilation sets the dilation along height and width.
func (c *Conv2D) WithDilation(dh, dw int) *Conv2D {
	c.DilationH, c.DilationW = dh, dw
	return c
}

func (c *Conv2D) Geometry() []nn.Axis {
	return []nn.Axis{
		{Kernel: c.KH, Dilation: c.DilationH, Stride: c.StrideH},
		{Kernel: c.KW, Dilation: c.DilationW, Stride: c.StrideW},
	}
}

func (c *Conv2D) Tag() string {
	return fmt.Sprintf("Conv2D_%d_%d_s%d_%d_d%d_%d", c.KH, c.KW, c.StrideH, c.StrideW, c.DilationH, c.DilationW)
}
