package layers

// NewConv1D simply wraps Conv2D with kh=1.
func NewConv1D(k int) *Conv2D {
	return NewConv2D(1, k)
}
