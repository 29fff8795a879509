package receptive

import (
	"bytes"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quiet(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	oldVerbose, oldOutput := Verbose, Output
	Verbose, Output = true, &buf
	t.Cleanup(func() { Verbose, Output = oldVerbose, oldOutput })
	return &buf
}

func TestComputeExamples(t *testing.T) {
	quiet(t)
	tests := []struct {
		name string
		cfg  Config
		want int
	}{
		{"single kernel", Config{KernelSizes: Seq(7), Dilations: Seq(1), Strides: Seq(1)}, 7},
		{"dilated", Config{KernelSizes: Seq(3), Dilations: Seq(2), Strides: Seq(1)}, 5},
		{"two strided layers", Config{KernelSizes: Seq(3, 3), Dilations: Seq(1, 1), Strides: Seq(2, 2)}, 7},
		{"defaults", Config{KernelSizes: Seq(3, 3, 3)}, 7},
		{"scalar kernel with stride sequence", Config{KernelSizes: Scalar(3), Strides: Seq(2, 2, 1)}, 15},
		{"scalar kernel with explicit layers", Config{KernelSizes: Scalar(5), Layers: 4}, 17},
		{"wavenet block", Config{KernelSizes: Scalar(2), Dilations: Seq(1, 2, 4, 8, 16)}, 32},
		{"unit kernels ignore stride", Config{KernelSizes: Scalar(1), Dilations: Scalar(4), Strides: Scalar(3), Layers: 6}, 1},
		{"empty stack", Config{KernelSizes: Seq()}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cfg.ReceptiveField()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeMatchesConfig(t *testing.T) {
	got, err := Compute(Seq(3, 3), Seq(1, 1), Seq(2, 2), 0)
	require.NoError(t, err)
	assert.Equal(t, 7, got)
}

func TestSingleLayerEqualsKernel(t *testing.T) {
	for k := 1; k <= 64; k++ {
		got, err := Compute(Seq(k), Seq(1), Seq(1), 0)
		require.NoError(t, err)
		assert.Equal(t, k, got, "k=%d", k)
	}
}

func TestIdenticalLayers(t *testing.T) {
	for k := 1; k <= 9; k++ {
		for n := 1; n <= 9; n++ {
			got, err := Compute(Scalar(k), Scalar(1), Scalar(1), n)
			require.NoError(t, err)
			assert.Equal(t, n*(k-1)+1, got, "k=%d n=%d", k, n)
		}
	}
}

func TestScalarExpansionMatchesSequences(t *testing.T) {
	for k := 1; k <= 5; k++ {
		for d := 1; d <= 3; d++ {
			for s := 1; s <= 3; s++ {
				for n := 1; n <= 4; n++ {
					ks, ds, ss := make([]int, n), make([]int, n), make([]int, n)
					for i := 0; i < n; i++ {
						ks[i], ds[i], ss[i] = k, d, s
					}
					fromSeq, err := Compute(Seq(ks...), Seq(ds...), Seq(ss...), 0)
					require.NoError(t, err)
					fromScalar, err := Compute(Scalar(k), Scalar(d), Scalar(s), n)
					require.NoError(t, err)
					assert.Equal(t, fromSeq, fromScalar, "k=%d d=%d s=%d n=%d", k, d, s, n)
				}
			}
		}
	}
}

func TestMonotonicInKernelSize(t *testing.T) {
	base := []int{3, 5, 2, 4}
	dil := Seq(1, 2, 1, 3)
	str := Seq(2, 1, 3, 1)
	ref, err := Compute(Seq(base...), dil, str, 0)
	require.NoError(t, err)

	for i := range base {
		ks := append([]int{}, base...)
		for bump := 1; bump <= 3; bump++ {
			ks[i] = base[i] + bump
			got, err := Compute(Seq(ks...), dil, str, 0)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, got, ref, "layer %d kernel %d", i, ks[i])
		}
	}
}

func TestUnresolvedLayerCount(t *testing.T) {
	_, err := Compute(Scalar(3), Param{}, Param{}, 0)
	require.ErrorIs(t, err, ErrInvalidConfiguration)

	_, err = Compute(Scalar(3), Scalar(1), Scalar(1), 0)
	require.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestMismatchedLengths(t *testing.T) {
	quiet(t)
	_, err := Compute(Seq(3, 3), Seq(1, 1, 1), Seq(1, 1), 0)
	require.ErrorIs(t, err, ErrInvalidConfiguration)
	assert.Contains(t, err.Error(), "mismatched lengths")
}

func TestLayerCountPrecedence(t *testing.T) {
	buf := quiet(t)

	// strides is inspected last, so the stack has 2 layers and the 3 kernel sizes no longer fit
	_, err := Compute(Seq(3, 3, 3), Scalar(1), Seq(1, 1), 0)
	require.ErrorIs(t, err, ErrInvalidConfiguration)
	assert.Contains(t, err.Error(), "layers=2")
	assert.Contains(t, buf.String(), "inferred as 2")

	buf.Reset()
	_, err = Compute(Seq(3, 3, 3), Seq(1, 1, 1, 1), Scalar(1), 0)
	require.ErrorIs(t, err, ErrInvalidConfiguration)
	assert.Contains(t, err.Error(), "layers=4")
	assert.Contains(t, buf.String(), "inferred as 4")
}

func TestWarningRespectsVerbose(t *testing.T) {
	buf := quiet(t)
	Verbose = false
	_, err := Compute(Seq(3, 3, 3), Scalar(1), Seq(1, 1), 0)
	require.Error(t, err)
	assert.Empty(t, buf.String())
}

func TestExplicitLayersMustMatchSequences(t *testing.T) {
	_, err := Compute(Seq(3, 3), Scalar(1), Scalar(1), 3)
	require.ErrorIs(t, err, ErrInvalidConfiguration)

	got, err := Compute(Seq(3, 3), Scalar(1), Scalar(1), 2)
	require.NoError(t, err)
	assert.Equal(t, 5, got)
}

func TestRejectsNonPositiveValues(t *testing.T) {
	cases := []Config{
		{KernelSizes: Seq(3, 0)},
		{KernelSizes: Seq(3, 3), Dilations: Scalar(0)},
		{KernelSizes: Seq(3, 3), Strides: Seq(1, -2)},
		{KernelSizes: Scalar(-1), Layers: 2},
		{KernelSizes: Scalar(3), Layers: -1},
		{Dilations: Seq(1, 1)},
	}
	for i, cfg := range cases {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			_, err := cfg.ReceptiveField()
			require.ErrorIs(t, err, ErrInvalidConfiguration)
		})
	}
}

func TestOverflow(t *testing.T) {
	_, err := Compute(Scalar(math.MaxInt/2), Scalar(1), Scalar(1), 3)
	require.ErrorIs(t, err, ErrInvalidConfiguration)
	assert.Contains(t, err.Error(), "overflows")

	_, err = Compute(Scalar(3), Scalar(1), Scalar(math.MaxInt/4), 3)
	require.ErrorIs(t, err, ErrInvalidConfiguration)

	// a huge final stride is never used
	got, err := Compute(Seq(3, 3), Scalar(1), Seq(2, math.MaxInt), 0)
	require.NoError(t, err)
	assert.Equal(t, 7, got)
}

func TestTrace(t *testing.T) {
	trace, err := Config{KernelSizes: Seq(3, 3, 2), Dilations: Seq(1, 2, 1), Strides: Seq(2, 2, 1)}.Trace()
	require.NoError(t, err)
	require.Len(t, trace, 3)

	assert.Equal(t, LayerTrace{Index: 0, Kernel: 3, Dilation: 1, Stride: 2, EffectiveKernel: 3, Jump: 1, ReceptiveField: 3}, trace[0])
	assert.Equal(t, LayerTrace{Index: 1, Kernel: 3, Dilation: 2, Stride: 2, EffectiveKernel: 5, Jump: 2, ReceptiveField: 11}, trace[1])
	assert.Equal(t, LayerTrace{Index: 2, Kernel: 2, Dilation: 1, Stride: 1, EffectiveKernel: 2, Jump: 4, ReceptiveField: 15}, trace[2])
}

func TestParamAccessors(t *testing.T) {
	var p Param
	assert.False(t, p.IsSet())
	assert.Equal(t, "<unset>", p.String())

	s := Scalar(4)
	assert.True(t, s.IsSet())
	assert.False(t, s.IsSeq())
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, "4", s.String())

	in := []int{1, 2, 3}
	q := Seq(in...)
	in[0] = 9
	assert.True(t, q.IsSeq())
	assert.Equal(t, 3, q.Len())
	assert.Equal(t, []int{1, 2, 3}, q.Values())
	assert.Equal(t, "[1 2 3]", q.String())
}

func TestZeroLayers(t *testing.T) {
	// layers == 0 means "infer", so an all-scalar stack cannot resolve a count
	_, err := Compute(Scalar(3), Scalar(1), Scalar(1), 0)
	require.ErrorIs(t, err, ErrInvalidConfiguration)

	got, err := Compute(Seq(), Seq(), Seq(), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, got)
}
