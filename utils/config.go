package utils

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"rfield/receptive"
)

// ParseInts parses a whitespace or comma separated list of integers.
func ParseInts(s string) ([]int, error) {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == ','
	})
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

// ParseParam parses a layer parameter from the command line.
// "" is unset, "3" is a scalar, "3,5" or "3 5" is a sequence, and a
// bracketed list such as "[3]" is always a sequence.
func ParseParam(s string) (receptive.Param, error) {
	s = strings.TrimSpace(s)
	bracketed := strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]")
	if bracketed {
		s = s[1 : len(s)-1]
	}

	vals, err := ParseInts(s)
	if err != nil {
		return receptive.Param{}, err
	}
	switch {
	case bracketed || len(vals) > 1:
		return receptive.Seq(vals...), nil
	case len(vals) == 1:
		return receptive.Scalar(vals[0]), nil
	}
	return receptive.Param{}, nil
}

// ValidateStacks checks that every stack is named uniquely and has kernel sizes.
// Layer values themselves are validated by the receptive package.
func ValidateStacks(stacks []StackSpec) error {
	if len(stacks) == 0 {
		return fmt.Errorf("no stacks defined")
	}

	seen := make(map[string]bool, len(stacks))
	for i, s := range stacks {
		if s.Name == "" {
			return fmt.Errorf("stack %d has no name", i)
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate stack name %q", s.Name)
		}
		seen[s.Name] = true

		if !s.KernelSizes.IsSet() {
			return fmt.Errorf("stack %q: kernel_sizes is required", s.Name)
		}
	}
	return nil
}
