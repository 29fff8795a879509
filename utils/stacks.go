package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"rfield/receptive"

	"gopkg.in/yaml.v3"
)

// ParamValue is a receptive.Param that serializes as an integer or a list.
type ParamValue struct {
	receptive.Param
}

// StackSpec is one named layer stack in a stack file.
type StackSpec struct {
	Name        string     `json:"name" yaml:"name"`
	KernelSizes ParamValue `json:"kernel_sizes" yaml:"kernel_sizes"`
	Dilations   ParamValue `json:"dilations" yaml:"dilations,omitempty"`
	Strides     ParamValue `json:"strides" yaml:"strides,omitempty"`
	Layers      int        `json:"layers,omitempty" yaml:"layers,omitempty"`
}

// StackFile is the on-disk format.
type StackFile struct {
	Version string      `json:"version" yaml:"version"`
	Stacks  []StackSpec `json:"stacks" yaml:"stacks"`
}

// Config converts the spec into a receptive.Config.
func (s StackSpec) Config() receptive.Config {
	return receptive.Config{
		KernelSizes: s.KernelSizes.Param,
		Dilations:   s.Dilations.Param,
		Strides:     s.Strides.Param,
		Layers:      s.Layers,
	}
}

func (v ParamValue) value() interface{} {
	switch {
	case v.IsSeq():
		return v.Values()
	case v.IsSet():
		return v.Values()[0]
	}
	return nil
}

func (v ParamValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.value())
}

func (v *ParamValue) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		v.Param = receptive.Scalar(n)
		return nil
	}
	var list []int
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("expected an integer or a list of integers, got %s", data)
	}
	v.Param = receptive.Seq(list...)
	return nil
}

func (v ParamValue) IsZero() bool { return !v.IsSet() }

func (v ParamValue) MarshalYAML() (interface{}, error) {
	return v.value(), nil
}

func (v *ParamValue) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return nil
		}
		var n int
		if err := node.Decode(&n); err != nil {
			return fmt.Errorf("line %d: expected an integer: %w", node.Line, err)
		}
		v.Param = receptive.Scalar(n)
	case yaml.SequenceNode:
		var list []int
		if err := node.Decode(&list); err != nil {
			return fmt.Errorf("line %d: expected a list of integers: %w", node.Line, err)
		}
		v.Param = receptive.Seq(list...)
	default:
		return fmt.Errorf("line %d: expected an integer or a list of integers", node.Line)
	}
	return nil
}

type codec struct {
	marshal   func(interface{}) ([]byte, error)
	unmarshal func([]byte, interface{}) error
}

func codecFor(path string) (codec, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return codec{
			marshal:   func(v interface{}) ([]byte, error) { return json.MarshalIndent(v, "", "  ") },
			unmarshal: json.Unmarshal,
		}, nil
	case ".yaml", ".yml":
		return codec{marshal: yaml.Marshal, unmarshal: yaml.Unmarshal}, nil
	}
	return codec{}, fmt.Errorf("unsupported stack file extension %q (want .json, .yaml or .yml)", filepath.Ext(path))
}

// SaveStacks saves stacks to a JSON or YAML file, chosen by extension.
func SaveStacks(path string, file *StackFile) error {
	c, err := codecFor(path)
	if err != nil {
		return err
	}
	data, err := c.marshal(file)
	if err != nil {
		return fmt.Errorf("failed to marshal stacks: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// LoadStacks loads and validates stacks from a JSON or YAML file.
func LoadStacks(path string) (*StackFile, error) {
	c, err := codecFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read stack file: %w", err)
	}
	var file StackFile
	if err := c.unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stacks: %w", err)
	}
	if err := ValidateStacks(file.Stacks); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &file, nil
}
