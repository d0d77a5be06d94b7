// Package cfn converts stage configurations into the flat key/value lists that
// CloudFormation expects for stack parameters and tags.
package cfn

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"

	"github.com/roach88/mlops-seed/internal/stageconfig"
)

// Parameter is one CloudFormation stack parameter.
type Parameter struct {
	ParameterKey   string `json:"ParameterKey"`
	ParameterValue string `json:"ParameterValue"`
}

// Tag is one CloudFormation stack tag.
type Tag struct {
	Key   string `json:"Key"`
	Value string `json:"Value"`
}

// ParameterList is the --parameters form of a stage's parameters.
type ParameterList []Parameter

// TagList is the --tags form of a stage's tags.
type TagList []Tag

// Shape flattens cfg into parameter and tag lists, each sorted by key.
// Keys are unique by construction, so nothing is validated or deduplicated.
func Shape(cfg *stageconfig.StageConfig) (ParameterList, TagList) {
	params := make(ParameterList, 0, len(cfg.Parameters))
	for k, v := range cfg.Parameters {
		params = append(params, Parameter{ParameterKey: k, ParameterValue: v})
	}
	slices.SortFunc(params, func(a, b Parameter) int {
		return strings.Compare(a.ParameterKey, b.ParameterKey)
	})

	tags := make(TagList, 0, len(cfg.Tags))
	for k, v := range cfg.Tags {
		tags = append(tags, Tag{Key: k, Value: v})
	}
	slices.SortFunc(tags, func(a, b Tag) int {
		return strings.Compare(a.Key, b.Key)
	})

	return params, tags
}

// Map rebuilds the parameter mapping.
func (l ParameterList) Map() map[string]string {
	m := make(map[string]string, len(l))
	for _, p := range l {
		m[p.ParameterKey] = p.ParameterValue
	}
	return m
}

// Map rebuilds the tag mapping.
func (l TagList) Map() map[string]string {
	m := make(map[string]string, len(l))
	for _, t := range l {
		m[t.Key] = t.Value
	}
	return m
}

// SDK converts the list for CreateStack/UpdateStack. Every parameter is sent
// with an explicit value, never UsePreviousValue.
func (l ParameterList) SDK() []types.Parameter {
	out := make([]types.Parameter, len(l))
	for i, p := range l {
		out[i] = types.Parameter{
			ParameterKey:     aws.String(p.ParameterKey),
			ParameterValue:   aws.String(p.ParameterValue),
			UsePreviousValue: aws.Bool(false),
		}
	}
	return out
}

// SDK converts the list for CreateStack/UpdateStack.
func (l TagList) SDK() []types.Tag {
	out := make([]types.Tag, len(l))
	for i, t := range l {
		out[i] = types.Tag{Key: aws.String(t.Key), Value: aws.String(t.Value)}
	}
	return out
}

// WriteExports writes the shaped parameter and tag lists of cfg to two JSON files
// suitable for `aws cloudformation create-stack --parameters file://... --tags file://...`.
func WriteExports(cfg *stageconfig.StageConfig, paramsPath, tagsPath string) error {
	params, tags := Shape(cfg)
	if err := stageconfig.WriteJSON(paramsPath, params); err != nil {
		return fmt.Errorf("export parameters: %w", err)
	}
	if err := stageconfig.WriteJSON(tagsPath, tags); err != nil {
		return fmt.Errorf("export tags: %w", err)
	}
	return nil
}
