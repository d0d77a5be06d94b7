package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mlops-seed/internal/stageconfig"
)

func TestMarshalCanonical(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"sorted keys", map[string]any{"b": "2", "a": "1"}, `{"a":"1","b":"2"}`},
		{"string map", map[string]string{"z": "", "StageName": "prod"}, `{"StageName":"prod","z":""}`},
		{"no html escaping", "<a&b>", `"<a&b>"`},
		{"values not normalized", "e\u0301", "\"e\u0301\""},
		{"keys normalized", map[string]any{"e\u0301": "x"}, "{\"\u00e9\":\"x\"}"},
		{"line separator literal", "a\u2028b", "\"a\u2028b\""},
		{"escaped backslash kept", `\u2028`, `"\\u2028"`},
		{"nested", map[string]any{"list": []any{"x", int64(2), true}}, `{"list":["x",2,true]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarshalCanonical(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestMarshalCanonical_UTF16Order(t *testing.T) {
	// U+10000 is the surrogate pair D800 DC00 and so sorts before U+E000,
	// the reverse of their UTF-8 byte order.
	got, err := MarshalCanonical(map[string]any{"\ue000": "a", "\U00010000": "b"})
	require.NoError(t, err)
	assert.Equal(t, "{\"\U00010000\":\"b\",\"\ue000\":\"a\"}", string(got))
}

func TestMarshalCanonical_Rejects(t *testing.T) {
	for _, v := range []any{nil, 1.5, map[string]any{"a": nil}, struct{}{}} {
		_, err := MarshalCanonical(v)
		assert.Error(t, err, "%#v", v)
	}
}

func TestMarshalCanonical_RejectsNormalizationCollision(t *testing.T) {
	_, err := MarshalCanonical(map[string]string{"\u00e9": "composed", "e\u0301": "decomposed"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collide")
}

func TestStageConfig_DistinguishesUnnormalizedValues(t *testing.T) {
	composed := &stageconfig.StageConfig{Parameters: map[string]string{"StageName": "caf\u00e9"}}
	decomposed := &stageconfig.StageConfig{Parameters: map[string]string{"StageName": "cafe\u0301"}}

	h1, err := StageConfig(composed)
	require.NoError(t, err)
	h2, err := StageConfig(decomposed)
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2, "CloudFormation receives these as different values")
}

func TestStageConfig_StableAcrossOrderAndNil(t *testing.T) {
	a := &stageconfig.StageConfig{
		Parameters: map[string]string{"StageName": "prod", "A": "1"},
	}
	b := &stageconfig.StageConfig{
		Parameters: map[string]string{"A": "1", "StageName": "prod"},
		Tags:       map[string]string{},
	}

	ha, err := StageConfig(a)
	require.NoError(t, err)
	hb, err := StageConfig(b)
	require.NoError(t, err)

	assert.Equal(t, ha, hb)
	assert.Len(t, ha, 64)
}

func TestStageConfig_DetectsChanges(t *testing.T) {
	base := &stageconfig.StageConfig{Parameters: map[string]string{"StageName": "prod"}}
	changed := &stageconfig.StageConfig{Parameters: map[string]string{"StageName": "staging"}}
	tagged := &stageconfig.StageConfig{Parameters: map[string]string{"StageName": "prod"}, Tags: map[string]string{"k": "v"}}

	h1, err := StageConfig(base)
	require.NoError(t, err)
	h2, err := StageConfig(changed)
	require.NoError(t, err)
	h3, err := StageConfig(tagged)
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
	assert.NotEqual(t, h1, h3)
}
