package secret

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mlops-seed/internal/platform"
)

type fakeSource struct {
	out *secretsmanager.GetSecretValueOutput
	err error
	ids []string
}

func (f *fakeSource) GetSecretValue(_ context.Context, in *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	f.ids = append(f.ids, aws.ToString(in.SecretId))
	return f.out, f.err
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"prefix:prefix:mytoken", "mytoken"},
		{"mytoken", "mytoken"},
		{`{"GitHubToken":"ghp_abc123"}`, "ghp_abc123"},
		{"{\"GitHubToken\": \"ghp_abc123\"}\n", "ghp_abc123"},
		{"a:", ""},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtractToken(tt.in), "ExtractToken(%q)", tt.in)
	}
}

func TestExtractBinaryToken(t *testing.T) {
	assert.Equal(t, "ghp_abc123", ExtractBinaryToken([]byte(`{"GitHubToken":"ghp_abc123"}`)))
	// Spaces are not part of the binary cutset.
	assert.Equal(t, ` "ghp_abc123`, ExtractBinaryToken([]byte(`{"GitHubToken": "ghp_abc123"}`)))
}

func TestResolve_String(t *testing.T) {
	src := &fakeSource{out: &secretsmanager.GetSecretValueOutput{SecretString: aws.String("prefix:prefix:mytoken")}}

	token, err := Resolve(context.Background(), src, "github-token")
	require.NoError(t, err)

	assert.Equal(t, "mytoken", token)
	assert.Equal(t, []string{"github-token"}, src.ids)
}

func TestResolve_Binary(t *testing.T) {
	src := &fakeSource{out: &secretsmanager.GetSecretValueOutput{SecretBinary: []byte(`{"token":"ghp_bin"}`)}}

	token, err := Resolve(context.Background(), src, "github-token")
	require.NoError(t, err)
	assert.Equal(t, "ghp_bin", token)
}

func TestResolve_Empty(t *testing.T) {
	src := &fakeSource{out: &secretsmanager.GetSecretValueOutput{}}

	_, err := Resolve(context.Background(), src, "github-token")
	assert.Error(t, err)
}

func TestResolve_NotFound(t *testing.T) {
	src := &fakeSource{err: &types.ResourceNotFoundException{Message: aws.String("Secrets Manager can't find the specified secret.")}}

	_, err := Resolve(context.Background(), src, "github-token")
	require.Error(t, err)

	var remote *platform.RemoteServiceError
	require.True(t, errors.As(err, &remote))
	assert.Equal(t, "ResourceNotFoundException", remote.Code)
	assert.Equal(t, "Secrets Manager can't find the specified secret.", remote.Message)
}
