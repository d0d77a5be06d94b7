// Package secret resolves the GitHub token stored in Secrets Manager.
package secret

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	"github.com/roach88/mlops-seed/internal/platform"
)

// Characters trimmed from the last segment of a secret. String secrets are
// stored as JSON-ish `{"token":"..."}` blobs, so quotes, braces, spaces and a
// trailing newline may surround the token.
const (
	stringCutset = "\" }\n"
	binaryCutset = "\"}"
)

// Source is the subset of the Secrets Manager client used here.
type Source interface {
	GetSecretValue(ctx context.Context, in *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// Resolve fetches secret name and extracts the token from it.
func Resolve(ctx context.Context, src Source, name string) (string, error) {
	out, err := src.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		return "", platform.WrapRemote("GetSecretValue", err)
	}

	switch {
	case out.SecretString != nil:
		return ExtractToken(aws.ToString(out.SecretString)), nil
	case out.SecretBinary != nil:
		return ExtractBinaryToken(out.SecretBinary), nil
	}
	return "", fmt.Errorf("secret %s has no value", name)
}

// ExtractToken returns the text after the last colon of s with surrounding
// quote, brace, space and newline characters removed.
//
//	ExtractToken(`prefix:prefix:mytoken`)   == "mytoken"
//	ExtractToken(`{"github":"ghp_abc"}`)    == "ghp_abc"
func ExtractToken(s string) string {
	return strings.Trim(lastSegment(s), stringCutset)
}

// ExtractBinaryToken is ExtractToken for binary secrets, which only have quotes
// and braces trimmed. The SDK has already base64-decoded b.
func ExtractBinaryToken(b []byte) string {
	return strings.Trim(lastSegment(string(b)), binaryCutset)
}

func lastSegment(s string) string {
	if i := strings.LastIndex(s, ":"); i >= 0 {
		return s[i+1:]
	}
	return s
}
