package cli

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"

	"github.com/roach88/mlops-seed/internal/platform"
	"github.com/roach88/mlops-seed/internal/stack"
)

// ServiceClients are the AWS APIs a command talks to.
type ServiceClients struct {
	SageMaker      platform.API
	CloudFormation stack.API
}

// ClientFactory builds ServiceClients for a region.
type ClientFactory func(ctx context.Context, region string) (*ServiceClients, error)

// DefaultClients resolves credentials through the default AWS chain.
func DefaultClients(ctx context.Context, region string) (*ServiceClients, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return &ServiceClients{
		SageMaker:      sagemaker.NewFromConfig(cfg),
		CloudFormation: cloudformation.NewFromConfig(cfg),
	}, nil
}
