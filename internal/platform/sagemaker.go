// Package platform resolves project, model package and role information from the
// SageMaker control plane.
package platform

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker/types"
)

// pageSize is the ListModelPackages page size.
const pageSize = 100

// API is the subset of the SageMaker client used here.
type API interface {
	DescribeProject(ctx context.Context, in *sagemaker.DescribeProjectInput, optFns ...func(*sagemaker.Options)) (*sagemaker.DescribeProjectOutput, error)
	DescribeDomain(ctx context.Context, in *sagemaker.DescribeDomainInput, optFns ...func(*sagemaker.Options)) (*sagemaker.DescribeDomainOutput, error)
	ListModelPackages(ctx context.Context, in *sagemaker.ListModelPackagesInput, optFns ...func(*sagemaker.Options)) (*sagemaker.ListModelPackagesOutput, error)
	ListTags(ctx context.Context, in *sagemaker.ListTagsInput, optFns ...func(*sagemaker.Options)) (*sagemaker.ListTagsOutput, error)
}

// Project identifies a SageMaker project.
type Project struct {
	Name     string
	ID       string
	ARN      string
	DomainID string
}

// Client answers the lookups the seed commands need.
type Client struct {
	api    API
	logger *slog.Logger
}

// New wraps api.
func New(api API, logger *slog.Logger) *Client {
	return &Client{api: api, logger: logger}
}

// DefaultModelPackageGroup is the group name used when none is given.
func DefaultModelPackageGroup(project Project) string {
	return fmt.Sprintf("%s-%s", project.Name, project.ID)
}

// DescribeProject looks up a project by name.
func (c *Client) DescribeProject(ctx context.Context, name string) (Project, error) {
	out, err := c.api.DescribeProject(ctx, &sagemaker.DescribeProjectInput{
		ProjectName: aws.String(name),
	})
	if err != nil {
		return Project{}, WrapRemote("DescribeProject", err)
	}

	p := Project{
		Name: name,
		ID:   aws.ToString(out.ProjectId),
		ARN:  aws.ToString(out.ProjectArn),
	}
	if out.CreatedBy != nil {
		p.DomainID = aws.ToString(out.CreatedBy.DomainId)
	}
	c.logger.Debug("described project", "project", name, "project_id", p.ID, "domain_id", p.DomainID)
	return p, nil
}

// ExecutionRole returns the default execution role of a SageMaker domain.
func (c *Client) ExecutionRole(ctx context.Context, domainID string) (string, error) {
	out, err := c.api.DescribeDomain(ctx, &sagemaker.DescribeDomainInput{
		DomainId: aws.String(domainID),
	})
	if err != nil {
		return "", WrapRemote("DescribeDomain", err)
	}
	if out.DefaultUserSettings == nil || aws.ToString(out.DefaultUserSettings.ExecutionRole) == "" {
		return "", &RemoteServiceError{Op: "DescribeDomain", Message: fmt.Sprintf("domain %s has no default execution role", domainID)}
	}
	return aws.ToString(out.DefaultUserSettings.ExecutionRole), nil
}

// LatestApprovedPackage returns the ARN of the most recently created approved
// model package in group.
//
// Pages are fetched only while nothing has been found yet and the service
// returned a continuation token, so k empty leading pages cost k+1 calls.
func (c *Client) LatestApprovedPackage(ctx context.Context, group string) (string, error) {
	in := &sagemaker.ListModelPackagesInput{
		ModelPackageGroupName: aws.String(group),
		ModelApprovalStatus:   types.ModelApprovalStatusApproved,
		SortBy:                types.ModelPackageSortByCreationTime,
		SortOrder:             types.SortOrderDescending,
		MaxResults:            aws.Int32(pageSize),
	}

	out, err := c.api.ListModelPackages(ctx, in)
	if err != nil {
		return "", WrapRemote("ListModelPackages", err)
	}
	approved := out.ModelPackageSummaryList

	for len(approved) == 0 && aws.ToString(out.NextToken) != "" {
		c.logger.Debug("getting more packages", "next_token", aws.ToString(out.NextToken))
		in.NextToken = out.NextToken
		out, err = c.api.ListModelPackages(ctx, in)
		if err != nil {
			return "", WrapRemote("ListModelPackages", err)
		}
		approved = append(approved, out.ModelPackageSummaryList...)
	}

	if len(approved) == 0 {
		c.logger.Error("no approved ModelPackage found", "group", group)
		return "", &NoApprovedPackageError{Group: group}
	}

	arn := aws.ToString(approved[0].ModelPackageArn)
	c.logger.Debug("identified the latest approved model package", "arn", arn)
	return arn, nil
}

// ProjectTags lists every tag on the project resource.
func (c *Client) ProjectTags(ctx context.Context, projectARN string) (map[string]string, error) {
	tags := map[string]string{}
	in := &sagemaker.ListTagsInput{ResourceArn: aws.String(projectARN)}
	for {
		out, err := c.api.ListTags(ctx, in)
		if err != nil {
			return nil, WrapRemote("ListTags", err)
		}
		for _, t := range out.Tags {
			tags[aws.ToString(t.Key)] = aws.ToString(t.Value)
		}
		if aws.ToString(out.NextToken) == "" {
			return tags, nil
		}
		in.NextToken = out.NextToken
	}
}
