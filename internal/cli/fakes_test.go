package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	cfntypes "github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
	smtypes "github.com/aws/aws-sdk-go-v2/service/sagemaker/types"
	"github.com/stretchr/testify/require"
)

const (
	testProjectID  = "p-abc123"
	testProjectARN = "arn:aws:sagemaker:eu-west-1:111122223333:project/churn"
	testPackageARN = "arn:aws:sagemaker:eu-west-1:111122223333:model-package/churn-p-abc123/3"
	testRoleARN    = "arn:aws:iam::111122223333:role/exec"
)

// fakeSageMaker answers every lookup for the "churn" project.
type fakeSageMaker struct {
	packages    []string
	projectErr  error
	tagsErr     error
	groups      []string
	listCalls   int
	describeArg string
}

func (f *fakeSageMaker) DescribeProject(_ context.Context, in *sagemaker.DescribeProjectInput, _ ...func(*sagemaker.Options)) (*sagemaker.DescribeProjectOutput, error) {
	f.describeArg = aws.ToString(in.ProjectName)
	if f.projectErr != nil {
		return nil, f.projectErr
	}
	return &sagemaker.DescribeProjectOutput{
		ProjectId:  aws.String(testProjectID),
		ProjectArn: aws.String(testProjectARN),
		CreatedBy:  &smtypes.UserContext{DomainId: aws.String("d-xyz")},
	}, nil
}

func (f *fakeSageMaker) DescribeDomain(_ context.Context, in *sagemaker.DescribeDomainInput, _ ...func(*sagemaker.Options)) (*sagemaker.DescribeDomainOutput, error) {
	return &sagemaker.DescribeDomainOutput{
		DefaultUserSettings: &smtypes.UserSettings{ExecutionRole: aws.String(testRoleARN)},
	}, nil
}

func (f *fakeSageMaker) ListModelPackages(_ context.Context, in *sagemaker.ListModelPackagesInput, _ ...func(*sagemaker.Options)) (*sagemaker.ListModelPackagesOutput, error) {
	f.listCalls++
	f.groups = append(f.groups, aws.ToString(in.ModelPackageGroupName))
	out := &sagemaker.ListModelPackagesOutput{}
	for _, arn := range f.packages {
		out.ModelPackageSummaryList = append(out.ModelPackageSummaryList, smtypes.ModelPackageSummary{
			ModelPackageArn: aws.String(arn),
		})
	}
	return out, nil
}

func (f *fakeSageMaker) ListTags(_ context.Context, in *sagemaker.ListTagsInput, _ ...func(*sagemaker.Options)) (*sagemaker.ListTagsOutput, error) {
	if f.tagsErr != nil {
		return nil, f.tagsErr
	}
	return &sagemaker.ListTagsOutput{
		Tags: []smtypes.Tag{{Key: aws.String("owner"), Value: aws.String("ds-team")}},
	}, nil
}

// fakeCloudFormation records stack calls. exists makes CreateStack fail with
// AlreadyExistsException.
type fakeCloudFormation struct {
	exists  bool
	creates []*cloudformation.CreateStackInput
	updates []*cloudformation.UpdateStackInput
}

func (f *fakeCloudFormation) CreateStack(_ context.Context, in *cloudformation.CreateStackInput, _ ...func(*cloudformation.Options)) (*cloudformation.CreateStackOutput, error) {
	f.creates = append(f.creates, in)
	if f.exists {
		return nil, &cfntypes.AlreadyExistsException{Message: aws.String("stack already exists")}
	}
	return &cloudformation.CreateStackOutput{StackId: aws.String("stack-id")}, nil
}

func (f *fakeCloudFormation) UpdateStack(_ context.Context, in *cloudformation.UpdateStackInput, _ ...func(*cloudformation.Options)) (*cloudformation.UpdateStackOutput, error) {
	f.updates = append(f.updates, in)
	return &cloudformation.UpdateStackOutput{StackId: aws.String("stack-id")}, nil
}

// testEnv runs commands against fake AWS clients.
type testEnv struct {
	sm       *fakeSageMaker
	cf       *fakeCloudFormation
	regions  []string
	dir      string
	ledgerDB string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	return &testEnv{
		sm:       &fakeSageMaker{packages: []string{testPackageARN, "arn:older"}},
		cf:       &fakeCloudFormation{},
		dir:      dir,
		ledgerDB: filepath.Join(dir, "seed.db"),
	}
}

func (e *testEnv) path(name string) string {
	return filepath.Join(e.dir, name)
}

func (e *testEnv) writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := e.path(name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

// run executes the root command with args and returns stdout, stderr and the
// command error.
func (e *testEnv) run(args ...string) (string, string, error) {
	opts := &RootOptions{
		Clients: func(_ context.Context, region string) (*ServiceClients, error) {
			e.regions = append(e.regions, region)
			return &ServiceClients{SageMaker: e.sm, CloudFormation: e.cf}, nil
		},
	}
	cmd := newRootCommand(opts)
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}
