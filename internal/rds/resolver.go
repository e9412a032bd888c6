// Package rds resolves connection outputs of an existing managed MySQL
// instance. It does not provision the instance; that is owned by the
// database stack.
package rds

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsrds "github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/charmbracelet/log"

	"github.com/zenml-io/zendeploy/internal/config"
)

// Outputs are the connection outputs of the managed database instance.
type Outputs struct {
	Username string
	Password string
	Address  string
}

// DescribeDBInstancesAPI is the slice of the RDS API the resolver needs.
type DescribeDBInstancesAPI interface {
	DescribeDBInstances(ctx context.Context, params *awsrds.DescribeDBInstancesInput, optFns ...func(*awsrds.Options)) (*awsrds.DescribeDBInstancesOutput, error)
}

// Resolver reads instance outputs through the RDS API. The master password
// is not readable through the API and is carried from the config instead.
type Resolver struct {
	api        DescribeDBInstancesAPI
	instanceID string
	password   string
}

// NewResolver creates a Resolver using the default AWS credential chain.
func NewResolver(ctx context.Context, cfg config.RDSConfig) (*Resolver, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Resolver{
		api:        awsrds.NewFromConfig(awsCfg),
		instanceID: cfg.InstanceID,
		password:   cfg.Password,
	}, nil
}

// NewResolverWithAPI wires an explicit API implementation. Used by tests.
func NewResolverWithAPI(api DescribeDBInstancesAPI, instanceID, password string) *Resolver {
	return &Resolver{api: api, instanceID: instanceID, password: password}
}

// Outputs resolves the instance's address and master username.
func (r *Resolver) Outputs(ctx context.Context) (*Outputs, error) {
	out, err := r.api.DescribeDBInstances(ctx, &awsrds.DescribeDBInstancesInput{
		DBInstanceIdentifier: aws.String(r.instanceID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe DB instance %s: %w", r.instanceID, err)
	}

	if len(out.DBInstances) == 0 {
		return nil, fmt.Errorf("DB instance %s not found", r.instanceID)
	}

	instance := out.DBInstances[0]
	if instance.Endpoint == nil || aws.ToString(instance.Endpoint.Address) == "" {
		return nil, fmt.Errorf("DB instance %s has no endpoint yet (status %s)",
			r.instanceID, aws.ToString(instance.DBInstanceStatus))
	}

	log.Debug("Resolved managed database instance",
		"instance", r.instanceID,
		"address", aws.ToString(instance.Endpoint.Address))

	return &Outputs{
		Username: aws.ToString(instance.MasterUsername),
		Password: r.password,
		Address:  aws.ToString(instance.Endpoint.Address),
	}, nil
}
