// Package secrets fetches secret values from a remote secret-management
// service. The AWS Secrets Manager client is hidden behind the Fetcher
// interface so callers and tests can swap in other backends.
package secrets

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// ErrNoStringValue is returned when a secret exists but carries no string
// payload (binary-only secrets).
var ErrNoStringValue = errors.New("secret has no string value")

// Fetcher retrieves a named secret's string payload.
type Fetcher interface {
	GetSecretString(ctx context.Context, name string) (string, error)
}

// api is the slice of the Secrets Manager client we depend on.
type api interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// Client fetches secrets from AWS Secrets Manager.
type Client struct {
	api api
}

// NewClient creates a Secrets Manager client for the given region using the
// default AWS credential chain.
func NewClient(ctx context.Context, region string) (*Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	return &Client{api: secretsmanager.NewFromConfig(cfg)}, nil
}

// GetSecretString fetches the secret's string payload. Secret values are
// never logged.
func (c *Client) GetSecretString(ctx context.Context, name string) (string, error) {
	out, err := c.api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		return "", fmt.Errorf("failed to fetch secret %q: %w", name, err)
	}
	if out.SecretString == nil {
		return "", fmt.Errorf("secret %q: %w", name, ErrNoStringValue)
	}
	return *out.SecretString, nil
}
