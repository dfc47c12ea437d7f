package secrets

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// secretsManagerAPI is the subset of *secretsmanager.Client used here.
type secretsManagerAPI interface {
	GetSecretValue(ctx context.Context, in *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// AWSSecretsManagerProvider implements Provider using AWS Secrets Manager.
// The secret must be a JSON object carrying CLIENTID and/or BLSECRET.
type AWSSecretsManagerProvider struct {
	client     secretsManagerAPI
	secretName string
}

// NewAWSProvider creates a new AWS Secrets Manager provider for the given region and secret.
func NewAWSProvider(ctx context.Context, region, secretName string) (*AWSSecretsManagerProvider, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &AWSSecretsManagerProvider{
		client:     secretsmanager.NewFromConfig(cfg),
		secretName: secretName,
	}, nil
}

func (p *AWSSecretsManagerProvider) Name() string { return "aws-secretsmanager" }

func (p *AWSSecretsManagerProvider) Lookup(ctx context.Context) (Credentials, error) {
	m, err := p.GetSecret(ctx, p.secretName)
	if err != nil {
		return Credentials{}, err
	}
	return Credentials{ClientID: m[EnvClientID], Secret: m[EnvSecret]}, nil
}

// GetSecret fetches and decodes a secret value from AWS Secrets Manager.
func (p *AWSSecretsManagerProvider) GetSecret(ctx context.Context, key string) (map[string]string, error) {
	out, err := p.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch secret [%s]: %w", key, err)
	}
	if out.SecretString == nil {
		return nil, fmt.Errorf("secret [%s] has no string value", key)
	}

	var result map[string]string
	if err := json.Unmarshal([]byte(*out.SecretString), &result); err != nil {
		return nil, fmt.Errorf("invalid secret format for [%s]: %w", key, err)
	}
	return result, nil
}
