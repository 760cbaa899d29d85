package config

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	"github.com/poofware/go-apikit"
)

// SecretsAPI is the slice of the Secrets Manager client used here,
// extracted so tests can fake it.
type SecretsAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// SecretsClient fetches service secrets from AWS Secrets Manager.
type SecretsClient struct {
	api SecretsAPI
}

// NewSecretsClient builds a SecretsClient from the default AWS
// configuration.
func NewSecretsClient(ctx context.Context) (*SecretsClient, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: loading aws config: %v", apikit.ErrExternalServiceFailure, err)
	}
	return &SecretsClient{api: secretsmanager.NewFromConfig(cfg)}, nil
}

// NewSecretsClientFromAPI wires an existing Secrets Manager client, real or
// fake.
func NewSecretsClientFromAPI(api SecretsAPI) *SecretsClient {
	return &SecretsClient{api: api}
}

// GetSecrets retrieves the named secret and parses its secret string as a
// flat JSON object, returning secretName -> secretValue. Each service
// stores one JSON object, so all of its sub-secrets arrive in a single
// fetch.
func (c *SecretsClient) GetSecrets(ctx context.Context, secretID string) (map[string]string, error) {
	out, err := c.api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		apikit.Logger.WithError(err).Errorf("Failed to fetch secret '%s' from Secrets Manager", secretID)
		return nil, fmt.Errorf("%w: fetching secret '%s': %v", apikit.ErrExternalServiceFailure, secretID, err)
	}
	if out.SecretString == nil || *out.SecretString == "" {
		err := fmt.Errorf("secret '%s' has no string value", secretID)
		apikit.Logger.WithError(err).Error("GetSecrets found an unusable secret")
		return nil, err
	}

	var parsed map[string]string
	if err := json.Unmarshal([]byte(*out.SecretString), &parsed); err != nil {
		apikit.Logger.WithError(err).Error("GetSecrets could not parse the secret string")
		return nil, fmt.Errorf("parsing secret '%s' as JSON: %w", secretID, err)
	}
	return parsed, nil
}
