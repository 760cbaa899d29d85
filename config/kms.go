package config

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/kms"

	"github.com/poofware/go-apikit"
)

// Decrypter turns an encrypted configuration value back into plaintext.
type Decrypter interface {
	Decrypt(ctx context.Context, ciphertext string) (string, error)
}

// KMSAPI is the slice of the KMS client used here, extracted so tests can
// fake it.
type KMSAPI interface {
	Decrypt(ctx context.Context, params *kms.DecryptInput, optFns ...func(*kms.Options)) (*kms.DecryptOutput, error)
}

// KMSDecrypter decrypts base64-encoded KMS ciphertext blobs, the format the
// deploy tooling stores encrypted variables in.
type KMSDecrypter struct {
	api KMSAPI
}

// NewKMSDecrypter builds a KMSDecrypter from the default AWS configuration,
// with region and credentials coming from the Lambda environment.
func NewKMSDecrypter(ctx context.Context) (*KMSDecrypter, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: loading aws config: %v", apikit.ErrExternalServiceFailure, err)
	}
	return NewKMSDecrypterFromConfig(cfg), nil
}

// NewKMSDecrypterFromConfig builds a KMSDecrypter on an existing AWS
// configuration.
func NewKMSDecrypterFromConfig(cfg aws.Config) *KMSDecrypter {
	return &KMSDecrypter{api: kms.NewFromConfig(cfg)}
}

// NewKMSDecrypterFromAPI wires an existing KMS client, real or fake.
func NewKMSDecrypterFromAPI(api KMSAPI) *KMSDecrypter {
	return &KMSDecrypter{api: api}
}

// Decrypt base64-decodes ciphertext and asks KMS for the plaintext.
func (d *KMSDecrypter) Decrypt(ctx context.Context, ciphertext string) (string, error) {
	blob, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("ciphertext is not valid base64: %w", err)
	}

	out, err := d.api.Decrypt(ctx, &kms.DecryptInput{CiphertextBlob: blob})
	if err != nil {
		apikit.Logger.WithError(err).Error("KMS decryption failed")
		return "", fmt.Errorf("%w: failed to decrypt via kms: %v", apikit.ErrExternalServiceFailure, err)
	}
	return string(out.Plaintext), nil
}

// EncryptedEnvVar reads the named environment variable, which holds base64
// KMS ciphertext, and decrypts it with d. A missing variable fails the same
// way EnvVar does.
func EncryptedEnvVar(ctx context.Context, name string, d Decrypter) (string, error) {
	ciphertext, err := EnvVar(name)
	if err != nil {
		return "", err
	}
	return d.Decrypt(ctx, ciphertext)
}

// ConnectionStringName is the conventional variable holding a service's
// encrypted datastore connection string.
const ConnectionStringName = "CONNECTION_STRING"

// ConnectionString reads and decrypts the conventional connection-string
// variable.
func ConnectionString(ctx context.Context, d Decrypter) (string, error) {
	return EncryptedEnvVar(ctx, ConnectionStringName, d)
}
