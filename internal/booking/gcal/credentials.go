package gcal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

var (
	// ErrNoCredentials means no credential document was configured.
	ErrNoCredentials = errors.New("gcal: credentials not configured")
	// ErrMalformedCredentials means the document is not valid JSON.
	ErrMalformedCredentials = errors.New("gcal: credentials are not valid json")
	// ErrNotServiceAccount means the JSON lacks service account fields.
	ErrNotServiceAccount = errors.New("gcal: credentials are not a service account key")
)

// CredentialSource yields the service account JSON document.
type CredentialSource interface {
	Load(ctx context.Context) (string, error)
}

// StaticSource serves a document already in memory, usually the
// GOOGLE_APPLICATION_CREDENTIALS_JSON environment variable.
type StaticSource string

// Load returns the document or ErrNoCredentials when it is blank.
func (s StaticSource) Load(context.Context) (string, error) {
	if strings.TrimSpace(string(s)) == "" {
		return "", ErrNoCredentials
	}
	return string(s), nil
}

type ssmAPI interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// SSMSource reads the document from an SSM SecureString parameter.
type SSMSource struct {
	client ssmAPI
	name   string
}

// NewSSMSource creates a source reading parameter name.
func NewSSMSource(client ssmAPI, name string) *SSMSource {
	return &SSMSource{client: client, name: strings.TrimSpace(name)}
}

// Load fetches and decrypts the parameter.
func (s *SSMSource) Load(ctx context.Context) (string, error) {
	if s == nil || s.client == nil || s.name == "" {
		return "", ErrNoCredentials
	}
	out, err := s.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(s.name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("gcal: get ssm parameter %s: %w", s.name, err)
	}
	if out.Parameter == nil || strings.TrimSpace(aws.ToString(out.Parameter.Value)) == "" {
		return "", ErrNoCredentials
	}
	return aws.ToString(out.Parameter.Value), nil
}

// serviceAccountKey holds the fields of a Google service account key file.
type serviceAccountKey struct {
	Type         string `json:"type"`
	ProjectID    string `json:"project_id"`
	PrivateKeyID string `json:"private_key_id"`
	PrivateKey   string `json:"private_key"`
	ClientEmail  string `json:"client_email"`
	TokenURI     string `json:"token_uri"`
}

// parseServiceAccount decodes and validates a key document. Keys pasted into
// environment variables often arrive double escaped, leaving a literal "\n" in
// the PEM block after decoding.
func parseServiceAccount(raw string) (serviceAccountKey, error) {
	var key serviceAccountKey
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &key); err != nil {
		return serviceAccountKey{}, fmt.Errorf("%w: %v", ErrMalformedCredentials, err)
	}
	key.PrivateKey = strings.ReplaceAll(key.PrivateKey, `\n`, "\n")
	if key.Type != "service_account" || key.ClientEmail == "" || key.PrivateKey == "" {
		return serviceAccountKey{}, fmt.Errorf("%w: type=%q client_email set=%t private_key set=%t",
			ErrNotServiceAccount, key.Type, key.ClientEmail != "", key.PrivateKey != "")
	}
	return key, nil
}
