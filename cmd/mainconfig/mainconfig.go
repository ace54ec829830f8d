package mainconfig

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ssm"

	"github.com/wolfman30/whatsauto-webhook/internal/booking/gcal"
	appconfig "github.com/wolfman30/whatsauto-webhook/internal/config"
	"github.com/wolfman30/whatsauto-webhook/pkg/logging"
)

// LoadAWSConfig centralizes AWS SDK initialization so both binaries share the
// same LocalStack/production wiring.
func LoadAWSConfig(ctx context.Context, cfg *appconfig.Config) (aws.Config, error) {
	loaders := []func(*config.LoadOptions) error{config.WithRegion(cfg.AWSRegion)}
	if strings.TrimSpace(cfg.AWSAccessKeyID) != "" && strings.TrimSpace(cfg.AWSSecretAccessKey) != "" {
		loaders = append(loaders, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return aws.Config{}, err
	}

	if endpoint := cfg.AWSEndpointOverride; endpoint != "" {
		awsCfg.EndpointResolverWithOptions = aws.EndpointResolverWithOptionsFunc(
			func(service, region string, _ ...interface{}) (aws.Endpoint, error) {
				if service == ssm.ServiceID {
					return aws.Endpoint{
						URL:           endpoint,
						PartitionID:   "aws",
						SigningRegion: cfg.AWSRegion,
					}, nil
				}
				return aws.Endpoint{}, &aws.EndpointNotFoundError{}
			},
		)
	}

	return awsCfg, nil
}

// CredentialSource picks where the Google service account key comes from: SSM
// when GOOGLE_CREDENTIALS_SSM_PARAM is set, the environment otherwise.
func CredentialSource(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (gcal.CredentialSource, error) {
	if logger == nil {
		logger = logging.Default()
	}
	param := strings.TrimSpace(cfg.GoogleCredentialsSSMParam)
	if param == "" {
		return gcal.StaticSource(cfg.GoogleCredentials), nil
	}

	awsCfg, err := LoadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("google credentials will be read from ssm", "parameter", param, "region", cfg.AWSRegion)
	return gcal.NewSSMSource(ssm.NewFromConfig(awsCfg), param), nil
}
