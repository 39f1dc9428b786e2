package smtp

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	sesv2 "github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// SESConfig selects the region and, optionally, static credentials. Without
// keys the default AWS credential chain is used.
type SESConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// SendEmailAPI is the SES v2 call the submitter needs.
type SendEmailAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESSubmitter submits raw MIME messages through AWS SES v2.
type SESSubmitter struct {
	client SendEmailAPI
}

// NewSESSubmitter loads AWS configuration for cfg.
func NewSESSubmitter(ctx context.Context, cfg SESConfig) (*SESSubmitter, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewSESSubmitterWithClient(sesv2.NewFromConfig(awsCfg)), nil
}

// NewSESSubmitterWithClient wraps an existing client.
func NewSESSubmitterWithClient(client SendEmailAPI) *SESSubmitter {
	return &SESSubmitter{client: client}
}

// Submit sends the raw message to every envelope recipient and returns the
// SES message id.
func (s *SESSubmitter) Submit(ctx context.Context, env Envelope, msg []byte) (string, error) {
	out, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(env.From),
		Destination:      &types.Destination{ToAddresses: env.Recipients},
		Content: &types.EmailContent{
			Raw: &types.RawMessage{Data: msg},
		},
	})
	if err != nil {
		return "", fmt.Errorf("SES API request failed: %w", err)
	}
	return aws.ToString(out.MessageId), nil
}
