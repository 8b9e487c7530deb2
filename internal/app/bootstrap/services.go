package bootstrap

import (
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/wolfman30/orbit-landing/internal/analytics"
	"github.com/wolfman30/orbit-landing/internal/blob"
	appconfig "github.com/wolfman30/orbit-landing/internal/config"
	"github.com/wolfman30/orbit-landing/internal/notify"
	"github.com/wolfman30/orbit-landing/pkg/logging"
)

// BuildEmailSender picks the provider named by EMAIL_PROVIDER, falling back
// to the stub when the provider is missing its credentials.
func BuildEmailSender(cfg *appconfig.Config, awsCfg *aws.Config, logger *logging.Logger) notify.EmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg == nil {
		return notify.NewStubEmailSender(logger)
	}
	switch cfg.EmailProvider {
	case "sendgrid":
		if sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger); sender != nil {
			return sender
		}
		logger.Warn("EMAIL_PROVIDER=sendgrid but SENDGRID_API_KEY is empty; using stub sender")
	case "ses":
		if awsCfg != nil && strings.TrimSpace(cfg.SESFromEmail) != "" {
			return notify.NewSESSender(sesv2.NewFromConfig(*awsCfg), notify.SESConfig{
				FromEmail: cfg.SESFromEmail,
				FromName:  cfg.SESFromName,
			}, logger)
		}
		logger.Warn("EMAIL_PROVIDER=ses but SES is not configured; using stub sender")
	}
	return notify.NewStubEmailSender(logger)
}

// BuildAnalyticsSink sends events to SQS when ANALYTICS_QUEUE_URL is set and
// logs them otherwise.
func BuildAnalyticsSink(cfg *appconfig.Config, awsCfg *aws.Config, logger *logging.Logger) analytics.Sink {
	if cfg != nil && awsCfg != nil && strings.TrimSpace(cfg.AnalyticsQueueURL) != "" {
		return analytics.NewSQSSink(sqs.NewFromConfig(*awsCfg), cfg.AnalyticsQueueURL, logger)
	}
	return analytics.NewLogSink(logger)
}

// BuildAvatarStore writes to S3 when AVATAR_BUCKET is set and keeps avatars
// in memory otherwise.
func BuildAvatarStore(cfg *appconfig.Config, awsCfg *aws.Config, logger *logging.Logger) blob.Store {
	if cfg == nil {
		return blob.NewMemoryStore("")
	}
	if awsCfg == nil || strings.TrimSpace(cfg.AvatarBucket) == "" {
		return blob.NewMemoryStore(cfg.AvatarPublicBaseURL)
	}
	client := s3.NewFromConfig(*awsCfg, func(o *s3.Options) {
		// LocalStack serves buckets by path, not virtual host.
		o.UsePathStyle = cfg.AWSEndpointOverride != ""
	})
	return blob.NewS3Store(client, cfg.AvatarBucket, awsCfg.Region, cfg.AvatarPublicBaseURL, logger)
}
