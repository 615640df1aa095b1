// Package bootstrap wires runtime dependencies from configuration so
// cmd/api stays small.
package bootstrap

import (
	"context"
	"crypto/tls"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/saludgo/platform/internal/config"
	"github.com/saludgo/platform/internal/notify"
	"github.com/saludgo/platform/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when
// disabled. When verify is true, a ping is issued and failures return
// nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		return nil
	}
	return client
}

// LoadAWSConfig centralizes AWS SDK initialization so SES and SQS
// share the same LocalStack/production wiring.
func LoadAWSConfig(ctx context.Context, cfg *appconfig.Config) (aws.Config, error) {
	loaders := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.AWSRegion)}
	if strings.TrimSpace(cfg.AWSAccessKeyID) != "" && strings.TrimSpace(cfg.AWSSecretAccessKey) != "" {
		loaders = append(loaders, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return aws.Config{}, err
	}

	if endpoint := cfg.AWSEndpointOverride; endpoint != "" {
		awsCfg.EndpointResolverWithOptions = aws.EndpointResolverWithOptionsFunc(
			func(service, region string, _ ...interface{}) (aws.Endpoint, error) {
				switch service {
				case sqs.ServiceID, sesv2.ServiceID:
					return aws.Endpoint{
						URL:           endpoint,
						PartitionID:   "aws",
						SigningRegion: cfg.AWSRegion,
					}, nil
				default:
					return aws.Endpoint{}, &aws.EndpointNotFoundError{}
				}
			},
		)
	}

	return awsCfg, nil
}

// BuildEmailSender selects the email transport named by EMAIL_PROVIDER.
// Unknown or unconfigured providers fall back to the stub sender so the
// rest of the pipeline keeps working in development.
func BuildEmailSender(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) notify.EmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	switch cfg.EmailProvider {
	case "sendgrid":
		sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
		if sender != nil {
			return sender
		}
		logger.Warn("sendgrid selected but not configured, using stub sender")
	case "ses":
		awsCfg, err := LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Warn("ses selected but aws config failed, using stub sender", "error", err)
			break
		}
		sender := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SESFromName,
		}, logger)
		if sender != nil {
			return sender
		}
	}
	return notify.NewStubEmailSender(logger)
}

// BuildNotifyPipeline constructs the queue-backed notification
// pipeline: a publisher feeding the queue and a dispatcher draining it
// into the notification service. Memory queue in development, SQS in
// production.
func BuildNotifyPipeline(ctx context.Context, cfg *appconfig.Config, svc *notify.Service, logger *logging.Logger) (*notify.Publisher, *notify.Dispatcher, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.UseMemoryQueue || strings.TrimSpace(cfg.NotifyQueueURL) == "" {
		queue := notify.NewMemoryQueue(256)
		publisher := notify.NewPublisher(queue, logger)
		dispatcher := notify.NewDispatcher(queue, svc, logger).WithWorkers(cfg.WorkerCount)
		return publisher, dispatcher, nil
	}

	awsCfg, err := LoadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	queue := notify.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.NotifyQueueURL)
	publisher := notify.NewPublisher(queue, logger)
	dispatcher := notify.NewDispatcher(queue, svc, logger).WithWorkers(cfg.WorkerCount)
	return publisher, dispatcher, nil
}
