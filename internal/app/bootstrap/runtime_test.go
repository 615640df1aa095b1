package bootstrap

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/saludgo/platform/internal/config"
	"github.com/saludgo/platform/internal/notify"
)

func TestBuildRedisClient(t *testing.T) {
	ctx := context.Background()

	assert.Nil(t, BuildRedisClient(ctx, nil, nil, false))
	assert.Nil(t, BuildRedisClient(ctx, &appconfig.Config{}, nil, false))

	srv := miniredis.RunT(t)
	addr := srv.Addr()
	client := BuildRedisClient(ctx, &appconfig.Config{RedisAddr: addr}, nil, true)
	require.NotNil(t, client)
	defer client.Close()
	assert.NoError(t, client.Ping(ctx).Err())

	// Verified client against a dead address comes back nil.
	srv.Close()
	assert.Nil(t, BuildRedisClient(ctx, &appconfig.Config{RedisAddr: addr}, nil, true))
}

func TestBuildEmailSenderFallsBackToStub(t *testing.T) {
	ctx := context.Background()

	sender := BuildEmailSender(ctx, &appconfig.Config{EmailProvider: "stub"}, nil)
	_, ok := sender.(*notify.StubEmailSender)
	assert.True(t, ok)

	// SendGrid without an API key degrades to the stub.
	sender = BuildEmailSender(ctx, &appconfig.Config{EmailProvider: "sendgrid"}, nil)
	_, ok = sender.(*notify.StubEmailSender)
	assert.True(t, ok)
}

func TestBuildEmailSenderSendGrid(t *testing.T) {
	sender := BuildEmailSender(context.Background(), &appconfig.Config{
		EmailProvider:     "sendgrid",
		SendGridAPIKey:    "SG.test",
		SendGridFromEmail: "no-reply@saludgo.local",
	}, nil)
	_, ok := sender.(*notify.SendGridSender)
	assert.True(t, ok)
}

func TestBuildNotifyPipelineMemoryQueue(t *testing.T) {
	svc := notify.NewService(notify.NewStubEmailSender(nil), nil, "", nil)
	publisher, dispatcher, err := BuildNotifyPipeline(context.Background(), &appconfig.Config{
		UseMemoryQueue: true,
		WorkerCount:    2,
	}, svc, nil)
	require.NoError(t, err)
	assert.NotNil(t, publisher)
	assert.NotNil(t, dispatcher)
}
