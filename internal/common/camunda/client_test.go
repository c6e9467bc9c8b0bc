package camunda

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-workers/internal/common/errors"
)

func retryTestClient() *Client {
	return &Client{
		config: &ClientConfig{
			ConnectionTimeout: time.Second,
			RetryConfig: &RetryConfig{
				MaxRetries: 3,
				BaseDelay:  time.Millisecond,
				MaxDelay:   5 * time.Millisecond,
			},
		},
	}
}

func TestExecuteWithRetry_SucceedsAfterTransientFailures(t *testing.T) {
	c := retryTestClient()

	attempts := 0
	result, err := c.ExecuteWithRetry(context.Background(), func(ctx context.Context) (interface{}, error) {
		attempts++
		if attempts < 3 {
			return nil, stderrors.New("connection refused")
		}
		return "ok", nil
	}, "create-instance")

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, attempts)
}

func TestExecuteWithRetry_NonRetryableFailsImmediately(t *testing.T) {
	c := retryTestClient()

	attempts := 0
	_, err := c.ExecuteWithRetry(context.Background(), func(ctx context.Context) (interface{}, error) {
		attempts++
		return nil, stderrors.New("element not found")
	}, "publish-message")

	require.Error(t, err)
	assert.Equal(t, 1, attempts)

	var stdErr *errors.StandardError
	require.True(t, stderrors.As(err, &stdErr))
	assert.Equal(t, errors.ErrCodeExternalService, stdErr.Code)
}

func TestExecuteWithRetry_ExhaustsRetriesOnTimeout(t *testing.T) {
	c := retryTestClient()

	attempts := 0
	_, err := c.ExecuteWithRetry(context.Background(), func(ctx context.Context) (interface{}, error) {
		attempts++
		return nil, stderrors.New("deadline exceeded")
	}, "set-variables")

	require.Error(t, err)
	assert.Equal(t, c.config.RetryConfig.MaxRetries+1, attempts)

	var stdErr *errors.StandardError
	require.True(t, stderrors.As(err, &stdErr))
	assert.Equal(t, errors.ErrCodeTimeout, stdErr.Code)
}

func TestExecuteWithRetry_StopsOnContextCancel(t *testing.T) {
	c := retryTestClient()
	c.config.RetryConfig.BaseDelay = time.Second

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ExecuteWithRetry(ctx, func(ctx context.Context) (interface{}, error) {
		return nil, stderrors.New("broker unavailable")
	}, "resolve-incident")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsRetryableZeebeError(t *testing.T) {
	cases := []struct {
		msg       string
		retryable bool
	}{
		{"connection refused", true},
		{"rpc error: code = Unavailable", true},
		{"context deadline exceeded", true},
		{"broken pipe", true},
		{"invalid variables payload", false},
		{"process definition not found", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.retryable, isRetryableZeebeError(stderrors.New(tc.msg)), tc.msg)
	}
}
