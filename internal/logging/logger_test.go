package logging

import (
	"errors"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLevel(t *testing.T) {
	for level, expected := range map[string]logrus.Level{
		"debug":   logrus.DebugLevel,
		"ERROR":   logrus.ErrorLevel,
		"fatal":   logrus.FatalLevel,
		"info":    logrus.InfoLevel,
		"trace":   logrus.TraceLevel,
		"warn":    logrus.WarnLevel,
		"Warning": logrus.WarnLevel,
		"":        logrus.InfoLevel,
		"verbose": logrus.InfoLevel,
	} {
		assert.Equal(t, expected, GetLevel(level), level)
	}
}

func TestSentryHook_Fire(t *testing.T) {
	var events []*sentry.Event
	client, err := sentry.NewClient(sentry.ClientOptions{
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			events = append(events, event)
			// recorded, never sent
			return nil
		},
	})
	require.NoError(t, err)

	hook := NewSentryHook([]logrus.Level{logrus.ErrorLevel})
	hook.hub = sentry.NewHub(client, sentry.NewScope())
	assert.Equal(t, []logrus.Level{logrus.ErrorLevel}, hook.Levels())

	logger := logrus.New()
	logger.AddHook(hook)
	logger.WithError(errors.New("content api down")).WithField("slug", "como-utilizar-hooks").Error("get post failed")
	logger.Warn("not forwarded")

	require.Len(t, events, 1)
	event := events[0]
	assert.Equal(t, "get post failed", event.Message)
	assert.Equal(t, sentry.LevelError, event.Level)
	assert.Equal(t, "como-utilizar-hooks", event.Extra["slug"])
	require.Len(t, event.Exception, 1)
	assert.Equal(t, "content api down", event.Exception[0].Value)
}
