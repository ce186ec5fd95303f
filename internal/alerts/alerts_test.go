package alerts

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/common/config"
	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/common/logger"
	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/models"
)

type fakeSNS struct {
	mu       sync.Mutex
	messages []string
}

func (f *fakeSNS) Publish(_ context.Context, input *sns.PublishInput) (*sns.PublishOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, *input.Message)
	return &sns.PublishOutput{}, nil
}

type fakeSES struct {
	mu    sync.Mutex
	sends int
}

func (f *fakeSES) SendEmail(_ context.Context, _ *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends++
	return &ses.SendEmailOutput{}, nil
}

func alertsCfg() config.AlertsConfig {
	return config.AlertsConfig{
		Enabled:      true,
		Region:       "ap-south-1",
		FromEmail:    "alerts@example.org",
		PhoneNumbers: []string{"+911234567890"},
		Emails:       []string{"farmer@example.org"},
	}
}

func weatherSection(payload map[string]interface{}, freshness models.Freshness) models.Section {
	return models.Section{Kind: models.IntentWeather, Provider: "weather", Freshness: freshness, Payload: payload}
}

func TestEvaluateSendsOnSevereRain(t *testing.T) {
	snsClient, sesClient := &fakeSNS{}, &fakeSES{}
	n := NewNotifier(alertsCfg(), snsClient, sesClient, logger.NewNoOpLogger())

	n.Evaluate(context.Background(), "Raebareli",
		[]models.Section{weatherSection(map[string]interface{}{"rain_chance": 0.9}, models.FreshnessLive)})

	require.Len(t, snsClient.messages, 1)
	assert.Contains(t, snsClient.messages[0], "Raebareli")
	assert.Contains(t, snsClient.messages[0], "heavy rainfall")
	assert.Equal(t, 1, sesClient.sends)
}

func TestEvaluateUsesUpstreamAlertText(t *testing.T) {
	snsClient, sesClient := &fakeSNS{}, &fakeSES{}
	n := NewNotifier(alertsCfg(), snsClient, sesClient, logger.NewNoOpLogger())

	n.Evaluate(context.Background(), "Delhi",
		[]models.Section{weatherSection(map[string]interface{}{"alert": "cyclone warning"}, models.FreshnessLive)})

	require.Len(t, snsClient.messages, 1)
	assert.Contains(t, snsClient.messages[0], "cyclone warning")
}

func TestEvaluateIgnoresMildWeather(t *testing.T) {
	snsClient, sesClient := &fakeSNS{}, &fakeSES{}
	n := NewNotifier(alertsCfg(), snsClient, sesClient, logger.NewNoOpLogger())

	n.Evaluate(context.Background(), "Delhi",
		[]models.Section{weatherSection(map[string]interface{}{"rain_chance": 0.2, "temp_max_c": 31.0}, models.FreshnessLive)})

	assert.Empty(t, snsClient.messages)
	assert.Zero(t, sesClient.sends)
}

func TestEvaluateIgnoresNonLiveSections(t *testing.T) {
	snsClient, sesClient := &fakeSNS{}, &fakeSES{}
	n := NewNotifier(alertsCfg(), snsClient, sesClient, logger.NewNoOpLogger())

	// A stale forecast can already be hours old.
	n.Evaluate(context.Background(), "Delhi",
		[]models.Section{weatherSection(map[string]interface{}{"rain_chance": 0.95}, models.FreshnessStale)})

	assert.Empty(t, snsClient.messages)
}

func TestEvaluateSuppressesRepeats(t *testing.T) {
	snsClient, sesClient := &fakeSNS{}, &fakeSES{}
	n := NewNotifier(alertsCfg(), snsClient, sesClient, logger.NewNoOpLogger())

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	n.now = func() time.Time { return now }

	sections := []models.Section{weatherSection(map[string]interface{}{"rain_chance": 0.9}, models.FreshnessLive)}
	n.Evaluate(context.Background(), "Delhi", sections)
	n.Evaluate(context.Background(), "Delhi", sections)
	assert.Len(t, snsClient.messages, 1, "second alert inside the window is suppressed")

	n.Evaluate(context.Background(), "Lucknow", sections)
	assert.Len(t, snsClient.messages, 2, "other locations are independent")

	now = now.Add(7 * time.Hour)
	n.Evaluate(context.Background(), "Delhi", sections)
	assert.Len(t, snsClient.messages, 3, "alerting resumes after the window")
}

func TestEvaluateDisabled(t *testing.T) {
	cfg := alertsCfg()
	cfg.Enabled = false
	snsClient, sesClient := &fakeSNS{}, &fakeSES{}
	n := NewNotifier(cfg, snsClient, sesClient, logger.NewNoOpLogger())

	n.Evaluate(context.Background(), "Delhi",
		[]models.Section{weatherSection(map[string]interface{}{"rain_chance": 0.99}, models.FreshnessLive)})
	assert.Empty(t, snsClient.messages)
}
