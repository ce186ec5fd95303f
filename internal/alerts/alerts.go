// Package alerts pushes severe weather warnings over SNS text messages
// and SES email when a live forecast crosses the danger thresholds.
package alerts

import (
	"context"
	"fmt"
	"sync"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/common/config"
	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/common/logger"
	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/models"
)

// Danger thresholds for a forecast payload.
const (
	severeRainChance = 0.8
	severeTempMaxC   = 45.0
	severeWindKph    = 80.0
)

// repeatSuppression is how long one location stays quiet after an alert.
const repeatSuppression = 6 * time.Hour

type snsPublisher interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

type sesSender interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

// Notifier inspects resolved weather sections and fans warnings out to
// the configured phone numbers and email addresses.
type Notifier struct {
	cfg config.AlertsConfig
	sns snsPublisher
	ses sesSender
	log logger.Logger

	mu       sync.Mutex
	lastSent map[string]time.Time
	now      func() time.Time
}

func NewNotifier(cfg config.AlertsConfig, snsClient snsPublisher, sesClient sesSender, log logger.Logger) *Notifier {
	return &Notifier{
		cfg:      cfg,
		sns:      snsClient,
		ses:      sesClient,
		log:      log,
		lastSent: make(map[string]time.Time),
		now:      time.Now,
	}
}

// Evaluate checks live weather sections for severe conditions and sends
// at most one alert per location per suppression window. Send failures
// are logged, never propagated: alerting is best effort.
func (n *Notifier) Evaluate(ctx context.Context, location string, sections []models.Section) {
	if !n.cfg.Enabled || location == "" {
		return
	}

	for _, s := range sections {
		if s.Provider != "weather" || s.Freshness != models.FreshnessLive {
			continue
		}
		reason, severe := severeCondition(s.Payload)
		if !severe {
			continue
		}
		if !n.markSent(location) {
			return
		}
		n.send(ctx, location, reason)
		return
	}
}

// severeCondition reports the first danger threshold the payload crosses.
func severeCondition(payload map[string]interface{}) (string, bool) {
	if alert, ok := payload["alert"].(string); ok && alert != "" {
		return alert, true
	}
	if v, ok := numeric(payload["rain_chance"]); ok && v >= severeRainChance {
		return "heavy rainfall expected", true
	}
	if v, ok := numeric(payload["temp_max_c"]); ok && v >= severeTempMaxC {
		return "extreme heat expected", true
	}
	if v, ok := numeric(payload["wind_kph"]); ok && v >= severeWindKph {
		return "high winds expected", true
	}
	return "", false
}

func numeric(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

// markSent records an alert for the location and reports whether it was
// due, enforcing the suppression window atomically.
func (n *Notifier) markSent(location string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	now := n.now()
	if last, ok := n.lastSent[location]; ok && now.Sub(last) < repeatSuppression {
		return false
	}
	n.lastSent[location] = now
	return true
}

func (n *Notifier) send(ctx context.Context, location, reason string) {
	message := fmt.Sprintf("Weather alert for %s: %s. Protect standing crops and stored produce.", location, reason)

	for _, phone := range n.cfg.PhoneNumbers {
		_, err := n.sns.Publish(ctx, &sns.PublishInput{
			Message:     awssdk.String(message),
			PhoneNumber: awssdk.String(phone),
		})
		if err != nil {
			n.log.WithError(err).Error("weather alert SMS failed", map[string]interface{}{
				"location": location,
			})
		}
	}

	for _, email := range n.cfg.Emails {
		_, err := n.ses.SendEmail(ctx, &ses.SendEmailInput{
			Source:      awssdk.String(n.cfg.FromEmail),
			Destination: &sestypes.Destination{ToAddresses: []string{email}},
			Message: &sestypes.Message{
				Subject: &sestypes.Content{Data: awssdk.String("Severe weather alert: " + location)},
				Body: &sestypes.Body{
					Text: &sestypes.Content{Data: awssdk.String(message)},
				},
			},
		})
		if err != nil {
			n.log.WithError(err).Error("weather alert email failed", map[string]interface{}{
				"location": location,
			})
		}
	}

	n.log.Info("severe weather alert sent", map[string]interface{}{
		"location": location,
		"reason":   reason,
	})
}
