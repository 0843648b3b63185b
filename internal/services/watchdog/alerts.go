package watchdog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ternarybob/vigil/internal/interfaces"
	"github.com/ternarybob/vigil/internal/models"
)

// AlertMessage is a formatted message ready for the notification gateway
type AlertMessage struct {
	Type interfaces.AlertType
	Text string
}

// FormatAlertMessages turns one cycle's new events into gateway messages.
// Crash alerts always post individually. Log-error alerts post individually
// up to batchThreshold; above it a single per-service summary is posted
// instead, to keep a noisy cycle from flooding the channel.
func FormatAlertMessages(alerts []models.AlertEvent, batchThreshold int) []AlertMessage {
	var messages []AlertMessage
	var errors []models.AlertEvent

	for _, event := range alerts {
		switch event.Kind {
		case models.AlertKindCrash:
			messages = append(messages, AlertMessage{
				Type: interfaces.AlertTypeError,
				Text: fmt.Sprintf("🔴 **%s** is CRASHED and needs attention!", event.Service),
			})
		case models.AlertKindLogError:
			errors = append(errors, event)
		}
	}

	if len(errors) == 0 {
		return messages
	}

	if len(errors) <= batchThreshold {
		for _, event := range errors {
			messages = append(messages, AlertMessage{
				Type: interfaces.AlertTypeWarning,
				Text: fmt.Sprintf("⚠️ **%s** error:\n```%s```", event.Service, event.Message),
			})
		}
		return messages
	}

	return append(messages, AlertMessage{
		Type: interfaces.AlertTypeWarning,
		Text: summarizeErrors(errors),
	})
}

func summarizeErrors(errors []models.AlertEvent) string {
	byService := make(map[string]int)
	for _, event := range errors {
		byService[event.Service]++
	}

	services := make([]string, 0, len(byService))
	for svc := range byService {
		services = append(services, svc)
	}
	sort.Strings(services)

	var b strings.Builder
	fmt.Fprintf(&b, "⚠️ **%d new errors detected:**\n", len(errors))
	for _, svc := range services {
		fmt.Fprintf(&b, "\n• **%s**: %d errors", svc, byService[svc])
	}
	return b.String()
}
