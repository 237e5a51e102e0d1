package worker

import (
	"github.com/tashkhees/support-portal/internal/events"
	"github.com/tashkhees/support-portal/internal/service"
)

// StartNotificationWorker subscribes the notification fan-out onto the
// event dispatcher.
func StartNotificationWorker(notificationService *service.NotificationService, dispatcher events.Dispatcher) {
	if notificationService == nil || dispatcher == nil {
		return
	}
	notificationService.RegisterHandlers(dispatcher)
}
