package service

// Notifier receives committed domain events. The websocket hub implements it.
type Notifier interface {
	Publish(eventType, action string, data interface{})
}

type nopNotifier struct{}

func (nopNotifier) Publish(string, string, interface{}) {}

func notifierOrNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}

// Event types pushed to websocket clients.
const (
	EventStockUpdate = "stock_update"
	EventUsageAlert  = "usage_alert"
	EventGasUsage    = "gas_usage"
)
