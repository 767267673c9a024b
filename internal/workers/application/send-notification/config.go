// internal/workers/application/send-notification/config.go
package sendnotification

import "time"

// Config is assembled by the worker manager from the notifications
// section of the global config. SMS delivery additionally requires the
// notification to be marked high priority, regardless of SMSEnabled.
type Config struct {
	EmailEnabled     bool
	SMSEnabled       bool
	FromEmail        string
	AWSRegion        string
	TemplateRegistry string
	Timeout          time.Duration
}
