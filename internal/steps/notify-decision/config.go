// internal/steps/notify-decision/config.go
package notifydecision

type Config struct {
	// EmailEnabled and SMSEnabled default off; the demo deployment has no
	// verified SES identities or SNS spend.
	EmailEnabled bool
	SMSEnabled   bool
	FromEmail    string
	AWSRegion    string
}

func DefaultConfig() *Config {
	return &Config{
		EmailEnabled: false,
		SMSEnabled:   false,
		AWSRegion:    "ap-south-1",
	}
}
