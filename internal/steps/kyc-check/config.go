// internal/steps/kyc-check/config.go
package kyccheck

type Config struct {
	// PhoneDigits is the exact digit count a valid phone must carry after
	// stripping separators. Indian mobile numbers are 10 digits.
	PhoneDigits int
	// AadhaarDigits is the exact digit count of a valid Aadhaar number.
	AadhaarDigits int
}

func DefaultConfig() *Config {
	return &Config{
		PhoneDigits:   10,
		AadhaarDigits: 12,
	}
}
