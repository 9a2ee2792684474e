package redisx

import "time"

const (
	// SMS verification code: sms:code:{phone} -> 6-digit code
	KeySMSCode = "sms:code:%s"

	// Verification attempts per phone: sms:attempts:{phone} -> counter
	KeySMSAttempts = "sms:attempts:%s"

	// Resend throttle: sms:sent:{phone} -> 1 while a code is fresh
	KeySMSSent = "sms:sent:%s"
)

var (
	TTLSMSCode     = 5 * time.Minute
	TTLSMSAttempts = 10 * time.Minute
	TTLSMSSent     = time.Minute
)
