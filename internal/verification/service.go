// Package verification manages SMS verification codes. Codes live in Redis
// with a short TTL; attempts are capped per phone.
package verification

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ecomkit/storefront/internal/redisx"
)

var (
	ErrCodeMismatch = errors.New("verification code mismatch or expired")
	ErrThrottled    = errors.New("verification code requested too recently")
	ErrTooManyTries = errors.New("too many verification attempts")
)

const maxAttempts = 5

// Sender delivers the code out of band (SMS provider).
type Sender interface {
	SendCode(ctx context.Context, phone, code string) error
}

type Service struct {
	rdb    *redis.Client
	sender Sender
	log    *zap.Logger
}

func NewService(rdb *redis.Client, sender Sender, log *zap.Logger) *Service {
	return &Service{rdb: rdb, sender: sender, log: log}
}

// Request generates and sends a 6-digit code. Resends within the throttle
// window are rejected before touching the SMS provider.
func (s *Service) Request(ctx context.Context, phone string) error {
	sentKey := fmt.Sprintf(redisx.KeySMSSent, phone)
	ok, err := s.rdb.SetNX(ctx, sentKey, 1, redisx.TTLSMSSent).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrThrottled
	}

	code, err := sixDigits()
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, fmt.Sprintf(redisx.KeySMSCode, phone), code, redisx.TTLSMSCode).Err(); err != nil {
		return err
	}
	if err := s.rdb.Del(ctx, fmt.Sprintf(redisx.KeySMSAttempts, phone)).Err(); err != nil {
		return err
	}

	if err := s.sender.SendCode(ctx, phone, code); err != nil {
		return err
	}
	s.log.Info("verification code sent", zap.String("phone", mask(phone)))
	return nil
}

// Check consumes the stored code. A match deletes it; a mismatch burns one
// attempt.
func (s *Service) Check(ctx context.Context, phone, code string) error {
	attemptsKey := fmt.Sprintf(redisx.KeySMSAttempts, phone)
	attempts, err := s.rdb.Incr(ctx, attemptsKey).Result()
	if err != nil {
		return err
	}
	if attempts == 1 {
		_ = s.rdb.Expire(ctx, attemptsKey, redisx.TTLSMSAttempts).Err()
	}
	if attempts > maxAttempts {
		return ErrTooManyTries
	}

	codeKey := fmt.Sprintf(redisx.KeySMSCode, phone)
	stored, err := s.rdb.Get(ctx, codeKey).Result()
	if err == redis.Nil {
		return ErrCodeMismatch
	}
	if err != nil {
		return err
	}
	if stored != code {
		return ErrCodeMismatch
	}

	_ = s.rdb.Del(ctx, codeKey, attemptsKey).Err()
	return nil
}

func sixDigits() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func mask(phone string) string {
	if len(phone) < 7 {
		return "***"
	}
	return phone[:3] + "****" + phone[len(phone)-4:]
}
