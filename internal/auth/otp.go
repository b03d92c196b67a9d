package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"

	"github.com/soma-campus/soma-backend/internal/apperr"
	"github.com/soma-campus/soma-backend/internal/mailer"
)

const (
	OTPLength = 6
	OTPTTL    = 10 * time.Minute
)

type OTPStore interface {
	ReplaceOTP(ctx context.Context, otp *OTP) error
	LatestLiveOTP(ctx context.Context, email, code string) (*OTP, error)
	MarkOTPUsed(ctx context.Context, id uint) (bool, error)
}

// Ledger issues and redeems one-time codes. Issuing a code retires every
// earlier live code for the same email.
type Ledger struct {
	store       OTPStore
	sender      mailer.Sender
	frontendURL string
	log         *zap.Logger
	now         func() time.Time
	generate    func() (string, error)
}

func NewLedger(store OTPStore, sender mailer.Sender, frontendURL string, log *zap.Logger) *Ledger {
	return &Ledger{
		store:       store,
		sender:      sender,
		frontendURL: frontendURL,
		log:         log.Named("otp"),
		now:         time.Now,
		generate:    randomCode,
	}
}

// Issue stores a fresh code and emails it. When delivery fails the new code
// is retired before the error is returned.
func (l *Ledger) Issue(ctx context.Context, email string) (*OTP, error) {
	code, err := l.generate()
	if err != nil {
		return nil, apperr.Internal("failed to generate OTP", err)
	}

	now := l.now()
	otp := &OTP{Email: email, Code: code, CreatedAt: now, ExpiresAt: now.Add(OTPTTL)}
	if err := l.store.ReplaceOTP(ctx, otp); err != nil {
		return nil, apperr.Internal("failed to create OTP", err)
	}

	msg, err := mailer.OTPEmail(email, code, OTPTTL, l.frontendURL)
	if err == nil {
		sendCtx, cancel := context.WithTimeout(ctx, mailer.SendTimeout)
		err = l.sender.Send(sendCtx, msg)
		cancel()
	}
	if err != nil {
		if _, perr := l.store.MarkOTPUsed(context.WithoutCancel(ctx), otp.ID); perr != nil {
			l.log.Error("failed to retire undelivered otp", zap.Uint("otp_id", otp.ID), zap.Error(perr))
		}
		l.log.Warn("otp delivery failed", zap.String("email", email), zap.Error(err))
		return nil, apperr.Delivery("Failed to send OTP email", err)
	}
	return otp, nil
}

// Verify redeems the newest live code matching email and code. A code is
// accepted at most once.
func (l *Ledger) Verify(ctx context.Context, email, code string) error {
	otp, err := l.store.LatestLiveOTP(ctx, email, code)
	if errors.Is(err, ErrNotFound) {
		return apperr.InvalidCode("Invalid OTP")
	}
	if err != nil {
		return apperr.Internal("failed to verify OTP", err)
	}

	if otp.Expired(l.now()) {
		if _, err := l.store.MarkOTPUsed(ctx, otp.ID); err != nil {
			l.log.Error("failed to retire expired otp", zap.Uint("otp_id", otp.ID), zap.Error(err))
		}
		return apperr.Expired("OTP has expired")
	}

	won, err := l.store.MarkOTPUsed(ctx, otp.ID)
	if err != nil {
		return apperr.Internal("failed to verify OTP", err)
	}
	if !won {
		return apperr.InvalidCode("Invalid OTP")
	}
	return nil
}

// randomCode draws a uniform code in [0, 10^OTPLength) and zero-pads it.
func randomCode() (string, error) {
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(OTPLength), nil)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", OTPLength, n.Int64()), nil
}
