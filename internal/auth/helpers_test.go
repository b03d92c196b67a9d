package auth

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/soma-campus/soma-backend/internal/db/dbtest"
	"github.com/soma-campus/soma-backend/internal/mailer"
)

const testFrontend = "https://soma.example"

// fakeSender records messages instead of delivering them. Setting err makes
// every send fail.
type fakeSender struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, msg mailer.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func (f *fakeSender) last(t *testing.T) mailer.Message {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent, "no message was sent")
	return f.sent[len(f.sent)-1]
}

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type testEnv struct {
	store  *Store
	sender *fakeSender
	clock  *testClock
	ledger *Ledger
	tokens *Tokens
	svc    *Service
	codes  []string
}

// newTestEnv wires the service over in-memory SQLite with a fixed clock and
// sequential OTP codes.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	d := dbtest.Open(t)
	require.NoError(t, Init(d))

	env := &testEnv{
		store:  NewStore(d),
		sender: &fakeSender{},
		clock:  &testClock{t: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)},
	}

	env.ledger = NewLedger(env.store, env.sender, testFrontend, zap.NewNop())
	env.ledger.now = env.clock.Now
	seq := 0
	env.ledger.generate = func() (string, error) {
		seq++
		code := fmt.Sprintf("%06d", 100000+seq)
		env.codes = append(env.codes, code)
		return code, nil
	}

	tokens, err := NewTokens("test-secret")
	require.NoError(t, err)
	tokens.now = env.clock.Now
	env.tokens = tokens

	env.svc = NewService(env.store, env.ledger, tokens, env.sender, nil, testFrontend, zap.NewNop())
	env.svc.now = env.clock.Now
	return env
}

func (e *testEnv) lastCode(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, e.codes)
	return e.codes[len(e.codes)-1]
}

func signupRequest(username, email string) SignupRequest {
	return SignupRequest{Username: username, Email: email, Password: "campus-pass-1", FullName: "Ada Lovelace"}
}

// activeUser signs up and verifies a user, returning it.
func (e *testEnv) activeUser(t *testing.T, username, email string) *User {
	t.Helper()
	ctx := context.Background()
	_, err := e.svc.Signup(ctx, signupRequest(username, email))
	require.NoError(t, err)
	user, err := e.svc.VerifyOTP(ctx, email, e.lastCode(t))
	require.NoError(t, err)
	return user
}
