package client

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/authgate/internal/client/models"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	passwordRule             = "min=6"
	defaultMaxFailedAttempts = 5
	memoryTokenTTL           = time.Hour
)

var validate = validator.New()

type memoryAccount struct {
	uid      string
	email    string
	provider string
	hash     []byte
	disabled bool
}

// MemoryProvider is an in-process identity provider. State lives only as
// long as the value; it exists for offline use and tests.
type MemoryProvider struct {
	mu             sync.Mutex
	accounts       map[string]*memoryAccount
	social         map[models.SocialProvider]*memoryAccount
	disabledSocial map[models.SocialProvider]bool
	failures       map[string]int
	outbox         []string
	current        *models.Identity

	feed      *feed
	startOnce sync.Once
	stop      chan struct{}
	stopOnce  sync.Once
	online    atomic.Bool

	initDelay   time.Duration
	initErr     error
	maxFailures int
	bcryptCost  int
	signingKey  []byte
	now         func() time.Time
}

// MemoryOption configures a MemoryProvider.
type MemoryOption func(*MemoryProvider)

// WithInitDelay postpones the first identity event, mimicking a provider
// that restores persisted state asynchronously.
func WithInitDelay(d time.Duration) MemoryOption {
	return func(p *MemoryProvider) { p.initDelay = d }
}

// WithInitError makes the first identity event a failure.
func WithInitError(err error) MemoryOption {
	return func(p *MemoryProvider) { p.initErr = err }
}

// WithMaxFailedAttempts sets how many wrong passwords lock an account.
func WithMaxFailedAttempts(n int) MemoryOption {
	return func(p *MemoryProvider) { p.maxFailures = n }
}

// WithBcryptCost overrides the password hashing cost.
func WithBcryptCost(cost int) MemoryOption {
	return func(p *MemoryProvider) { p.bcryptCost = cost }
}

// WithSigningKey sets the key used to mint id tokens.
func WithSigningKey(key []byte) MemoryOption {
	return func(p *MemoryProvider) { p.signingKey = key }
}

func NewMemoryProvider(opts ...MemoryOption) *MemoryProvider {
	p := &MemoryProvider{
		accounts:       make(map[string]*memoryAccount),
		social:         make(map[models.SocialProvider]*memoryAccount),
		disabledSocial: make(map[models.SocialProvider]bool),
		failures:       make(map[string]int),
		feed:           newFeed(),
		stop:           make(chan struct{}),
		maxFailures:    defaultMaxFailedAttempts,
		bcryptCost:     bcrypt.DefaultCost,
		signingKey:     []byte(uuid.NewString()),
		now:            time.Now,
	}
	p.online.Store(true)
	for _, o := range opts {
		o(p)
	}
	return p
}

// AddAccount seeds an email/password account without signing in.
func (p *MemoryProvider) AddAccount(email, password string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := p.createAccount(email, password)
	return err
}

// DisableAccount marks an account as disabled.
func (p *MemoryProvider) DisableAccount(email string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if acc, ok := p.accounts[normalizeEmail(email)]; ok {
		acc.disabled = true
	}
}

// DisableSocial rejects sign-in through kind with operation-not-allowed.
func (p *MemoryProvider) DisableSocial(kind models.SocialProvider) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.disabledSocial[kind] = true
}

// SetOnline toggles simulated connectivity. While offline every call fails
// with network-request-failed and Ping returns ErrUnavailable.
func (p *MemoryProvider) SetOnline(online bool) {
	p.online.Store(online)
}

// ResetRequests returns the addresses that were sent a reset email.
func (p *MemoryProvider) ResetRequests() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.outbox...)
}

func (p *MemoryProvider) Register(ctx context.Context, email, password string) error {
	if err := p.precheck(ctx); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	acc, err := p.createAccount(email, password)
	if err != nil {
		return err
	}
	if err := p.signIn(acc); err != nil {
		delete(p.accounts, normalizeEmail(email))
		return err
	}
	return nil
}

func (p *MemoryProvider) Login(ctx context.Context, email, password string) error {
	if err := p.precheck(ctx); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	key := normalizeEmail(email)
	acc, ok := p.accounts[key]
	if !ok {
		return newProviderError(CodeUserNotFound, "There is no user record corresponding to this identifier.")
	}
	if acc.disabled {
		return newProviderError(CodeUserDisabled, "The user account has been disabled by an administrator.")
	}
	if p.failures[key] >= p.maxFailures {
		return newProviderError(CodeTooManyRequests, "Access to this account has been temporarily disabled.")
	}
	if err := bcrypt.CompareHashAndPassword(acc.hash, []byte(password)); err != nil {
		p.failures[key]++
		return newProviderError(CodeWrongPassword, "The password is invalid.")
	}

	delete(p.failures, key)
	return p.signIn(acc)
}

func (p *MemoryProvider) SignOut(ctx context.Context) error {
	if err := p.precheck(ctx); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = nil
	p.feed.publish(IdentityEvent{})
	return nil
}

func (p *MemoryProvider) SendPasswordReset(ctx context.Context, email string) error {
	if err := p.precheck(ctx); err != nil {
		return err
	}
	if !validEmail(email) {
		return newProviderError(CodeInvalidEmail, "The email address is badly formatted.")
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.accounts[normalizeEmail(email)]; !ok {
		return newProviderError(CodeUserNotFound, "There is no user record corresponding to this identifier.")
	}
	p.outbox = append(p.outbox, email)
	return nil
}

func (p *MemoryProvider) SignInWithSocial(ctx context.Context, kind models.SocialProvider) error {
	if err := p.precheck(ctx); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.disabledSocial[kind] {
		return newProviderError(CodeOperationNotAllowed, fmt.Sprintf("Sign-in with %s is not enabled.", kind))
	}
	acc, ok := p.social[kind]
	if !ok {
		acc = &memoryAccount{
			uid:      uuid.NewString(),
			email:    fmt.Sprintf("%s.user@example.com", kind),
			provider: kind.ProviderID(),
		}
		p.social[kind] = acc
	}
	return p.signIn(acc)
}

// Watch starts the provider on first use: after the configured init delay
// it emits the current identity (or the configured init error).
func (p *MemoryProvider) Watch(ctx context.Context) (<-chan IdentityEvent, error) {
	if p.closed() {
		return nil, ErrClosed
	}
	ch := p.feed.subscribe(ctx)
	p.startOnce.Do(func() { go p.initialize() })
	return ch, nil
}

func (p *MemoryProvider) initialize() {
	if p.initDelay > 0 {
		t := time.NewTimer(p.initDelay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-p.stop:
			return
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.initErr != nil {
		p.feed.publish(IdentityEvent{Err: p.initErr})
		return
	}
	p.feed.publish(IdentityEvent{Identity: p.current})
}

func (p *MemoryProvider) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.closed() {
		return ErrClosed
	}
	if !p.online.Load() {
		return ErrUnavailable
	}
	return nil
}

func (p *MemoryProvider) Close() error {
	p.stopOnce.Do(func() { close(p.stop) })
	p.feed.close()
	return nil
}

func (p *MemoryProvider) closed() bool {
	select {
	case <-p.stop:
		return true
	default:
		return false
	}
}

func (p *MemoryProvider) precheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.closed() {
		return ErrClosed
	}
	if !p.online.Load() {
		return newProviderError(CodeNetworkRequestFailed, "A network error has occurred.")
	}
	return nil
}

// createAccount must be called with p.mu held.
func (p *MemoryProvider) createAccount(email, password string) (*memoryAccount, error) {
	if !validEmail(email) {
		return nil, newProviderError(CodeInvalidEmail, "The email address is badly formatted.")
	}
	if validate.Var(password, passwordRule) != nil {
		return nil, newProviderError(CodeWeakPassword, "Password should be at least 6 characters.")
	}
	key := normalizeEmail(email)
	if _, exists := p.accounts[key]; exists {
		return nil, newProviderError(CodeEmailAlreadyInUse, "The email address is already in use by another account.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	acc := &memoryAccount{
		uid:      uuid.NewString(),
		email:    email,
		provider: models.ProviderPassword,
		hash:     hash,
	}
	p.accounts[key] = acc
	return acc, nil
}

// signIn must be called with p.mu held.
func (p *MemoryProvider) signIn(acc *memoryAccount) error {
	id := models.Identity{UID: acc.uid, Email: acc.email, Provider: acc.provider}
	now := p.now()
	token, err := SignIdentityToken(id, p.signingKey, now, memoryTokenTTL)
	if err != nil {
		return fmt.Errorf("sign id token: %w", err)
	}
	id.Token = token
	id.ExpiresAt = now.Add(memoryTokenTTL)

	p.current = &id
	p.feed.publish(IdentityEvent{Identity: p.current})
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	return validate.Var(email, "required,email") == nil
}
