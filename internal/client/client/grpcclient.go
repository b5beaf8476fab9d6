package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/authgate/internal/client/models"
	"github.com/dmitrijs2005/authgate/internal/common"
	"github.com/dmitrijs2005/authgate/internal/logging"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	grpcmd "google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// GRPCProvider talks to a remote identity provider over gRPC.
type GRPCProvider struct {
	endpointURL string
	conn        *grpc.ClientConn
	health      healthpb.HealthClient
	tokens      *TokenCache
	log         logging.Logger
	feed        *feed

	mu      sync.RWMutex
	idToken string

	restoreOnce sync.Once
	closed      atomic.Bool
}

// NewGRPCProvider creates a client for endpointURL. tokens may be nil, in
// which case sessions are not persisted between runs. Extra dial options
// are appended to the defaults (insecure transport, id token interceptor).
func NewGRPCProvider(endpointURL string, tokens *TokenCache, log logging.Logger, opts ...grpc.DialOption) (*GRPCProvider, error) {
	p := &GRPCProvider{
		endpointURL: endpointURL,
		tokens:      tokens,
		log:         log.With("component", "grpc-provider"),
		feed:        newFeed(),
	}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(p.idTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, dialOpts...)
	if err != nil {
		return nil, err
	}
	p.conn = conn
	p.health = healthpb.NewHealthClient(conn)
	return p, nil
}

func (p *GRPCProvider) currentToken() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.idToken
}

func (p *GRPCProvider) idTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	md, _ := grpcmd.FromOutgoingContext(ctx)
	md = md.Copy()
	md.Set(common.RequestIDHeaderName, common.NewRequestID())
	if token := p.currentToken(); token != "" {
		md.Set(common.IDTokenHeaderName, token)
	}
	return invoker(grpcmd.NewOutgoingContext(ctx, md), method, req, reply, cc, opts...)
}

func (p *GRPCProvider) invoke(ctx context.Context, method string, fields map[string]any) (*structpb.Struct, error) {
	if p.closed.Load() {
		return nil, ErrClosed
	}
	req, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	resp := &structpb.Struct{}
	if err := p.conn.Invoke(ctx, method, req, resp); err != nil {
		return nil, mapError(err)
	}
	return resp, nil
}

// signInCall performs a call whose response carries a fresh id token and
// switches the session to it.
func (p *GRPCProvider) signInCall(ctx context.Context, method string, fields map[string]any) error {
	resp, err := p.invoke(ctx, method, fields)
	if err != nil {
		return err
	}
	id, err := IdentityFromToken(resp.GetFields()[fieldIDToken].GetStringValue())
	if err != nil {
		return err
	}
	p.setSession(ctx, id)
	return nil
}

func (p *GRPCProvider) Register(ctx context.Context, email, password string) error {
	return p.signInCall(ctx, methodRegister, map[string]any{fieldEmail: email, fieldPassword: password})
}

func (p *GRPCProvider) Login(ctx context.Context, email, password string) error {
	return p.signInCall(ctx, methodLogin, map[string]any{fieldEmail: email, fieldPassword: password})
}

func (p *GRPCProvider) SignInWithSocial(ctx context.Context, kind models.SocialProvider) error {
	return p.signInCall(ctx, methodSignInWithSocial, map[string]any{fieldProvider: kind.ProviderID()})
}

func (p *GRPCProvider) SendPasswordReset(ctx context.Context, email string) error {
	_, err := p.invoke(ctx, methodSendPasswordReset, map[string]any{fieldEmail: email})
	return err
}

// SignOut revokes the session on the provider, then forgets it locally.
// On failure the local session is kept.
func (p *GRPCProvider) SignOut(ctx context.Context) error {
	if _, err := p.invoke(ctx, methodSignOut, map[string]any{}); err != nil {
		return err
	}
	p.setSession(ctx, nil)
	return nil
}

// Watch restores the persisted session on first use and then streams
// identity changes.
func (p *GRPCProvider) Watch(ctx context.Context) (<-chan IdentityEvent, error) {
	if p.closed.Load() {
		return nil, ErrClosed
	}
	ch := p.feed.subscribe(ctx)
	p.restoreOnce.Do(func() {
		go p.restore(context.WithoutCancel(ctx))
	})
	return ch, nil
}

func (p *GRPCProvider) restore(ctx context.Context) {
	token, err := p.loadToken(ctx)
	if err != nil {
		p.log.Warn(ctx, "token cache unreadable, starting signed out", "error", err)
	}
	if token == "" {
		p.feed.publish(IdentityEvent{})
		return
	}
	if at, err := p.tokens.UpdatedAt(ctx); err == nil && !at.IsZero() {
		p.log.Debug(ctx, "restoring cached session", "cached_at", at)
	}

	p.mu.Lock()
	p.idToken = token
	p.mu.Unlock()

	err = p.signInCall(ctx, methodRefresh, map[string]any{fieldIDToken: token})
	switch {
	case err == nil:
		p.log.Debug(ctx, "session restored")
	case errors.Is(err, ErrUnavailable):
		p.log.Error(ctx, "cannot restore session", "error", err)
		p.feed.publish(IdentityEvent{Err: err})
	default:
		p.log.Info(ctx, "persisted session rejected", "error", err)
		p.setSession(ctx, nil)
	}
}

func (p *GRPCProvider) loadToken(ctx context.Context) (string, error) {
	if p.tokens == nil {
		return "", nil
	}
	return p.tokens.Load(ctx)
}

// setSession switches the current identity (nil = signed out), persists
// the token and notifies watchers.
func (p *GRPCProvider) setSession(ctx context.Context, id *models.Identity) {
	p.mu.Lock()
	if id != nil {
		p.idToken = id.Token
	} else {
		p.idToken = ""
	}
	p.mu.Unlock()

	if p.tokens != nil {
		var err error
		if id != nil {
			err = p.tokens.Save(ctx, id.Token)
		} else {
			err = p.tokens.Clear(ctx)
		}
		if err != nil {
			p.log.Warn(ctx, "token cache not updated", "error", err)
		}
	}

	p.feed.publish(IdentityEvent{Identity: id})
}

// Ping queries the standard gRPC health service for the provider.
func (p *GRPCProvider) Ping(ctx context.Context) error {
	if p.closed.Load() {
		return ErrClosed
	}
	resp, err := p.health.Check(ctx, &healthpb.HealthCheckRequest{Service: serviceName})
	if err != nil {
		return mapError(err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return ErrUnavailable
	}
	return nil
}

func (p *GRPCProvider) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	p.feed.close()
	return p.conn.Close()
}

// mapError converts a gRPC status into a ProviderError when the provider
// attached a reason, otherwise into a sentinel transport error.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok && info.GetReason() != "" {
			return newProviderError(info.GetReason(), st.Message())
		}
	}
	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("%w: %s", ErrUnavailable, st.Message())
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
