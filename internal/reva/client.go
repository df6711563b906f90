// Package reva talks to CS3 (Reva) gateways over gRPC.
package reva

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	gateway "github.com/cs3org/go-cs3apis/cs3/gateway/v1beta1"
	userpb "github.com/cs3org/go-cs3apis/cs3/identity/user/v1beta1"
	rpc "github.com/cs3org/go-cs3apis/cs3/rpc/v1beta1"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/timeout"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"github.com/dtroode/filegate-session/internal/logger"
)

// TokenHeader is the metadata key Reva reads the access token from.
const TokenHeader = "x-access-token"

// DefaultMaxGateways bounds how many gateway connections a Client keeps open.
const DefaultMaxGateways = 16

// ErrUnauthenticated is returned when the gateway rejects the credentials.
var ErrUnauthenticated = errors.New("reva: unauthenticated")

// User is the subset of a CS3 user this service needs.
type User struct {
	Username    string `json:"username"`
	Mail        string `json:"mail"`
	DisplayName string `json:"displayName"`
}

// gatewayAPI is the subset of the CS3 gateway client used here.
type gatewayAPI interface {
	WhoAmI(ctx context.Context, in *gateway.WhoAmIRequest, opts ...grpc.CallOption) (*gateway.WhoAmIResponse, error)
	Authenticate(ctx context.Context, in *gateway.AuthenticateRequest, opts ...grpc.CallOption) (*gateway.AuthenticateResponse, error)
}

// Client keeps one connection per gateway address, up to maxConns. The least
// recently used connection is closed when a new address would exceed it.
type Client struct {
	mu       sync.Mutex
	conns    map[string]*grpc.ClientConn
	apis     map[string]gatewayAPI
	recent   []string
	maxConns int
	dial     func(addr string) (*grpc.ClientConn, gatewayAPI, error)
	logger   *logger.Logger
	timeout  time.Duration
	useTLS   bool
}

// NewClient creates a Client whose calls are logged and bounded by callTimeout.
func NewClient(callTimeout time.Duration, useTLS bool, logger *logger.Logger) *Client {
	c := &Client{
		conns:    make(map[string]*grpc.ClientConn),
		apis:     make(map[string]gatewayAPI),
		maxConns: DefaultMaxGateways,
		logger:   logger,
		timeout:  callTimeout,
		useTLS:   useTLS,
	}
	c.dial = c.dialGateway
	return c
}

// newClientWithAPI returns a Client that uses api for every gateway address.
func newClientWithAPI(api gatewayAPI, logger *logger.Logger) *Client {
	c := NewClient(0, false, logger)
	c.dial = func(string) (*grpc.ClientConn, gatewayAPI, error) { return nil, api, nil }
	return c
}

func (c *Client) dialGateway(addr string) (*grpc.ClientConn, gatewayAPI, error) {
	creds := insecure.NewCredentials()
	if c.useTLS {
		creds = credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})
	}

	interceptors := []grpc.UnaryClientInterceptor{
		logging.UnaryClientInterceptor(interceptorLogger(c.logger)),
	}
	if c.timeout > 0 {
		interceptors = append(interceptors, timeout.UnaryClientInterceptor(c.timeout))
	}

	conn, err := grpc.NewClient(addr,
		grpc.WithTransportCredentials(creds),
		grpc.WithChainUnaryInterceptor(interceptors...),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create gateway client for %s: %w", addr, err)
	}

	return conn, gateway.NewGatewayAPIClient(conn), nil
}

func (c *Client) api(addr string) (gatewayAPI, error) {
	if addr == "" {
		return nil, fmt.Errorf("gateway address is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if api, ok := c.apis[addr]; ok {
		c.touch(addr)
		return api, nil
	}

	conn, api, err := c.dial(addr)
	if err != nil {
		return nil, err
	}

	for len(c.recent) >= c.maxConns && len(c.recent) > 0 {
		c.evict(c.recent[0])
	}
	if conn != nil {
		c.conns[addr] = conn
	}
	c.apis[addr] = api
	c.recent = append(c.recent, addr)

	return api, nil
}

// touch marks addr as the most recently used gateway. Callers hold c.mu.
func (c *Client) touch(addr string) {
	if i := slices.Index(c.recent, addr); i >= 0 {
		c.recent = append(slices.Delete(c.recent, i, i+1), addr)
	}
}

// evict drops addr from the cache and closes its connection. Callers hold c.mu.
func (c *Client) evict(addr string) {
	if i := slices.Index(c.recent, addr); i >= 0 {
		c.recent = slices.Delete(c.recent, i, i+1)
	}
	delete(c.apis, addr)

	conn, ok := c.conns[addr]
	if !ok {
		return
	}
	delete(c.conns, addr)
	if err := conn.Close(); err != nil {
		c.logger.Warn("Reva client: failed to close evicted gateway connection",
			"gateway", addr,
			"error", err)
	}
}

// WhoAmI resolves token to the user it belongs to. A nil user with a nil
// error means the gateway answered but did not resolve a user.
func (c *Client) WhoAmI(ctx context.Context, gatewayAddr, token string) (*User, error) {
	api, err := c.api(gatewayAddr)
	if err != nil {
		return nil, err
	}

	ctx = metadata.AppendToOutgoingContext(ctx, TokenHeader, token)
	res, err := api.WhoAmI(ctx, &gateway.WhoAmIRequest{Token: token})
	if err != nil {
		return nil, fmt.Errorf("failed to call whoami: %w", err)
	}
	if res.GetStatus().GetCode() != rpc.Code_CODE_OK || res.GetUser() == nil {
		return nil, nil
	}

	return toUser(res.GetUser()), nil
}

// Authenticate exchanges basic credentials for a Reva token.
func (c *Client) Authenticate(ctx context.Context, gatewayAddr, username, password string) (string, *User, error) {
	api, err := c.api(gatewayAddr)
	if err != nil {
		return "", nil, err
	}

	res, err := api.Authenticate(ctx, &gateway.AuthenticateRequest{
		Type:         "basic",
		ClientId:     username,
		ClientSecret: password,
	})
	if err != nil {
		return "", nil, fmt.Errorf("failed to call authenticate: %w", err)
	}
	if res.GetStatus().GetCode() != rpc.Code_CODE_OK {
		return "", nil, fmt.Errorf("%w: %s", ErrUnauthenticated, res.GetStatus().GetMessage())
	}

	return res.GetToken(), toUser(res.GetUser()), nil
}

// Close closes every gateway connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	for addr, conn := range c.conns {
		if err := conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", addr, err))
		}
	}
	c.conns = make(map[string]*grpc.ClientConn)
	c.apis = make(map[string]gatewayAPI)
	c.recent = nil

	return errors.Join(errs...)
}

func toUser(u *userpb.User) *User {
	if u == nil {
		return nil
	}
	return &User{
		Username:    u.GetUsername(),
		Mail:        u.GetMail(),
		DisplayName: u.GetDisplayName(),
	}
}

func interceptorLogger(l *logger.Logger) logging.Logger {
	return logging.LoggerFunc(func(ctx context.Context, lvl logging.Level, msg string, fields ...any) {
		l.Log(ctx, slogLevel(lvl), "Reva client: "+msg, fields...)
	})
}
