package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultStartingTokens is the balance granted to every new account.
const DefaultStartingTokens = 5

// Service implements sign-in, token spending and token purchases on top of a Repository.
type Service struct {
	repo     Repository
	logger   *slog.Logger
	starting int
	now      func() time.Time

	// mu serialises balance read-modify-write cycles and account creation.
	mu sync.Mutex
}

// NewService returns a Service. startingTokens <= 0 means DefaultStartingTokens.
func NewService(repo Repository, startingTokens int, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if startingTokens <= 0 {
		startingTokens = DefaultStartingTokens
	}
	return &Service{repo: repo, logger: logger, starting: startingTokens, now: time.Now}
}

func (s *Service) newUser(id, username, email string) *User {
	if id == "" {
		id = uuid.NewString()
	}
	return &User{
		ID:        id,
		Username:  username,
		Email:     email,
		Tokens:    s.starting,
		CreatedAt: s.now().UTC(),
	}
}

func (s *Service) findByUsername(ctx context.Context, username string) (*User, error) {
	f, ok := s.repo.(UsernameFinder)
	if !ok {
		return nil, ErrNotFound
	}
	return f.FindByUsername(ctx, username)
}

// Register creates an account. Email defaults to <username>@example.com.
func (s *Service) Register(ctx context.Context, username, email string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrInvalidUsername
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.findByUsername(ctx, username); err == nil {
		return nil, fmt.Errorf("register %s: %w", username, ErrUsernameTaken)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("register %s: %w", username, err)
	}
	if email = strings.TrimSpace(email); email == "" {
		email = username + "@example.com"
	}

	u := s.newUser("", username, email)
	if err := s.repo.Put(ctx, u); err != nil {
		return nil, fmt.Errorf("register %s: %w", username, err)
	}
	s.logger.Info("account registered", "user", u.ID, "username", username)
	return u, nil
}

// Login signs username in. There is no credential check: an unknown username
// gets a fresh account, a known one resumes its balance.
func (s *Service) Login(ctx context.Context, username string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrInvalidUsername
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u, err := s.findByUsername(ctx, username)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("login %s: %w", username, err)
	}

	u = s.newUser("", username, username+"@example.com")
	if err := s.repo.Put(ctx, u); err != nil {
		return nil, fmt.Errorf("login %s: %w", username, err)
	}
	s.logger.Info("account created on login", "user", u.ID, "username", username)
	return u, nil
}

// ConnectWallet signs in with a wallet address, which becomes the user ID.
func (s *Service) ConnectWallet(ctx context.Context, address string) (*User, error) {
	address = strings.TrimSpace(address)
	if len(address) < 10 {
		return nil, ErrInvalidWallet
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u, err := s.repo.Get(ctx, address)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("connect wallet: %w", err)
	}

	u = s.newUser(address, ShortAddress(address), "")
	if err := s.repo.Put(ctx, u); err != nil {
		return nil, fmt.Errorf("connect wallet: %w", err)
	}
	s.logger.Info("wallet connected", "user", u.ID)
	return u, nil
}

// ShortAddress abbreviates a wallet address as first6...last4.
func ShortAddress(address string) string {
	if len(address) <= 10 {
		return address
	}
	return address[:6] + "..." + address[len(address)-4:]
}

// Current returns the signed-in user.
func (s *Service) Current(ctx context.Context, id string) (*User, error) {
	return s.repo.Get(ctx, id)
}

// Logout ends the session by clearing the stored user.
func (s *Service) Logout(ctx context.Context, id string) error {
	if err := s.repo.Clear(ctx, id); err != nil {
		return fmt.Errorf("logout %s: %w", id, err)
	}
	return nil
}

// SetTokens overwrites a user's balance.
func (s *Service) SetTokens(ctx context.Context, id string, tokens int) (*User, error) {
	if tokens < 0 {
		tokens = 0
	}
	return s.update(ctx, id, func(u *User) error {
		u.Tokens = tokens
		return nil
	})
}

// Spend deducts cost tokens, failing with ErrInsufficientTokens when the
// balance is too low. The balance is left untouched on failure.
func (s *Service) Spend(ctx context.Context, id string, cost int) (*User, error) {
	return s.update(ctx, id, func(u *User) error {
		if u.Tokens < cost {
			return fmt.Errorf("%w: have %d, need %d", ErrInsufficientTokens, u.Tokens, cost)
		}
		u.Tokens -= cost
		return nil
	})
}

// Refund gives back tokens taken by Spend.
func (s *Service) Refund(ctx context.Context, id string, amount int) (*User, error) {
	return s.update(ctx, id, func(u *User) error {
		u.Tokens += amount
		return nil
	})
}

// Purchase credits a token package bought through a payment connector.
func (s *Service) Purchase(ctx context.Context, id, packageID, connectorID string) (*User, error) {
	pkg, ok := findPackage(packageID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPackage, packageID)
	}
	conn, ok := findConnector(connectorID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownConnector, connectorID)
	}
	if !conn.Available {
		return nil, fmt.Errorf("%w: %s", ErrConnectorUnavailable, conn.Name)
	}

	u, err := s.update(ctx, id, func(u *User) error {
		u.Tokens += pkg.Tokens
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("tokens purchased", "user", id, "package", pkg.ID, "connector", conn.ID, "tokens", pkg.Tokens)
	return u, nil
}

func (s *Service) update(ctx context.Context, id string, fn func(*User) error) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(u); err != nil {
		return nil, err
	}
	if err := s.repo.Put(ctx, u); err != nil {
		return nil, fmt.Errorf("save user %s: %w", id, err)
	}
	return u, nil
}
