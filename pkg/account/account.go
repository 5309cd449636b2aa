// Package account keeps the user sessions and search-token balances that gate
// trademark searches. Storage is injected through Repository.
package account

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound             = errors.New("user not found")
	ErrUsernameTaken        = errors.New("username already registered")
	ErrInvalidUsername      = errors.New("username is required")
	ErrInvalidWallet        = errors.New("wallet address is too short")
	ErrInsufficientTokens   = errors.New("insufficient tokens")
	ErrUnknownPackage       = errors.New("unknown token package")
	ErrUnknownConnector     = errors.New("unknown payment connector")
	ErrConnectorUnavailable = errors.New("payment connector not available yet")
)

// User is a signed-in account and its token balance.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	Tokens    int       `json:"tokens"`
	CreatedAt time.Time `json:"created_at"`
}

// Repository persists users. Get returns ErrNotFound for unknown IDs; Clear
// on an unknown ID is not an error.
type Repository interface {
	Get(ctx context.Context, id string) (*User, error)
	Put(ctx context.Context, u *User) error
	Clear(ctx context.Context, id string) error
}

// UsernameFinder is implemented by repositories that can look users up by name.
type UsernameFinder interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
}

// Package is a purchasable bundle of search tokens.
type Package struct {
	ID          string `json:"id"`
	Tokens      int    `json:"tokens"`
	Price       string `json:"price"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
}

// Connector is a payment rail tokens can be bought through.
type Connector struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Network   string `json:"network"`
	Available bool   `json:"available"`
}

// Packages lists the token bundles on sale.
func Packages() []Package {
	return []Package{
		{ID: "starter", Tokens: 10, Price: "0.01", Currency: "SOL", Description: "Perfect for trying out our services"},
		{ID: "professional", Tokens: 25, Price: "0.02", Currency: "SOL", Description: "Best value for regular users"},
		{ID: "enterprise", Tokens: 50, Price: "0.035", Currency: "SOL", Description: "For businesses and agencies"},
	}
}

// Connectors lists the payment rails, including ones not yet enabled.
func Connectors() []Connector {
	return []Connector{
		{ID: "solana", Name: "Solana", Network: "Testnet", Available: true},
		{ID: "bitcoin", Name: "Bitcoin", Network: "Testnet", Available: true},
		{ID: "ethereum", Name: "Ethereum", Network: "Mainnet", Available: false},
	}
}

func findPackage(id string) (Package, bool) {
	for _, p := range Packages() {
		if p.ID == id {
			return p, true
		}
	}
	return Package{}, false
}

func findConnector(id string) (Connector, bool) {
	for _, c := range Connectors() {
		if c.ID == id {
			return c, true
		}
	}
	return Connector{}, false
}
