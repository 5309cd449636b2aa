package api

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/RamsisDev/Latip-Hackaton/pkg/account"
	"github.com/RamsisDev/Latip-Hackaton/pkg/kit"
	"github.com/RamsisDev/Latip-Hackaton/pkg/trademark"
)

// Shared request/response types used by both HTTP and MCP transports.

var (
	ErrEmptyQuery   = errors.New("query is empty")
	ErrUnauthorized = errors.New("missing user id")
)

type searchReq struct {
	Query  string `json:"query"`
	Region string `json:"region"`
}

type searchResponse struct {
	Query      string            `json:"query"`
	Region     string            `json:"region"`
	RegionName string            `json:"region_name"`
	HasMatches bool              `json:"has_matches"`
	Matches    []trademark.Match `json:"matches"`
	Tokens     *int              `json:"tokens_remaining,omitempty"`
}

type countriesResponse struct {
	Countries []trademark.CountryInfo `json:"countries"`
}

type credentialsReq struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Wallet   string `json:"wallet,omitempty"`
}

type purchaseReq struct {
	Package   string `json:"package"`
	Connector string `json:"connector"`
}

type catalogResponse struct {
	Packages   []account.Package   `json:"packages"`
	Connectors []account.Connector `json:"connectors"`
}

func normalizeRegion(region string) string {
	region = strings.TrimSpace(region)
	if region == "" || strings.EqualFold(region, trademark.RegionGlobal) {
		return trademark.RegionGlobal
	}
	return strings.ToUpper(region)
}

func runSearch(store *trademark.Store, req *searchReq) (*searchResponse, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, ErrEmptyQuery
	}
	region := normalizeRegion(req.Region)
	e := store.Engine()
	matches := e.Search(req.Query, region)
	return &searchResponse{
		Query:      req.Query,
		Region:     region,
		RegionName: e.Labels().Label(region),
		HasMatches: len(matches) > 0,
		Matches:    matches,
	}, nil
}

// searchEndpoint runs a free search, used by the MCP tool and anonymous GETs.
func searchEndpoint(store *trademark.Store) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		return runSearch(store, request.(*searchReq))
	}
}

// paidSearchEndpoint charges the caller cost tokens before searching.
func paidSearchEndpoint(store *trademark.Store, accounts *account.Service, cost int) kit.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(*searchReq)
		if strings.TrimSpace(req.Query) == "" {
			return nil, ErrEmptyQuery
		}
		userID := kit.GetUserID(ctx)
		if userID == "" {
			return nil, ErrUnauthorized
		}
		u, err := accounts.Spend(ctx, userID, cost)
		if err != nil {
			return nil, err
		}
		resp, err := runSearch(store, req)
		if err != nil {
			if _, rerr := accounts.Refund(ctx, userID, cost); rerr != nil {
				return nil, errors.Join(err, fmt.Errorf("refund: %w", rerr))
			}
			return nil, err
		}
		resp.Tokens = &u.Tokens
		return resp, nil
	}
}

func countriesEndpoint(store *trademark.Store) kit.Endpoint {
	return func(_ context.Context, _ any) (any, error) {
		return countriesResponse{Countries: store.Countries()}, nil
	}
}

func registerEndpoint(accounts *account.Service) kit.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(*credentialsReq)
		return accounts.Register(ctx, req.Username, req.Email)
	}
}

func loginEndpoint(accounts *account.Service) kit.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		return accounts.Login(ctx, request.(*credentialsReq).Username)
	}
}

func walletEndpoint(accounts *account.Service) kit.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		return accounts.ConnectWallet(ctx, request.(*credentialsReq).Wallet)
	}
}

func meEndpoint(accounts *account.Service) kit.Endpoint {
	return func(ctx context.Context, _ any) (any, error) {
		id := kit.GetUserID(ctx)
		if id == "" {
			return nil, ErrUnauthorized
		}
		return accounts.Current(ctx, id)
	}
}

func purchaseEndpoint(accounts *account.Service) kit.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		id := kit.GetUserID(ctx)
		if id == "" {
			return nil, ErrUnauthorized
		}
		req := request.(*purchaseReq)
		return accounts.Purchase(ctx, id, req.Package, req.Connector)
	}
}

func logoutEndpoint(accounts *account.Service) kit.Endpoint {
	return func(ctx context.Context, _ any) (any, error) {
		id := kit.GetUserID(ctx)
		if id == "" {
			return nil, ErrUnauthorized
		}
		if err := accounts.Logout(ctx, id); err != nil {
			return nil, fmt.Errorf("logout: %w", err)
		}
		return map[string]string{"status": "logged_out"}, nil
	}
}

func catalogEndpoint() kit.Endpoint {
	return func(_ context.Context, _ any) (any, error) {
		return catalogResponse{Packages: account.Packages(), Connectors: account.Connectors()}, nil
	}
}
