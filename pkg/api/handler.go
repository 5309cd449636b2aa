package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/RamsisDev/Latip-Hackaton/pkg/account"
	"github.com/RamsisDev/Latip-Hackaton/pkg/kit"
	"github.com/RamsisDev/Latip-Hackaton/pkg/trademark"
)

// UserHeader carries the caller's account ID on authenticated routes.
const UserHeader = "X-User-ID"

// Options tunes the router. Zero values take defaults.
type Options struct {
	SearchCost int
	Logger     *slog.Logger
}

// NewRouter returns an http.Handler with all Latip API routes.
func NewRouter(store *trademark.Store, accounts *account.Service, opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.SearchCost <= 0 {
		opts.SearchCost = 1
	}
	wrap := func(name string, ep kit.Endpoint) kit.Endpoint {
		return kit.Chain(kit.RequestID(), kit.Logging(opts.Logger, name))(ep)
	}

	h := &handler{
		search:     wrap("search", searchEndpoint(store)),
		paidSearch: wrap("paid_search", paidSearchEndpoint(store, accounts, opts.SearchCost)),
		countries:  wrap("countries", countriesEndpoint(store)),
		register:   wrap("register", registerEndpoint(accounts)),
		login:      wrap("login", loginEndpoint(accounts)),
		wallet:     wrap("wallet", walletEndpoint(accounts)),
		me:         wrap("me", meEndpoint(accounts)),
		purchase:   wrap("purchase", purchaseEndpoint(accounts)),
		logout:     wrap("logout", logoutEndpoint(accounts)),
		catalog:    wrap("catalog", catalogEndpoint()),
		store:      store,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/search", h.handleSearch)
	mux.HandleFunc("POST /v1/search", h.handlePaidSearch)
	mux.HandleFunc("GET /v1/countries", h.handleCountries)
	mux.HandleFunc("POST /v1/accounts/register", h.handleCredentials(h.register))
	mux.HandleFunc("POST /v1/accounts/login", h.handleCredentials(h.login))
	mux.HandleFunc("POST /v1/accounts/wallet", h.handleCredentials(h.wallet))
	mux.HandleFunc("GET /v1/accounts/me", h.handleUser(h.me, nil))
	mux.HandleFunc("POST /v1/accounts/purchase", h.handleUser(h.purchase, func() any { return &purchaseReq{} }))
	mux.HandleFunc("POST /v1/accounts/logout", h.handleUser(h.logout, nil))
	mux.HandleFunc("GET /v1/accounts/catalog", h.handleCatalog)
	mux.HandleFunc("GET /v1/health", h.handleHealth)

	return cors(mux)
}

type handler struct {
	search     kit.Endpoint
	paidSearch kit.Endpoint
	countries  kit.Endpoint
	register   kit.Endpoint
	login      kit.Endpoint
	wallet     kit.Endpoint
	me         kit.Endpoint
	purchase   kit.Endpoint
	logout     kit.Endpoint
	catalog    kit.Endpoint
	store      *trademark.Store
}

// --- search ---

func (h *handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resp, err := h.search(r.Context(), &searchReq{Query: q.Get("q"), Region: q.Get("region")})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handlePaidSearch(w http.ResponseWriter, r *http.Request) {
	var req searchReq
	if !decodeBody(w, r, &req) {
		return
	}
	ctx := kit.WithUserID(r.Context(), r.Header.Get(UserHeader))
	resp, err := h.paidSearch(ctx, &req)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- countries ---

func (h *handler) handleCountries(w http.ResponseWriter, r *http.Request) {
	resp, err := h.countries(r.Context(), nil)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- accounts ---

func (h *handler) handleCredentials(ep kit.Endpoint) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsReq
		if !decodeBody(w, r, &req) {
			return
		}
		resp, err := ep(r.Context(), &req)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// handleUser serves a route that acts on the caller named by UserHeader.
// newReq, when set, allocates the JSON body to decode.
func (h *handler) handleUser(ep kit.Endpoint, newReq func() any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req any
		if newReq != nil {
			req = newReq()
			if !decodeBody(w, r, req) {
				return
			}
		}
		ctx := kit.WithUserID(r.Context(), r.Header.Get(UserHeader))
		resp, err := ep(ctx, req)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *handler) handleCatalog(w http.ResponseWriter, r *http.Request) {
	resp, err := h.catalog(r.Context(), nil)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- health ---

type healthResponse struct {
	Status    string `json:"status"`
	Countries int    `json:"countries"`
	Records   int    `json:"records"`
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Countries: h.store.CountryCount(),
		Records:   h.store.TotalRecords(),
	})
}

// --- helpers ---

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 64*1024) // 64 KiB max
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrEmptyQuery),
		errors.Is(err, account.ErrInvalidUsername),
		errors.Is(err, account.ErrInvalidWallet),
		errors.Is(err, account.ErrUnknownPackage),
		errors.Is(err, account.ErrUnknownConnector):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, account.ErrInsufficientTokens):
		return http.StatusPaymentRequired
	case errors.Is(err, account.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, account.ErrUsernameTaken):
		return http.StatusConflict
	case errors.Is(err, account.ErrConnectorUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeErr(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// cors is a simple CORS middleware for browser-based clients.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", strings.Join([]string{"Content-Type", UserHeader}, ", "))
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
