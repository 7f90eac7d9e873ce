// Package login implements the stateless login flow (spec.md §4.3):
// decode one Login Request, decide waitlist/ban/verification outcomes,
// and hand the resulting character selection to the game endpoint via a
// by-peer-IP SelectionRegistry. Grounded on the donor's
// internal/handler/auth.go action-byte dispatch and named result-code
// style, generalized to this protocol's two-endpoint handoff.
package login

import (
	"net"
	"sync"
	"time"
)

// Result is the outcome of a login attempt.
type Result uint8

const (
	ResultSuccess Result = iota
	ResultWaitlist
	ResultAccountBanned
	ResultAccountNotAssigned
	ResultBadCredentials
)

// CharacterSummary is one line of the post-login character list.
type CharacterSummary struct {
	Name        string
	WorldName   string
	WorldAddress string
}

// LoginSelection is the record inserted into the SelectionRegistry on a
// successful login, consumed by the next game-endpoint connection from the
// same peer IP.
type LoginSelection struct {
	Account    string
	Premium    bool
	GM         bool
	TestGod    bool
	Characters []CharacterSummary
	insertedAt time.Time
}

// AccountLookup is the external persistence collaborator (spec.md §1):
// account verification, ban checks, and character listing are referenced,
// not specified, here.
type AccountLookup interface {
	Authenticate(account, password string) (ok bool, premium, gm, testGod bool, err error)
	IsBanned(account string) (banned bool, err error)
	Characters(account string) ([]CharacterSummary, error)
	AutoCreate(account, password string) error
}

// Config controls waitlist/world-address/auto-create behavior.
type Config struct {
	WaitlistThreshold  int
	WorldName          string
	WorldAddress       string
	AutoCreateAccounts bool
}

// Flow decides login outcomes and feeds the SelectionRegistry.
type Flow struct {
	cfg      Config
	accounts AccountLookup
	registry *SelectionRegistry
	activeLoginCount func() int
}

// NewFlow builds a login Flow.
func NewFlow(cfg Config, accounts AccountLookup, registry *SelectionRegistry, activeLoginCount func() int) *Flow {
	return &Flow{cfg: cfg, accounts: accounts, registry: registry, activeLoginCount: activeLoginCount}
}

// Attempt decides the outcome of one login request and, on success,
// inserts a LoginSelection keyed by peerIP.
func (f *Flow) Attempt(peerIP, account, password string) (Result, int, error) {
	if f.activeLoginCount() >= f.cfg.WaitlistThreshold {
		return ResultWaitlist, f.activeLoginCount() - f.cfg.WaitlistThreshold + 1, nil
	}
	banned, err := f.accounts.IsBanned(account)
	if err != nil {
		return ResultBadCredentials, 0, err
	}
	if banned {
		return ResultAccountBanned, 0, nil
	}
	ok, premium, gm, testGod, err := f.accounts.Authenticate(account, password)
	if err != nil {
		return ResultBadCredentials, 0, err
	}
	if !ok {
		if f.cfg.AutoCreateAccounts {
			if err := f.accounts.AutoCreate(account, password); err != nil {
				return ResultAccountNotAssigned, 0, err
			}
			ok, premium, gm, testGod = true, false, false, false
		} else {
			return ResultAccountNotAssigned, 0, nil
		}
	}

	chars, err := f.accounts.Characters(account)
	if err != nil {
		return ResultBadCredentials, 0, err
	}
	worldAddr := ResolveWorldAddress(f.cfg.WorldAddress, peerIP)
	for i := range chars {
		chars[i].WorldName = f.cfg.WorldName
		chars[i].WorldAddress = worldAddr
	}

	f.registry.Put(peerIP, LoginSelection{
		Account:    account,
		Premium:    premium,
		GM:         gm,
		TestGod:    testGod,
		Characters: chars,
	})
	return ResultSuccess, 0, nil
}

// ResolveWorldAddress substitutes the peer's own IPv4 (or 127.0.0.1 if
// none) when the configured world host is 0.0.0.0, ::, or empty, so
// clients receive an address they can actually reach (spec.md §4.3).
func ResolveWorldAddress(configured, peerIP string) string {
	host, port, err := net.SplitHostPort(configured)
	if err != nil {
		host, port = configured, ""
	}
	switch host {
	case "0.0.0.0", "::", "":
		ip := net.ParseIP(peerIP)
		replacement := "127.0.0.1"
		if ip != nil && ip.To4() != nil {
			replacement = ip.String()
		}
		if port == "" {
			return replacement
		}
		return net.JoinHostPort(replacement, port)
	default:
		return configured
	}
}

// SelectionRegistry is a by-peer-IP handoff from the login endpoint to the
// game endpoint, with a TTL sweep for unclaimed selections.
type SelectionRegistry struct {
	mu  sync.Mutex
	ttl time.Duration
	m   map[string]LoginSelection
	now func() time.Time
}

// NewSelectionRegistry builds a registry with the given unclaimed-entry TTL.
func NewSelectionRegistry(ttl time.Duration) *SelectionRegistry {
	return &SelectionRegistry{
		ttl: ttl,
		m:   make(map[string]LoginSelection),
		now: time.Now,
	}
}

// Put inserts (or replaces) the selection for peerIP.
func (r *SelectionRegistry) Put(peerIP string, sel LoginSelection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sel.insertedAt = r.now()
	r.m[peerIP] = sel
}

// Take consumes (removes) the selection for peerIP, if any and not expired.
func (r *SelectionRegistry) Take(peerIP string) (LoginSelection, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sel, ok := r.m[peerIP]
	if !ok {
		return LoginSelection{}, false
	}
	delete(r.m, peerIP)
	if r.ttl > 0 && r.now().Sub(sel.insertedAt) > r.ttl {
		return LoginSelection{}, false
	}
	return sel, true
}

// Peek reports the selection for peerIP without consuming it, so the login
// endpoint can render a reply from the same Attempt that populated the
// registry; the game endpoint is what actually calls Take.
func (r *SelectionRegistry) Peek(peerIP string) (LoginSelection, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sel, ok := r.m[peerIP]
	if !ok {
		return LoginSelection{}, false
	}
	if r.ttl > 0 && r.now().Sub(sel.insertedAt) > r.ttl {
		return LoginSelection{}, false
	}
	return sel, true
}

// Sweep drops entries older than the configured TTL without claiming them.
func (r *SelectionRegistry) Sweep() {
	if r.ttl <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	for ip, sel := range r.m {
		if now.Sub(sel.insertedAt) > r.ttl {
			delete(r.m, ip)
		}
	}
}
