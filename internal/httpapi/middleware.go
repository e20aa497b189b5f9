package httpapi

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync/atomic"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/time/rate"
)

const (
	contextUserID = "user_id"

	rateLimitMessage = "Too many requests, please try again later."
	deniedMessage    = "Access denied: Your IP is not whitelisted."
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64
}

// RateLimiterStore keeps one token bucket per client address. It implements
// middleware.RateLimiterStore. Idle visitors are dropped after one window.
type RateLimiterStore struct {
	visitors    *xsync.MapOf[string, *visitor]
	limit       rate.Limit
	burst       int
	expiresIn   time.Duration
	lastCleanup atomic.Int64
	now         func() time.Time
}

// NewRateLimiterStore allows max requests per window for each client, with
// the bucket refilling evenly across the window.
func NewRateLimiterStore(window time.Duration, max int) *RateLimiterStore {
	return &RateLimiterStore{
		visitors:  xsync.NewMapOf[string, *visitor](),
		limit:     rate.Every(window / time.Duration(max)),
		burst:     max,
		expiresIn: window,
		now:       time.Now,
	}
}

// Allow reports whether identifier may perform one more request now.
func (s *RateLimiterStore) Allow(identifier string) (bool, error) {
	now := s.now()
	v, _ := s.visitors.LoadOrCompute(identifier, func() *visitor {
		return &visitor{limiter: rate.NewLimiter(s.limit, s.burst)}
	})
	v.lastSeen.Store(now.UnixNano())
	allowed := v.limiter.AllowN(now, 1)
	s.cleanup(now)
	return allowed, nil
}

// Len returns the number of tracked clients.
func (s *RateLimiterStore) Len() int {
	return s.visitors.Size()
}

func (s *RateLimiterStore) cleanup(now time.Time) {
	last := s.lastCleanup.Load()
	if now.UnixNano()-last < int64(s.expiresIn) {
		return
	}
	if !s.lastCleanup.CompareAndSwap(last, now.UnixNano()) {
		return
	}
	s.visitors.Range(func(key string, v *visitor) bool {
		if now.UnixNano()-v.lastSeen.Load() > int64(s.expiresIn) {
			s.visitors.Delete(key)
		}
		return true
	})
}

// RateLimit rejects clients over their budget with a 429.
func RateLimit(store middleware.RateLimiterStore) echo.MiddlewareFunc {
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return goerrors.New(rateLimitMessage, goerrors.CategoryRateLimit).
				WithCode(http.StatusTooManyRequests).
				WithTextCode("RATE_LIMITED")
		},
	})
}

// AllowList admits requests whose client address matches one of the
// configured addresses or networks.
type AllowList struct {
	addrs    map[netip.Addr]struct{}
	prefixes []netip.Prefix
}

// NewAllowList parses entries such as "10.0.0.7", "::1" or "10.0.0.0/8".
func NewAllowList(entries []string) (*AllowList, error) {
	list := &AllowList{addrs: make(map[netip.Addr]struct{}, len(entries))}
	for _, raw := range entries {
		entry := strings.TrimSpace(raw)
		if entry == "" {
			continue
		}
		if strings.Contains(entry, "/") {
			prefix, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid whitelisted network "+entry)
			}
			list.prefixes = append(list.prefixes, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid whitelisted address "+entry)
		}
		list.addrs[addr.Unmap()] = struct{}{}
	}
	return list, nil
}

// Allowed reports whether ip is on the list. Unparseable addresses are denied.
func (l *AllowList) Allowed(ip string) bool {
	addr, err := netip.ParseAddr(strings.TrimSpace(ip))
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	if _, ok := l.addrs[addr]; ok {
		return true
	}
	for _, prefix := range l.prefixes {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// Middleware answers 403 for clients that are not on the list.
func (l *AllowList) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !l.Allowed(c.RealIP()) {
				return goerrors.New(deniedMessage, goerrors.CategoryAuthz).
					WithCode(http.StatusForbidden).
					WithTextCode("IP_NOT_ALLOWED")
			}
			return next(c)
		}
	}
}

// ClientIPExtractor resolves the client address used by the allow-list and
// the rate limiter. Without trusted proxies the peer address is used and
// forwarding headers are ignored. With trusted proxies, X-Forwarded-For is
// walked from the right past the listed addresses or networks only.
func ClientIPExtractor(trustedProxies []string) (echo.IPExtractor, error) {
	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, raw := range trustedProxies {
		entry := strings.TrimSpace(raw)
		if entry == "" {
			continue
		}
		var prefix netip.Prefix
		if strings.Contains(entry, "/") {
			p, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid trusted proxy network "+entry)
			}
			prefix = p.Masked()
		} else {
			addr, err := netip.ParseAddr(entry)
			if err != nil {
				return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid trusted proxy address "+entry)
			}
			addr = addr.Unmap()
			prefix = netip.PrefixFrom(addr, addr.BitLen())
		}
		_, ipNet, err := net.ParseCIDR(prefix.String())
		if err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid trusted proxy "+entry)
		}
		opts = append(opts, echo.TrustIPRange(ipNet))
	}

	if len(opts) == 3 {
		return echo.ExtractIPDirect(), nil
	}
	return echo.ExtractIPFromXFFHeader(opts...), nil
}

// RequireToken verifies the bearer token and stores the user id on the
// context for the handlers.
func RequireToken(tokens TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			scheme, raw, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
				return goerrors.New("Access token is required", goerrors.CategoryAuth).
					WithCode(http.StatusUnauthorized).
					WithTextCode("MISSING_TOKEN")
			}

			userID, err := tokens.Verify(strings.TrimSpace(raw))
			if err != nil {
				return err
			}

			c.Set(contextUserID, userID)
			return next(c)
		}
	}
}

// UserID returns the authenticated user id set by RequireToken.
func UserID(c echo.Context) (int64, bool) {
	id, ok := c.Get(contextUserID).(int64)
	return id, ok && id > 0
}
