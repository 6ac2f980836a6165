package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/javi-app/javi-backend/api/responses"
	pkgerrors "github.com/javi-app/javi-backend/pkg/errors"
	"github.com/javi-app/javi-backend/pkg/logger"
)

// attemptCounter is the slice of the redis client the throttle needs.
type attemptCounter interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
}

// AuthRateLimitPolicy throttles one credential surface (login, register)
// inside a fixed window, counted per caller IP and per target email. Emails
// are hashed before they become redis keys so the keyspace never holds
// addresses.
type AuthRateLimitPolicy struct {
	surface    string
	window     time.Duration
	ipLimit    int
	emailLimit int
}

// NewAuthRateLimitPolicy builds a policy for the named surface. A zero window
// or all-zero limits disable the policy.
func NewAuthRateLimitPolicy(surface string, window time.Duration, ipLimit, emailLimit int) AuthRateLimitPolicy {
	surface = strings.ToLower(strings.TrimSpace(surface))
	if surface == "" {
		surface = "auth"
	}
	return AuthRateLimitPolicy{
		surface:    surface,
		window:     window,
		ipLimit:    ipLimit,
		emailLimit: emailLimit,
	}
}

func (p AuthRateLimitPolicy) enabled() bool {
	return p.window > 0 && (p.ipLimit > 0 || p.emailLimit > 0)
}

func (p AuthRateLimitPolicy) key(dimension, value string) string {
	return fmt.Sprintf("authrl:%s:%s:%s", p.surface, dimension, value)
}

// AuthRateLimit guards an auth endpoint with the policy's counters. The IP
// counter runs first so a single host hammering many emails trips early; the
// email counter spans IPs so a distributed guess at one account trips too.
func AuthRateLimit(policy AuthRateLimitPolicy, counter attemptCounter, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || counter == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if policy.ipLimit > 0 {
				if ip := callerIP(r); ip != "" {
					blocked, err := overLimit(ctx, counter, policy.key("ip", ip), policy.window, policy.ipLimit)
					if err != nil {
						responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
						return
					}
					if blocked {
						writeThrottled(ctx, logg, w, policy, "ip")
						return
					}
				}
			}

			if policy.emailLimit > 0 {
				body, err := io.ReadAll(r.Body)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request"))
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))

				if email := sniffEmail(body); email != "" {
					blocked, err := overLimit(ctx, counter, policy.key("email", hashEmail(email)), policy.window, policy.emailLimit)
					if err != nil {
						responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
						return
					}
					if blocked {
						writeThrottled(ctx, logg, w, policy, "email")
						return
					}
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func overLimit(ctx context.Context, counter attemptCounter, key string, window time.Duration, limit int) (bool, error) {
	count, err := counter.IncrWithTTL(ctx, key, window)
	if err != nil {
		return false, err
	}
	return count > int64(limit), nil
}

func writeThrottled(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, policy AuthRateLimitPolicy, dimension string) {
	if logg != nil {
		logCtx := logg.WithFields(ctx, map[string]any{
			"surface":        policy.surface,
			"dimension":      dimension,
			"window_seconds": int(policy.window.Seconds()),
		})
		logg.Warn(logCtx, "auth.throttled")
	}
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
}

// callerIP prefers proxy headers over the socket peer, which behind the load
// balancer is always the balancer itself.
func callerIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

func sniffEmail(payload []byte) string {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(body.Email))
}

func hashEmail(email string) string {
	sum := sha256.Sum256([]byte(email))
	return hex.EncodeToString(sum[:])
}
