// Package gate decides, per request, whether a path may be served or the
// caller must be sent back to the landing page. Every failure redirects.
package gate

import (
	"context"
	"fmt"
	"path"
	"strings"

	"case-portal-be/internal/entity"
	"case-portal-be/internal/pkg/logger"
	"case-portal-be/pkg/session"

	"github.com/google/uuid"
)

// Rule restricts a path prefix to a set of roles. Rules are checked in order
// and the first match wins.
type Rule struct {
	Prefix string
	Roles  []entity.UserRole
}

func (r Rule) allows(role entity.UserRole) bool {
	for _, allowed := range r.Roles {
		if allowed == role {
			return true
		}
	}
	return false
}

type Config struct {
	PublicPaths    []string // exact match
	PublicPrefixes []string
	Rules          []Rule
	RedirectTo     string
}

func DefaultRules() []Rule {
	return []Rule{
		{Prefix: "/admin-dashboard", Roles: []entity.UserRole{entity.UserRoleAdmin}},
		{Prefix: "/staff-dashboard", Roles: []entity.UserRole{entity.UserRoleStaff, entity.UserRoleAdmin}},
		{Prefix: "/client-dashboard", Roles: []entity.UserRole{entity.UserRoleClient, entity.UserRoleAdmin}},
		{Prefix: "/api/admin", Roles: []entity.UserRole{entity.UserRoleAdmin}},
		{Prefix: "/api/staff", Roles: []entity.UserRole{entity.UserRoleStaff, entity.UserRoleAdmin}},
		{Prefix: "/api/client", Roles: []entity.UserRole{entity.UserRoleClient, entity.UserRoleAdmin}},
	}
}

type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*session.Session, error)
}

// ProfileLookup returns nil, nil when the user has no profile row.
type ProfileLookup interface {
	LookupRole(ctx context.Context, userID uuid.UUID) (*entity.UserRole, error)
}

type Outcome string

const (
	Allow    Outcome = "allow"
	Redirect Outcome = "redirect"
)

type Reason string

const (
	ReasonPublic        Reason = "public"
	ReasonAuthenticated Reason = "authenticated"
	ReasonRoleAllowed   Reason = "role_allowed"
	ReasonNoSession     Reason = "no_session"
	ReasonNoProfile     Reason = "no_profile"
	ReasonLookupFailed  Reason = "lookup_failed"
	ReasonRoleDenied    Reason = "role_denied"
	ReasonPanic         Reason = "panic"
)

type Decision struct {
	Outcome    Outcome
	RedirectTo string
	Reason     Reason
	// Session and Role are set when known. Role is only looked up for ruled paths.
	Session *session.Session
	Role    *entity.UserRole
}

func (d Decision) Allowed() bool { return d.Outcome == Allow }

type Gate struct {
	cfg      Config
	sessions SessionResolver
	profiles ProfileLookup
	logger   logger.ILogger
}

func New(cfg Config, sessions SessionResolver, profiles ProfileLookup, logger logger.ILogger) *Gate {
	if cfg.RedirectTo == "" {
		cfg.RedirectTo = "/"
	}
	cfg.PublicPaths = canonicalAll(cfg.PublicPaths)
	cfg.PublicPrefixes = canonicalAll(cfg.PublicPrefixes)
	rules := make([]Rule, len(cfg.Rules))
	for i, r := range cfg.Rules {
		rules[i] = Rule{Prefix: CanonicalPath(r.Prefix), Roles: r.Roles}
	}
	cfg.Rules = rules
	return &Gate{cfg: cfg, sessions: sessions, profiles: profiles, logger: logger}
}

// Decide never returns an error and never mutates state.
func (g *Gate) Decide(ctx context.Context, path, token string) (d Decision) {
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("GATE", "Recovered panic while authorizing request", map[string]interface{}{
				"path":  path,
				"panic": fmt.Sprint(r),
			})
			d = g.redirect(ReasonPanic)
		}
	}()

	path = CanonicalPath(path)
	if g.isPublic(path) {
		return Decision{Outcome: Allow, Reason: ReasonPublic}
	}

	s, err := g.sessions.Resolve(ctx, token)
	if err != nil || s == nil {
		return g.redirect(ReasonNoSession)
	}

	rule, ok := g.match(path)
	if !ok {
		return Decision{Outcome: Allow, Reason: ReasonAuthenticated, Session: s}
	}

	role, err := g.profiles.LookupRole(ctx, s.UserID)
	if err != nil {
		g.logger.Warn("GATE", "Profile lookup failed", map[string]interface{}{
			"path":    path,
			"user_id": s.UserID.String(),
			"error":   err.Error(),
		})
		return g.redirect(ReasonLookupFailed)
	}
	if role == nil {
		return g.redirect(ReasonNoProfile)
	}
	if !rule.allows(*role) {
		return g.redirect(ReasonRoleDenied)
	}

	return Decision{Outcome: Allow, Reason: ReasonRoleAllowed, Session: s, Role: role}
}

func (g *Gate) redirect(reason Reason) Decision {
	return Decision{Outcome: Redirect, RedirectTo: g.cfg.RedirectTo, Reason: reason}
}

func (g *Gate) isPublic(path string) bool {
	for _, p := range g.cfg.PublicPaths {
		if path == p {
			return true
		}
	}
	for _, prefix := range g.cfg.PublicPrefixes {
		if hasPathPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (g *Gate) match(path string) (Rule, bool) {
	for _, rule := range g.cfg.Rules {
		if hasPathPrefix(path, rule.Prefix) {
			return rule, true
		}
	}
	return Rule{}, false
}

// CanonicalPath lower-cases and cleans a request path. Routing is case
// insensitive and tolerates "//" and "..", so matching must see the same
// path the router resolves. A trailing slash is kept.
func CanonicalPath(p string) string {
	if p == "" {
		return "/"
	}
	lower := strings.ToLower(p)
	cleaned := path.Clean("/" + lower)
	if strings.HasSuffix(lower, "/") && cleaned != "/" {
		cleaned += "/"
	}
	return cleaned
}

func canonicalAll(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p != "" {
			out = append(out, CanonicalPath(p))
		}
	}
	return out
}

// hasPathPrefix matches whole segments, so "/admin-dashboard" covers
// "/admin-dashboard/users" but not "/admin-dashboardx". A prefix ending in
// "/" is matched as plain text.
func hasPathPrefix(path, prefix string) bool {
	if prefix == "" {
		return false
	}
	if strings.HasSuffix(prefix, "/") {
		return strings.HasPrefix(path, prefix)
	}
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
