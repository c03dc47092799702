// Package gate is the authorization gate: it checks admin identity, issues and dispatches
// one-time codes, promotes sessions on a verified code and prechecks privileged actions.
package gate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ninadrathod/my-website/internal/audit"
	"github.com/ninadrathod/my-website/internal/devotp"
	"github.com/ninadrathod/my-website/internal/notify"
	"github.com/ninadrathod/my-website/internal/otp"
	"github.com/ninadrathod/my-website/internal/policy/engine"
	"github.com/ninadrathod/my-website/internal/security"
	"github.com/ninadrathod/my-website/internal/session"
	"github.com/ninadrathod/my-website/internal/telemetry"
)

const (
	defaultSessionTTL    = 15 * time.Minute
	defaultNotifyTimeout = 10 * time.Second
	defaultSubject       = "Your admin login code"
)

// Invalidation causes, reported as the Outcome of session_invalidated events.
const (
	CauseLogout       = "logout"
	CausePrecheck     = "precheck"
	CauseFailedVerify = "failed_verify"
)

// Config holds the gate's tunables.
type Config struct {
	AdminEmails   []string
	SessionTTL    time.Duration
	NotifyTimeout time.Duration
	MailSubject   string
}

// Deps are the gate's collaborators. Sessions, Codes, Grants and Policy are required.
// DevOTP switches on dev mode: codes are parked there instead of being sent.
type Deps struct {
	Sessions *session.Ledger
	Codes    *otp.Ledger
	Grants   *security.GrantProvider
	Policy   engine.Evaluator
	Notifier notify.Notifier
	DevOTP   devotp.Store
	Events   *telemetry.Dispatcher
	Audit    audit.AuditLogger
	Log      *zap.Logger
	Now      func() time.Time
}

// Gate implements the ANONYMOUS -> EMAIL_SUBMITTED -> OTP_SENT -> AUTHORIZED flow.
type Gate struct {
	sessions      *session.Ledger
	codes         *otp.Ledger
	grants        *security.GrantProvider
	policy        engine.Evaluator
	notifier      notify.Notifier
	devOTP        devotp.Store
	events        *telemetry.Dispatcher
	audit         audit.AuditLogger
	log           *zap.Logger
	nowF          func() time.Time
	admins        map[string]struct{}
	sessionTTL    time.Duration
	notifyTimeout time.Duration
	subject       string
}

// CodeSent is the result of SendOTP.
type CodeSent struct {
	Email     string
	ExpiresAt time.Time
	// DevMode is true when the code was parked in the dev store instead of sent.
	DevMode bool
}

// Verified is the result of a successful VerifyOTP.
type Verified struct {
	Email     string
	ExpiresAt time.Time
	Grant     string
}

// NormalizeEmail trims and lower-cases an address for allow-list comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// New builds a gate. It fails when the allow-list is empty or a required dependency is missing.
func New(cfg Config, deps Deps) (*Gate, error) {
	if deps.Sessions == nil || deps.Codes == nil || deps.Grants == nil || deps.Policy == nil {
		return nil, errors.New("gate: sessions, codes, grants and policy are required")
	}
	if deps.Notifier == nil && deps.DevOTP == nil {
		return nil, errors.New("gate: a notifier is required outside dev mode")
	}
	admins := make(map[string]struct{}, len(cfg.AdminEmails))
	for _, e := range cfg.AdminEmails {
		if n := NormalizeEmail(e); n != "" {
			admins[n] = struct{}{}
		}
	}
	if len(admins) == 0 {
		return nil, errors.New("gate: at least one admin email is required")
	}
	g := &Gate{
		sessions:      deps.Sessions,
		codes:         deps.Codes,
		grants:        deps.Grants,
		policy:        deps.Policy,
		notifier:      deps.Notifier,
		devOTP:        deps.DevOTP,
		events:        deps.Events,
		audit:         deps.Audit,
		log:           deps.Log,
		nowF:          deps.Now,
		admins:        admins,
		sessionTTL:    cfg.SessionTTL,
		notifyTimeout: cfg.NotifyTimeout,
		subject:       cfg.MailSubject,
	}
	if g.log == nil {
		g.log = zap.NewNop()
	}
	if g.nowF == nil {
		g.nowF = time.Now
	}
	if g.sessionTTL <= 0 {
		g.sessionTTL = defaultSessionTTL
	}
	if g.notifyTimeout <= 0 {
		g.notifyTimeout = defaultNotifyTimeout
	}
	if g.subject == "" {
		g.subject = defaultSubject
	}
	return g, nil
}

// SessionTTL is the authorization lifetime written on verification.
func (g *Gate) SessionTTL() time.Duration { return g.sessionTTL }

// IsAdmin reports whether email is on the allow-list, ignoring case and surrounding space.
func (g *Gate) IsAdmin(email string) bool {
	_, ok := g.admins[NormalizeEmail(email)]
	return ok
}

// Exists reports whether the ledger holds any record for sessionID.
func (g *Gate) Exists(ctx context.Context, sessionID string) (bool, error) {
	id, err := session.ParseID(sessionID)
	if err != nil {
		return false, err
	}
	ok, err := g.sessions.Exists(ctx, id)
	if err != nil {
		return false, storeErr(err)
	}
	return ok, nil
}

// Validity reports whether sessionID is authorized now.
func (g *Gate) Validity(ctx context.Context, sessionID string) (session.Validity, error) {
	id, err := session.ParseID(sessionID)
	if err != nil {
		return session.Validity{}, err
	}
	v, err := g.sessions.IsValid(ctx, id)
	if err != nil {
		return session.Validity{}, storeErr(err)
	}
	return v, nil
}

// SendOTP issues a code for sessionID and dispatches it to email. A code whose dispatch fails
// or times out is rolled back before ErrDispatchFailed is returned.
func (g *Gate) SendOTP(ctx context.Context, sessionID, email string) (*CodeSent, error) {
	id, err := session.ParseID(sessionID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(email) == "" {
		return nil, ErrMissingEmail
	}
	addr := NormalizeEmail(email)
	if !g.IsAdmin(addr) {
		if g.audit != nil {
			g.audit.LogEvent(ctx, id, "", "otp_requested", "not_admin", "")
		}
		return nil, ErrNotAdmin
	}

	iss, err := g.codes.Issue(ctx, id, addr)
	if err != nil {
		return nil, storeErr(err)
	}

	if g.devOTP != nil {
		g.devOTP.Put(ctx, id, iss.Code, iss.ExpiresAt)
		g.record(ctx, telemetry.EventOTPIssued, id, addr, "", "dev", map[string]string{"channel": "dev"})
		return &CodeSent{Email: email, ExpiresAt: iss.ExpiresAt, DevMode: true}, nil
	}

	sendCtx, cancel := context.WithTimeout(ctx, g.notifyTimeout)
	defer cancel()
	msg := notify.CodeMessage(addr, g.subject, iss.Code, g.codeMinutes(iss))
	if err := g.notifier.Send(sendCtx, msg); err != nil {
		// Roll back even if the request context is gone.
		if derr := g.codes.Discard(context.WithoutCancel(ctx), iss); derr != nil {
			g.log.Error("gate: rollback of undelivered code failed", zap.String("session_id", id), zap.Error(derr))
		}
		g.log.Warn("gate: code dispatch failed", zap.String("session_id", id), zap.Error(err))
		g.record(ctx, telemetry.EventOTPDispatchFailed, id, addr, "", "rolled_back", nil)
		return nil, fmt.Errorf("%w: %v", ErrDispatchFailed, err)
	}
	g.record(ctx, telemetry.EventOTPIssued, id, addr, "", "sent", nil)
	return &CodeSent{Email: email, ExpiresAt: iss.ExpiresAt}, nil
}

func (g *Gate) codeMinutes(iss *otp.Issued) int {
	m := int(iss.ExpiresAt.Sub(g.nowF()).Round(time.Minute) / time.Minute)
	if m < 1 {
		m = 1
	}
	return m
}

// VerifyOTP consumes the code held for sessionID. On a match the session is authorized until
// now + SessionTTL and a grant is returned; otherwise the session is invalidated and
// ErrInvalidCode is returned.
func (g *Gate) VerifyOTP(ctx context.Context, sessionID, code string) (*Verified, error) {
	id, err := session.ParseID(sessionID)
	if err != nil {
		return nil, err
	}
	v, err := g.codes.Verify(ctx, id, strings.TrimSpace(code))
	if errors.Is(err, otp.ErrMalformedCode) {
		return nil, ErrMalformedCode
	}
	if err != nil {
		return nil, storeErr(err)
	}
	if g.devOTP != nil {
		g.devOTP.Delete(ctx, id)
	}

	if !v.OK() {
		g.record(ctx, telemetry.EventOTPRejected, id, v.Email, "", string(v.Outcome), nil)
		if err := g.sessions.Invalidate(ctx, id); err != nil {
			return nil, storeErr(err)
		}
		g.record(ctx, telemetry.EventSessionInvalidated, id, v.Email, "", CauseFailedVerify, nil)
		return nil, ErrInvalidCode
	}

	// Grants carry second-precision timestamps; truncating keeps Authorize's expiry identical.
	verifiedAt := g.nowF().UTC().Truncate(time.Second)
	expiresAt := verifiedAt.Add(g.sessionTTL)
	if err := g.sessions.UpsertExpiry(ctx, id, expiresAt); err != nil {
		return nil, storeErr(err)
	}
	grant, err := g.grants.Issue(id, verifiedAt)
	if err != nil {
		return nil, fmt.Errorf("gate: sign grant: %w", err)
	}
	g.record(ctx, telemetry.EventOTPVerified, id, v.Email, "", string(v.Outcome), nil)
	g.record(ctx, telemetry.EventSessionAuthorized, id, v.Email, "", "verified", nil)
	return &Verified{Email: v.Email, ExpiresAt: expiresAt, Grant: grant}, nil
}

// Authorize re-applies the expiry bound by grant to sessionID. It never extends an existing
// record and never revives an invalidated one.
func (g *Gate) Authorize(ctx context.Context, sessionID, grant string) (session.Validity, error) {
	id, err := session.ParseID(sessionID)
	if err != nil {
		return session.Validity{}, err
	}
	gr, err := g.grants.Validate(grant)
	if err != nil || gr.SessionID != id {
		return session.Validity{}, ErrInvalidGrant
	}
	v, err := g.sessions.Authorize(ctx, id, gr.VerifiedAt.Add(g.sessionTTL))
	if err != nil {
		return session.Validity{}, storeErr(err)
	}
	if !v.Valid {
		return v, ErrUnauthorized
	}
	g.record(ctx, telemetry.EventSessionAuthorized, id, "", "", "grant", map[string]string{"jti": gr.ID})
	return v, nil
}

// Logout invalidates sessionID. Idempotent.
func (g *Gate) Logout(ctx context.Context, sessionID string) error {
	id, err := session.ParseID(sessionID)
	if err != nil {
		return err
	}
	if err := g.sessions.Invalidate(ctx, id); err != nil {
		return storeErr(err)
	}
	g.record(ctx, telemetry.EventSessionInvalidated, id, "", "", CauseLogout, nil)
	return nil
}

// RequirePrivilege must run before the side effect of a privileged action. When the session is
// not valid it invalidates the session and returns ErrUnauthorized.
func (g *Gate) RequirePrivilege(ctx context.Context, sessionID string, action engine.Action) error {
	id, err := session.ParseID(sessionID)
	if err != nil {
		return err
	}
	v, err := g.sessions.IsValid(ctx, id)
	if err != nil {
		return storeErr(err)
	}
	d, err := g.policy.Evaluate(ctx, engine.Input{
		Action:  action,
		Session: engine.SessionInput{Valid: v.Valid, Reason: string(v.Reason)},
	})
	if err != nil {
		g.log.Error("gate: policy evaluation failed", zap.String("action", string(action)), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrPolicyUnavailable, err)
	}
	if d.Allowed {
		if d.Privileged {
			g.record(ctx, telemetry.EventPrivilegedAllowed, id, "", string(action), d.Reason, nil)
		}
		return nil
	}

	g.record(ctx, telemetry.EventPrivilegedDenied, id, "", string(action), d.Reason,
		map[string]string{"session_reason": string(v.Reason)})
	if v.Valid {
		return ErrForbidden
	}
	if err := g.sessions.Invalidate(ctx, id); err != nil {
		return storeErr(err)
	}
	g.record(ctx, telemetry.EventSessionInvalidated, id, "", string(action), CausePrecheck, nil)
	return ErrUnauthorized
}

// record emits the event and writes the matching audit row. Both are best-effort.
func (g *Gate) record(ctx context.Context, typ telemetry.EventType, sessionID, email, action, outcome string, meta map[string]string) {
	e := telemetry.NewEvent(typ, sessionID, g.nowF())
	e.Email = email
	e.Action = action
	e.Outcome = outcome
	e.Metadata = meta
	g.events.Emit(e)

	if g.audit == nil {
		return
	}
	var metadata string
	if len(meta) > 0 {
		if b, err := json.Marshal(meta); err == nil {
			metadata = string(b)
		}
	}
	name := string(typ)
	if action != "" {
		name += ":" + action
	}
	g.audit.LogEvent(ctx, sessionID, email, name, outcome, metadata)
}

func storeErr(err error) error {
	if errors.Is(err, session.ErrInvalidSessionID) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}
