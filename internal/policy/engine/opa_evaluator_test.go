package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
)

func newDefault(t *testing.T) *OPAEvaluator {
	t.Helper()
	e, err := NewOPAEvaluator(context.Background(), "")
	if err != nil {
		t.Fatalf("NewOPAEvaluator: %v", err)
	}
	return e
}

func TestOPAEvaluator_HealthCheck(t *testing.T) {
	if err := newDefault(t).HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
}

func TestOPAEvaluator_DefaultPolicy(t *testing.T) {
	e := newDefault(t)
	testCases := []struct {
		name           string
		in             Input
		wantAllowed    bool
		wantPrivileged bool
		wantReason     string
	}{
		{"list anonymous", Input{Action: ActionGalleryList}, true, false, ReasonAllowed},
		{"list valid", Input{Action: ActionGalleryList, Session: SessionInput{Valid: true}}, true, false, ReasonAllowed},
		{"upload valid", Input{Action: ActionGalleryUpload, Session: SessionInput{Valid: true}}, true, true, ReasonAllowed},
		{"upload expired", Input{Action: ActionGalleryUpload, Session: SessionInput{Reason: "expired"}}, false, true, ReasonSessionNotValid},
		{"delete valid", Input{Action: ActionGalleryDelete, Session: SessionInput{Valid: true}}, true, true, ReasonAllowed},
		{"delete not found", Input{Action: ActionGalleryDelete, Session: SessionInput{Reason: "not_found"}}, false, true, ReasonSessionNotValid},
		{"unknown action", Input{Action: "gallery.rename", Session: SessionInput{Valid: true}}, false, false, ReasonUnknownAction},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := e.Evaluate(context.Background(), tc.in)
			if err != nil {
				t.Fatalf("Evaluate: %v", err)
			}
			if d.Allowed != tc.wantAllowed {
				t.Errorf("Allowed = %v, want %v", d.Allowed, tc.wantAllowed)
			}
			if d.Privileged != tc.wantPrivileged {
				t.Errorf("Privileged = %v, want %v", d.Privileged, tc.wantPrivileged)
			}
			if d.Reason != tc.wantReason {
				t.Errorf("Reason = %q, want %q", d.Reason, tc.wantReason)
			}
		})
	}
}

func TestOPAEvaluator_CustomPolicy(t *testing.T) {
	lockdown := `package portfolio.gate

decision := {"allow": false, "privileged": true, "reason": "maintenance"}
`
	e, err := NewOPAEvaluator(context.Background(), lockdown)
	if err != nil {
		t.Fatalf("NewOPAEvaluator: %v", err)
	}
	d, err := e.Evaluate(context.Background(), Input{Action: ActionGalleryUpload, Session: SessionInput{Valid: true}})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if d.Allowed || d.Reason != "maintenance" {
		t.Errorf("Decision = %+v, want denied for maintenance", d)
	}
}

func TestOPAEvaluator_MissingDecision(t *testing.T) {
	e, err := NewOPAEvaluator(context.Background(), "package portfolio.gate\n\nallow := true\n")
	if err != nil {
		t.Fatalf("NewOPAEvaluator: %v", err)
	}
	d, err := e.Evaluate(context.Background(), Input{Action: ActionGalleryList})
	if !errors.Is(err, ErrNoDecision) {
		t.Errorf("Evaluate err = %v, want ErrNoDecision", err)
	}
	if d.Allowed {
		t.Error("failed evaluation must deny")
	}
	if err := e.HealthCheck(context.Background()); err == nil {
		t.Error("HealthCheck should fail without a decision")
	}
}

func TestNewOPAEvaluator_CompileError(t *testing.T) {
	if _, err := NewOPAEvaluator(context.Background(), "package portfolio.gate\n\ndecision := {"); err == nil {
		t.Fatal("invalid rego should fail to compile")
	}
}

func TestLoadPolicy(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/etc/gate/policy.rego", []byte("package portfolio.gate\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	src, err := LoadPolicy(fs, "")
	if err != nil || src != DefaultPolicy {
		t.Errorf("LoadPolicy(empty) should return the default policy, err=%v", err)
	}
	src, err = LoadPolicy(fs, "/etc/gate/policy.rego")
	if err != nil {
		t.Fatalf("LoadPolicy: %v", err)
	}
	if src != "package portfolio.gate\n" {
		t.Errorf("LoadPolicy = %q", src)
	}
	if _, err := LoadPolicy(fs, "/missing.rego"); err == nil {
		t.Error("LoadPolicy of a missing file should fail")
	}
}
