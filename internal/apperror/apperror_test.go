package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("artifact", "abc123"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("prompt", "prompt is required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "InsufficientCredits wraps ErrInsufficientCredits",
			err:       InsufficientCredits("u1"),
			target:    ErrInsufficientCredits,
			wantMatch: true,
		},
		{
			name:      "Upstream wraps ErrUpstream",
			err:       Upstream("content generation", errors.New("connection refused")),
			target:    ErrUpstream,
			wantMatch: true,
		},
		{
			name:      "PolicyViolation wraps ErrPolicyViolation",
			err:       &PolicyViolation{Explanation: "references gambling"},
			target:    ErrPolicyViolation,
			wantMatch: true,
		},
		{
			name:      "InsufficientCredits does NOT match ErrForbidden",
			err:       InsufficientCredits("u1"),
			target:    ErrForbidden,
			wantMatch: false,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("artifact", "abc123"),
			target:    ErrValidation,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestUpstreamKeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: i/o timeout")
	err := Upstream("classification", cause)

	if !errors.Is(err, cause) {
		t.Errorf("Upstream() lost the cause %v", cause)
	}
	if !errors.Is(err, ErrUpstream) {
		t.Error("Upstream() does not match ErrUpstream")
	}
}

func TestUpstreamSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("generating content: %w", Upstream("inference call", errors.New("boom")))

	var appErr *AppError
	if !errors.As(err, &appErr) {
		t.Fatal("errors.As failed to extract *AppError")
	}
	if appErr.Message != "upstream failure during inference call" {
		t.Errorf("Message = %q", appErr.Message)
	}
}

func TestPolicyViolationAs(t *testing.T) {
	err := fmt.Errorf("generate: %w", &PolicyViolation{
		Explanation: "mentions interest-based finance",
		Phrases:     []string{"payday loan"},
		Suggestion:  "Describe halal financing options instead.",
	})

	var pv *PolicyViolation
	if !errors.As(err, &pv) {
		t.Fatal("errors.As failed to extract *PolicyViolation")
	}
	if pv.Explanation != "mentions interest-based finance" {
		t.Errorf("Explanation = %q", pv.Explanation)
	}
	if len(pv.Phrases) != 1 || pv.Phrases[0] != "payday loan" {
		t.Errorf("Phrases = %v", pv.Phrases)
	}
}

func TestValidationFailedField(t *testing.T) {
	err := ValidationFailed("userId", "userId is required")

	if err.Field != "userId" {
		t.Errorf("Field = %q, want %q", err.Field, "userId")
	}
}
