package hcloud

import (
	"errors"
	"fmt"
	"testing"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

func TestIsInvalidParameter(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("boom"), false},
		{"invalid input", hcloud.Error{Code: hcloud.ErrorCodeInvalidInput}, true},
		{"invalid server type", hcloud.Error{Code: hcloud.ErrorCodeInvalidServerType}, true},
		{"not found", hcloud.Error{Code: hcloud.ErrorCodeNotFound}, true},
		{"rate limited", hcloud.Error{Code: hcloud.ErrorCodeRateLimitExceeded}, false},
		{"wrapped", fmt.Errorf("create: %w", hcloud.Error{Code: hcloud.ErrorCodeInvalidInput}), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isInvalidParameter(tt.err); got != tt.want {
				t.Errorf("isInvalidParameter(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsResourceLocked(t *testing.T) {
	if !isResourceLocked(hcloud.Error{Code: hcloud.ErrorCodeLocked}) {
		t.Error("locked error should be retryable")
	}
	if !isResourceLocked(hcloud.Error{Code: hcloud.ErrorCodeConflict}) {
		t.Error("conflict error should be retryable")
	}
	if isResourceLocked(hcloud.Error{Code: hcloud.ErrorCodeInvalidInput}) {
		t.Error("invalid input is not a lock condition")
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(hcloud.Error{Code: hcloud.ErrorCodeNotFound}) {
		t.Error("expected not found")
	}
	if IsNotFound(errors.New("boom")) {
		t.Error("plain error is not a not-found")
	}
}
