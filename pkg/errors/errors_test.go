package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"message", New(ErrCodeNodeNotFound, "node %q not found", "42"), `NODE_NOT_FOUND: node "42" not found`},
		{"cause", Wrap(ErrCodeNetwork, errors.New("dial tcp: refused"), "fetch neighbours"), "NETWORK_ERROR: fetch neighbours: dial tcp: refused"},
		{"code only", &Error{Code: ErrCodeViewClosed}, "VIEW_CLOSED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapKeepsChain(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(ErrCodeNetwork, cause, "Could not load more connections.")

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}

	// fmt wrapping on top keeps the code visible
	outer := fmt.Errorf("expand 42: %w", err)
	if GetCode(outer) != ErrCodeNetwork {
		t.Errorf("GetCode() = %q, want %q", GetCode(outer), ErrCodeNetwork)
	}
}

func TestIsAndGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code Code
	}{
		{"coded", New(ErrCodeInvalidLayout, "spiral"), ErrCodeInvalidLayout},
		{"outermost wins", Wrap(ErrCodeNetwork, New(ErrCodeTimeout, "inner"), "outer"), ErrCodeNetwork},
		{"rate limited", fmt.Errorf("fetch: %w", &RateLimitedError{RetryAfter: 5}), ErrCodeRateLimited},
		{"plain", errors.New("boom"), ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.code {
				t.Errorf("GetCode() = %q, want %q", got, tt.code)
			}
			if tt.code != "" && !Is(tt.err, tt.code) {
				t.Errorf("Is(err, %q) = false, want true", tt.code)
			}
			if Is(tt.err, ErrCodeUnsupported) {
				t.Error("Is(err, UNSUPPORTED) = true, want false")
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"own message", New(ErrCodeInvalidInput, "root must not be empty"), "root must not be empty"},
		{"wrapped cause hidden", Wrap(ErrCodeNetwork, errors.New("dial tcp 10.0.0.1:443"), "Could not load the graph."), "Could not load the graph."},
		{"code default", &Error{Code: ErrCodeViewClosed}, "This exploration has ended."},
		{"rate limited", &RateLimitedError{RetryAfter: 3}, "Too many requests. Please try again shortly."},
		{"plain error", errors.New("dial tcp: connection refused"), genericMessage},
		{"unknown code", &Error{Code: "SOMETHING_NEW"}, genericMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRateLimitedError(t *testing.T) {
	if got := (&RateLimitedError{RetryAfter: 60}).Error(); got != "rate limited: retry after 60 seconds" {
		t.Errorf("Error() = %q", got)
	}
	if got := (&RateLimitedError{}).Error(); got != "rate limited" {
		t.Errorf("Error() = %q", got)
	}
	if got := (&RateLimitedError{}).Code(); got != ErrCodeRateLimited {
		t.Errorf("Code() = %q, want %q", got, ErrCodeRateLimited)
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid format", New(ErrCodeInvalidFormat, "x"), 400},
		{"invalid id", New(ErrCodeInvalidID, "x"), 400},
		{"node not found", New(ErrCodeNodeNotFound, "x"), 404},
		{"view not found", Wrap(ErrCodeViewNotFound, errors.New("gone"), "x"), 404},
		{"in flight", New(ErrCodeExpansionInFlight, "x"), 409},
		{"graph limit", New(ErrCodeGraphLimit, "x"), 409},
		{"view closed", New(ErrCodeViewClosed, "x"), 410},
		{"rate limited", &RateLimitedError{}, 429},
		{"network", New(ErrCodeNetwork, "x"), 502},
		{"timeout", New(ErrCodeTimeout, "x"), 504},
		{"unsupported", New(ErrCodeUnsupported, "x"), 501},
		{"plain", errors.New("boom"), 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Errorf("HTTPStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEveryCodeHasDefaults(t *testing.T) {
	all := []Code{
		ErrCodeInvalidInput, ErrCodeInvalidFormat, ErrCodeInvalidLayout, ErrCodeInvalidID,
		ErrCodeNotFound, ErrCodeNodeNotFound, ErrCodeViewNotFound,
		ErrCodeNetwork, ErrCodeTimeout, ErrCodeRateLimited,
		ErrCodeExpansionInFlight, ErrCodeGraphLimit, ErrCodeViewClosed,
		ErrCodeInternal, ErrCodeUnsupported,
	}
	for _, c := range all {
		info, ok := codes[c]
		if !ok {
			t.Errorf("code %s has no entry", c)
			continue
		}
		if info.message == "" || info.status == 0 {
			t.Errorf("code %s: incomplete entry %+v", c, info)
		}
	}
}
