package application

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"testing"

	"composite-gateway/composite/domain"
)

func TestKindForStatus(t *testing.T) {
	cases := map[int]domain.ErrorKind{
		400: domain.KindInvalidArgument,
		404: domain.KindNotFound,
		408: domain.KindTimeout,
		422: domain.KindInvalidArgument,
		429: domain.KindUnavailable,
		500: domain.KindUnavailable,
		503: domain.KindUnavailable,
		302: domain.KindUnexpected,
		418: domain.KindUnexpected,
	}
	for code, want := range cases {
		if got := KindForStatus(code); got != want {
			t.Fatalf("status %d: expected %s, got %s", code, want, got)
		}
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want domain.ErrorKind
	}{
		{"deadline", context.DeadlineExceeded, domain.KindTimeout},
		{"canceled", fmt.Errorf("do: %w", context.Canceled), domain.KindTimeout},
		{"status", fmt.Errorf("get: %w", statusErr(404)), domain.KindNotFound},
		{"refused", fmt.Errorf("dial: %w", syscall.ECONNREFUSED), domain.KindUnavailable},
		{"typed", domain.NewFailure(domain.KindInvalidArgument, "bad"), domain.KindInvalidArgument},
		{"decode", errors.New("unexpected EOF"), domain.KindUnexpected},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := Classify("review", tc.err)
			if f.Kind != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, f.Kind)
			}
			if f.Downstream != "review" {
				t.Fatalf("expected downstream to be set, got %q", f.Downstream)
			}
			if !errors.Is(f, tc.err) {
				t.Fatalf("expected the original error to be wrapped")
			}
		})
	}
}

func TestIsCallerError(t *testing.T) {
	cases := map[int]bool{
		400: true,
		401: true,
		403: true,
		404: true,
		409: true,
		422: true,
		408: false,
		429: false,
		500: false,
		503: false,
	}
	for code, want := range cases {
		if got := IsCallerError(fmt.Errorf("get: %w", statusErr(code))); got != want {
			t.Fatalf("status %d: expected %v, got %v", code, want, got)
		}
	}
	if IsCallerError(errors.New("unexpected EOF")) {
		t.Fatalf("expected errors without status not to be caller errors")
	}
}
