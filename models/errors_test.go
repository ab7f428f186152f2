package models

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorClassification(t *testing.T) {
	wrapped := fmt.Errorf("분석 실패: %w", fmt.Errorf("%w: BTC/USDT", ErrInvalidSymbol))

	if !errors.Is(wrapped, ErrInvalidSymbol) {
		t.Error("wrapped error should match ErrInvalidSymbol")
	}
	if !IsClientError(wrapped) {
		t.Error("IsClientError() = false for invalid symbol, want true")
	}
	if IsUpstreamError(wrapped) {
		t.Error("IsUpstreamError() = true for invalid symbol, want false")
	}
}

func TestIsClientError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"invalid symbol", fmt.Errorf("%w: FAKE", ErrInvalidSymbol), true},
		{"unsupported market", fmt.Errorf("%w: forex", ErrUnsupportedMarket), true},
		{"insufficient data", fmt.Errorf("%w: 5개", ErrInsufficientData), true},
		{"data unavailable", fmt.Errorf("주식 %w: AAPL", ErrDataUnavailable), true},
		{"upstream timeout", ErrUpstreamTimeout, false},
		{"upstream unreachable", ErrUpstreamUnreachable, false},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsClientError(tt.err); got != tt.want {
				t.Errorf("IsClientError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsUpstreamError(t *testing.T) {
	timeout := fmt.Errorf("%w: yahoo_finance", ErrUpstreamTimeout)
	if !IsUpstreamError(timeout) {
		t.Error("IsUpstreamError() = false for timeout, want true")
	}

	unreachable := fmt.Errorf("%w: binance", ErrUpstreamUnreachable)
	if !IsUpstreamError(unreachable) {
		t.Error("IsUpstreamError() = false for unreachable, want true")
	}

	if IsUpstreamError(fmt.Errorf("%w: FAKE", ErrInvalidSymbol)) {
		t.Error("IsUpstreamError() = true for invalid symbol, want false")
	}
}

func TestErrorMessages(t *testing.T) {
	err := fmt.Errorf("%w: AAPL (데이터 포인트: 7)", ErrDataUnavailable)
	want := "데이터를 가져올 수 없습니다: AAPL (데이터 포인트: 7)"
	if err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}

	err = fmt.Errorf("%w: 5개", ErrInsufficientData)
	want = "분석을 위한 충분한 수익률 데이터가 없습니다: 5개"
	if err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}
}
