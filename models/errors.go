package models

import "errors"

// Sentinel errors classifying analysis failures. The messages are the
// user-facing Korean strings surfaced by the API; callers wrap them with
// symbol and provider context via fmt.Errorf and %w.
var (
	// ErrInvalidSymbol marks a symbol the upstream source does not know.
	ErrInvalidSymbol = errors.New("유효하지 않은 심볼입니다")

	// ErrUnsupportedMarket marks a market type outside stock/crypto.
	ErrUnsupportedMarket = errors.New("지원하지 않는 시장 타입")

	// ErrInsufficientData marks a returns series with fewer than the
	// minimum usable observations after cleaning.
	ErrInsufficientData = errors.New("분석을 위한 충분한 수익률 데이터가 없습니다")

	// ErrDataUnavailable marks an upstream dataset that was empty, too
	// short, or failed its invariants.
	ErrDataUnavailable = errors.New("데이터를 가져올 수 없습니다")

	// ErrUpstreamTimeout marks a provider call that hit its deadline.
	ErrUpstreamTimeout = errors.New("데이터 제공자 응답이 시간 초과되었습니다")

	// ErrUpstreamUnreachable marks a provider that could not be reached,
	// including calls rejected by an open circuit breaker. Distinct from
	// ErrInvalidSymbol so outages do not read as bad symbols.
	ErrUpstreamUnreachable = errors.New("데이터 제공자에 연결할 수 없습니다")

	// ErrCityNotFound marks a city the geocoding service does not know
	ErrCityNotFound = errors.New("도시를 찾을 수 없습니다")
)

// IsClientError reports whether err should surface as a caller mistake
// rather than a service failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidSymbol) ||
		errors.Is(err, ErrUnsupportedMarket) ||
		errors.Is(err, ErrInsufficientData) ||
		errors.Is(err, ErrDataUnavailable) ||
		errors.Is(err, ErrCityNotFound)
}

// IsUpstreamError reports whether err is a provider-side failure.
func IsUpstreamError(err error) bool {
	return errors.Is(err, ErrUpstreamTimeout) || errors.Is(err, ErrUpstreamUnreachable)
}
