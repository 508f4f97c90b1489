package weather

import (
	"errors"
	"fmt"

	apperrors "github.com/elcamino/weather-report/pkg/errors"
)

// Failure codes carried by errors returned from this package.
const (
	CodeTransport  = "transport_failure"
	CodeDecode     = "decode_failure"
	CodeNoForecast = "no_forecast"
)

// ErrNoForecast is wrapped by the reconciliation failure raised when the
// forecast has no days to borrow today's extremes from.
var ErrNoForecast = errors.New("no forecast data available to derive current-day extremes")

// ErrNoStore is returned by history lookups on a Service built without a
// store.
var ErrNoStore = errors.New("report history is not enabled")

// TransportError marks err as a terminal failure to obtain a response.
func TransportError(err error) error {
	return apperrors.Wrap(CodeTransport, "fetch weather", err)
}

// DecodeError marks err as a response that does not match the request.
func DecodeError(err error) error {
	return apperrors.Wrap(CodeDecode, "decode weather response", err)
}

func decodeErrorf(format string, args ...any) error {
	return DecodeError(fmt.Errorf(format, args...))
}
