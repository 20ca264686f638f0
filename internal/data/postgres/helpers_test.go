package postgres

import (
	"log/slog"
	"os"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// decimalArg matches a decimal.Decimal query argument by value.
type decimalArg struct {
	expected decimal.Decimal
}

func (d decimalArg) Match(v interface{}) bool {
	actual, ok := v.(decimal.Decimal)
	return ok && actual.Equal(d.expected)
}

func decimalEq(v int64) pgxmock.Argument {
	return decimalArg{expected: decimal.NewFromInt(v)}
}
