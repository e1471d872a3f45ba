package apperr

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// Handle logs an error that cannot be reported to the caller in detail
func Handle(ctx context.Context, err error) {
	logger := ctxlog.From(ctx)

	if e := goerr.Unwrap(err); e != nil {
		logger.Error("application error", "error", err, "values", e.Values())
		return
	}
	logger.Error("application error", "error", err)
}
