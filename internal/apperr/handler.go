package apperr

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/getsentry/sentry-go"

	"github.com/yourfuture/platform/pkg/logger"
	"github.com/yourfuture/platform/pkg/metrics"
)

// Handler turns any error into the HTTP status and user-facing message
// the response envelope carries, logging it and forwarding high-severity
// failures to Sentry on the way.
type Handler struct {
	log           *slog.Logger
	sentryEnabled bool
}

func NewHandler(log *slog.Logger, sentryEnabled bool) *Handler {
	return &Handler{
		log:           log,
		sentryEnabled: sentryEnabled,
	}
}

// Handle resolves err to (status, user message).
func (h *Handler) Handle(ctx context.Context, err error) (int, string) {
	if err == nil {
		return http.StatusOK, ""
	}

	if ctx == nil {
		ctx = context.Background()
	}

	log := h.log
	if log == nil {
		log = slog.Default()
	}

	var appErr *AppError
	if errors.As(err, &appErr) && appErr != nil {
		attrs := []any{
			slog.String("code", appErr.Code),
			slog.String("message", appErr.Message),
			slog.String("severity", string(appErr.Severity)),
			slog.Int("http_status", appErr.HTTPStatus),
		}
		if correlationID := logger.CorrelationIDFromContext(ctx); correlationID != "" {
			attrs = append(attrs, slog.String("correlation_id", correlationID))
		}

		if appErr.Severity == SeverityHigh || appErr.Severity == SeverityCritical {
			log.Error("application error", attrs...)
			if h.sentryEnabled {
				h.sendToSentry(err)
			}
		} else {
			log.Warn("request rejected", attrs...)
		}

		metrics.RecordError(appErr.Code, string(appErr.Severity))

		userMessage := appErr.UserMessage
		if userMessage == "" {
			userMessage = "Something went wrong, please try again later"
		}

		return appErr.HTTPStatus, userMessage
	}

	attrs := []any{
		slog.String("message", err.Error()),
		slog.String("severity", string(SeverityHigh)),
	}
	if correlationID := logger.CorrelationIDFromContext(ctx); correlationID != "" {
		attrs = append(attrs, slog.String("correlation_id", correlationID))
	}

	log.Error("unknown error", attrs...)

	metrics.RecordError("unknown", string(SeverityHigh))

	if h.sentryEnabled {
		h.sendToSentry(err)
	}

	return http.StatusInternalServerError, "Something went wrong, please try again later"
}

func (h *Handler) sendToSentry(err error) {
	if err == nil {
		return
	}

	sentry.WithScope(func(scope *sentry.Scope) {
		var appErr *AppError
		if errors.As(err, &appErr) && appErr != nil {
			if appErr.Code != "" {
				scope.SetTag("code", appErr.Code)
			}
			if appErr.Severity != "" {
				scope.SetTag("severity", string(appErr.Severity))
			}
		}

		sentry.CaptureException(err)
	})
}
