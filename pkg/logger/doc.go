// Package logger builds the gateway's *slog.Logger.
//
// New applies functional options to pick a handler (JSON or text), level and
// static attributes, then wraps the handler with LogHandlerDecorator so that
// registered ContextExtractor callbacks add request-scoped attributes such as
// request_id and tenant_key to every record logged with a context.
//
//	log := logger.New(
//		append(logger.FromConfig(cfg),
//			logger.WithContextExtractors(requestid.LoggerExtractor(), tenant.LoggerExtractor()),
//		)...,
//	)
//	logger.SetAsDefault(log)
//
// Attribute helpers (Error, TenantKey, ClientIP, Component, ...) keep key
// names consistent across packages. Error and Errors return an empty Attr for
// nil errors, so they can be passed unconditionally.
package logger
