// Package audit records security-relevant gateway actions: registration,
// login, token refresh and logout.
//
// A Logger builds an Event from the request context (tenant key, request id,
// client address), applies EventOptions, scrubs metadata through a
// MetadataFilter and hands the event to a Storage. Credentials are removed
// by default; extra fields can be masked or hashed:
//
//	audit.WithMetadataFilter(audit.NewMetadataFilter(
//		audit.WithCustomField("first_name", audit.FilterActionMask),
//	))
//
// Storage backends:
//
//   - SlogStorage writes one structured "audit" record per event
//   - RedisStreamStorage appends JSON events to a capped Redis stream
//   - MemoryStorage keeps events in memory for tests and local runs
//
// AsyncWriter wraps any BatchWriter so that request handlers only enqueue:
//
//	storage, err := audit.NewStorage(cfg, redisClient, log)
//	if err != nil {
//		return err
//	}
//	writer, closeAudit := audit.NewAsyncWriter(storage, cfg.AsyncOptions(log))
//	defer closeAudit(context.Background())
//
//	auditLog := audit.NewLogger(writer,
//		audit.WithTenantExtractor(tenant.KeyFromContext),
//		audit.WithRequestIDExtractor(requestid.Lookup),
//	)
//
//	_ = auditLog.LogError(ctx, audit.ActionUserLogin, err, audit.WithUser(email))
//
// Audit failures never change the outcome of the audited operation; callers
// log and continue.
package audit
