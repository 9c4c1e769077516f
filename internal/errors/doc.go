// Package errors provides the structured error type used across the tracker.
//
// Errors carry a Code, a human readable Message, an optional Cause and
// free-form metadata:
//
//	err := errors.NotFound("blob not found").WithMeta("key", key)
//
// Wrapping keeps the original code so callers can still branch on it:
//
//	if _, err := repo.Get(ctx, blob.GetInput{Key: key}); err != nil {
//	    if errors.IsNotFound(err) {
//	        return nil
//	    }
//	    return errors.Wrap(err, "failed to read characters")
//	}
//
// Layer guidelines:
//
// Repository layer:
//   - Return NotFound for absent keys
//   - Wrap backend errors (redis, sqlite) with context
//
// Store layer:
//   - Missing ids are not errors; fall back silently
//   - Return InvalidArgument for programmer mistakes such as a mistyped
//     field value
//   - Log, rather than return, persistence failures
//
// Config validation uses the ValidationBuilder:
//
//	vb := errors.NewValidationBuilder()
//	errors.ValidateEnum("backend", cfg.Backend, backends, vb)
//	return vb.Build()
package errors
