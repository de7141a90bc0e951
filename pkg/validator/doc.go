// Package validator builds declarative request validation from small Rule
// values.
//
// Each rule pairs a Check function with the error to report. Apply evaluates
// rules in order, skips further rules for a field that already failed and
// returns ValidationErrors, which implements error:
//
//	err := validator.Apply(
//		validator.Required("email", req.Email).WithMessage("Email is required"),
//		validator.ValidEmail("email", req.Email).WithMessage("Email should be valid"),
//		validator.MinLen("password", req.Password, 8),
//	)
//	if errs := validator.ExtractValidationErrors(err); errs != nil {
//		fields := errs.FieldErrors() // field -> first message
//	}
//
// Length rules count characters (runes), not bytes.
package validator
