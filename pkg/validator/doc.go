// Package validator provides rule-based input validation.
//
// A Rule pairs a check with the ValidationError reported when the check fails.
// Apply evaluates every rule and collects all failures into ValidationErrors,
// so a caller can report each offending field in one response:
//
//	err := validator.Apply(
//	    validator.RequiredString("number", req.Number),
//	    validator.RequiredString("message", req.Message),
//	    validator.MaxLenString("message", req.Message, 4096),
//	)
//	if errs := validator.ExtractValidationErrors(err); errs != nil {
//	    // errs.Fields() lists the failing fields
//	}
package validator
