// Package validation provides input validation for menustream handlers.
//
// It supports struct tag validation (using the validator library) and
// programmatic validation with error collection for rules that tags
// cannot express, such as either-or field requirements. Both surface a
// structured AppError with per-field details.
package validation
