// Package errors provides foundational, type-safe error primitives used across docsite.
//
// This package contains classified error types and helpers for robust error handling,
// including a fluent builder API for constructing ClassifiedError values with context.
//
// Key features:
//   - ErrorCategory: Broad error classification (config, not_found, parse, render, etc.)
//   - ErrorSeverity: Impact level (fatal, error, warning, info)
//   - ClassifiedError: Structured error with category, severity, and context
//   - ErrorBuilder: Fluent API for creating classified errors
//
// Example usage:
//
//	err := errors.NewError(errors.CategoryParse, "unterminated fenced code block").
//		WithContext("line", 12).
//		Build()
package errors
