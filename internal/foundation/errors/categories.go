package errors

import "maps"

// ErrorCategory represents the broad category of an error for classification and routing.
type ErrorCategory string

const (
	// CategoryConfig represents zone or navigation configuration errors.
	// These are detected at load time and are fatal to startup.
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// CategoryNotFound represents a URL that does not resolve to any document.
	// Routine, expected at serving time.
	CategoryNotFound ErrorCategory = "not_found"

	// CategoryParse represents malformed Markdown or directive syntax.
	// Recoverable per document; carries line/column context.
	CategoryParse ErrorCategory = "parse"

	// CategoryRender represents failures while producing HTML from a parsed tree.
	CategoryRender    ErrorCategory = "render"
	CategoryHighlight ErrorCategory = "highlight"

	// CategoryFileSystem represents content store read/write errors.
	CategoryFileSystem ErrorCategory = "filesystem"
	CategorySource     ErrorCategory = "source"
	CategoryCache      ErrorCategory = "cache"

	// CategoryBuild represents batch pre-render errors.
	CategoryBuild    ErrorCategory = "build"
	CategoryManifest ErrorCategory = "manifest"
	CategoryDaemon   ErrorCategory = "daemon"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates the impact level of an error.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution completely
	SeverityError   ErrorSeverity = "error"   // Fails the current operation
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
	SeverityInfo    ErrorSeverity = "info"    // Informational, no impact
)

// RetryStrategy indicates how an error should be handled in retry scenarios.
type RetryStrategy string

const (
	RetryNever     RetryStrategy = "never"     // Permanent failure, don't retry
	RetryImmediate RetryStrategy = "immediate" // Retry immediately
	RetryBackoff   RetryStrategy = "backoff"   // Retry with exponential backoff
)

// ErrorContext provides structured context for errors.
type ErrorContext map[string]any

// Set adds or updates a context value.
func (c ErrorContext) Set(key string, value any) ErrorContext {
	if c == nil {
		c = make(ErrorContext)
	}
	c[key] = value
	return c
}

// Merge combines another context into this one, returning the result.
func (c ErrorContext) Merge(other ErrorContext) ErrorContext {
	if c == nil {
		c = make(ErrorContext)
	}
	maps.Copy(c, other)
	return c
}
