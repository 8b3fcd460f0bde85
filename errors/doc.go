// Package errors provides the failure taxonomy for buildprobe.
//
// Every failure raised while staging a template, building a runner, injecting
// fixture fields or invoking the build tool is an *AppError carrying a
// machine-readable code and the offending identifier (template name, relative
// path, type or task list) in both its message and its Details. Nothing in
// buildprobe retries on these errors.
package errors
