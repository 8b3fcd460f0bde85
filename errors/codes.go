package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Fixture configuration errors
const (
	// ErrCodeMissingFixtureDescriptor indicates a fixture type without a descriptor.
	ErrCodeMissingFixtureDescriptor ErrorCode = "MISSING_FIXTURE_DESCRIPTOR"
	// ErrCodeInvalidField indicates a malformed injection point or target.
	ErrCodeInvalidField ErrorCode = "INVALID_FIELD"
	// ErrCodeConflictingMarkers indicates a field carrying more than one marker.
	ErrCodeConflictingMarkers ErrorCode = "CONFLICTING_MARKERS"
	// ErrCodeInvalidConfig indicates configuration that failed validation.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
)

// Resource errors
const (
	// ErrCodeResourceNotFound indicates a template absent from the resource FS.
	ErrCodeResourceNotFound ErrorCode = "RESOURCE_NOT_FOUND"
	// ErrCodeProjectFileNotFound indicates a project file absent after staging.
	ErrCodeProjectFileNotFound ErrorCode = "PROJECT_FILE_NOT_FOUND"
	// ErrCodeIO indicates a filesystem copy, snapshot or restore failure.
	ErrCodeIO ErrorCode = "IO_ERROR"
)

// Build tool errors
const (
	// ErrCodeUnexpectedSuccess indicates a build expected to fail succeeded.
	ErrCodeUnexpectedSuccess ErrorCode = "UNEXPECTED_SUCCESS"
	// ErrCodeUnexpectedFailure indicates a build expected to succeed failed.
	ErrCodeUnexpectedFailure ErrorCode = "UNEXPECTED_FAILURE"
	// ErrCodeToolExecution indicates the tool could not be started or was killed.
	ErrCodeToolExecution ErrorCode = "TOOL_EXECUTION"
)

var configurationCodes = map[ErrorCode]bool{
	ErrCodeMissingFixtureDescriptor: true,
	ErrCodeInvalidField:             true,
	ErrCodeConflictingMarkers:       true,
	ErrCodeInvalidConfig:            true,
	ErrCodeResourceNotFound:         true,
	ErrCodeProjectFileNotFound:      true,
}

// IsConfigurationCode reports whether the code points at a misconfigured
// fixture rather than at the build under test.
func IsConfigurationCode(code ErrorCode) bool {
	return configurationCodes[code]
}
