package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	CodeInvalidInput       Code = "INVALID_INPUT"
	CodeNotFound           Code = "NOT_FOUND"
	CodeConfigurationError Code = "CONFIGURATION_ERROR"
	CodeServiceTimeout     Code = "SERVICE_TIMEOUT"
	CodeRateLimitExceeded  Code = "RATE_LIMIT_EXCEEDED"
	CodeInternalError      Code = "INTERNAL_ERROR"
	CodeUnknownError       Code = "UNKNOWN_ERROR"
)

// Monitor error taxonomy
const (
	// A single data source produced no value this tick.
	CodeSourceUnavailable Code = "SOURCE_UNAVAILABLE"
	// Snapshot assembly or reporting failed outside the sources.
	CodeTransientTickFailure Code = "TRANSIENT_TICK_FAILURE"
	// Configuration or a required resource is missing at launch.
	CodeStartupFailure Code = "STARTUP_FAILURE"
)

// Blockchain/contract error codes
const (
	CodeEthereumConnectionFailed Code = "ETHEREUM_CONNECTION_FAILED"
	CodeEthereumRPCError         Code = "ETHEREUM_RPC_ERROR"
	CodeBlockNotFound            Code = "BLOCK_NOT_FOUND"
	CodeChainIDMismatch          Code = "CHAIN_ID_MISMATCH"
	CodeContractCallFailed       Code = "CONTRACT_CALL_FAILED"
	CodeContractNotBound         Code = "CONTRACT_NOT_BOUND"
	CodeABILoadFailed            Code = "ABI_LOAD_FAILED"
	CodeABIEncodeFailed          Code = "ABI_ENCODE_FAILED"
	CodeABIDecodeFailed          Code = "ABI_DECODE_FAILED"
	CodeUnexpectedOutput         Code = "UNEXPECTED_OUTPUT"

	// Reporting
	CodeReportFailed Code = "REPORT_FAILED"

	// Circuit breaker errors
	CodeCircuitOpen Code = "CIRCUIT_OPEN"
)
