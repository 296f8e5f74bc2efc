package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	CodeInvalidInput:       "Invalid input provided",
	CodeNotFound:           "Resource not found",
	CodeConfigurationError: "Configuration error",
	CodeServiceTimeout:     "Service request timeout",
	CodeRateLimitExceeded:  "Rate limit exceeded",
	CodeInternalError:      "Internal error",
	CodeUnknownError:       "An unknown error occurred",

	CodeSourceUnavailable:    "Data source unavailable",
	CodeTransientTickFailure: "Tick failed, continuing on next tick",
	CodeStartupFailure:       "Startup failed",

	CodeEthereumConnectionFailed: "Failed to connect to Ethereum node",
	CodeEthereumRPCError:         "Ethereum RPC call failed",
	CodeBlockNotFound:            "Block not found",
	CodeChainIDMismatch:          "Connected chain does not match configuration",
	CodeContractCallFailed:       "Smart contract call failed",
	CodeContractNotBound:         "No ABI bound for contract",
	CodeABILoadFailed:            "Failed to load contract ABI",
	CodeABIEncodeFailed:          "Failed to encode contract call",
	CodeABIDecodeFailed:          "Failed to decode contract output",
	CodeUnexpectedOutput:         "Unexpected contract output",

	CodeReportFailed: "Failed to report tick",

	CodeCircuitOpen: "Circuit breaker is open",
}
