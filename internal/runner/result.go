package runner

// Orchestrator-facing result codes. These double as process exit codes so
// the AI side can branch on a stable numeric contract.
const (
	ExitSuccess          = 0
	ExitGeneralError     = 1
	ExitToolNotFound     = 2
	ExitInvalidConfig    = 3
	ExitTimeout          = 4
	ExitPermissionDenied = 5
	ExitInvalidArgument  = 6
	ExitExecutionFailed  = 7
	ExitFileNotFound     = 8
	ExitValidationFailed = 9
)

// Result is the immutable outcome of one tool invocation.
type Result struct {
	Success      bool
	ExitCode     int
	ErrorMessage string
	TimedOut     bool
}

func success(code int) Result {
	return Result{Success: code == 0, ExitCode: code}
}

func failure(code int, msg string) Result {
	return Result{Success: false, ExitCode: code, ErrorMessage: msg}
}
