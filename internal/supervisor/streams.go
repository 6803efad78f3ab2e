package supervisor

import (
	"os"

	"github.com/aman-cerp/syncd/internal/syncerrs"
)

// redirectStdStreams points the process's os.Stdout and os.Stderr at the
// daemon's conventional log files, so any output a library writes
// through those variables after startup is captured there instead of
// vanishing into the background launcher's discarded pipe. outPath has
// already been truncated by slogging.Setup and is reopened here in
// append mode so this doesn't race its own truncation against logs
// already written; errPath is truncated here since nothing else writes
// to it. The returned cleanup restores the previous os.Stdout/os.Stderr
// and closes both files.
func redirectStdStreams(outPath, errPath string) (cleanup func(), err error) {
	outFile, openErr := os.OpenFile(outPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if openErr != nil {
		return nil, syncerrs.SupervisorError("open stdout log file", openErr).WithDetail(outPath)
	}
	errFile, openErr := os.OpenFile(errPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if openErr != nil {
		_ = outFile.Close()
		return nil, syncerrs.SupervisorError("open stderr log file", openErr).WithDetail(errPath)
	}

	prevOut, prevErr := os.Stdout, os.Stderr
	os.Stdout, os.Stderr = outFile, errFile

	return func() {
		os.Stdout, os.Stderr = prevOut, prevErr
		_ = outFile.Close()
		_ = errFile.Close()
	}, nil
}
