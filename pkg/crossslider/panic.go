package crossslider

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/jax-b/crossslider/pkg/crossslider/util"
)

const (
	crashlogFilename        = "crossslider-crash-%s.log"
	crashlogTimestampFormat = "2006.01.02-15.04.05"

	crashMessage = `-----------------------------------------------------------------
                     crossslider crashlog
-----------------------------------------------------------------
Time: %s
Panic occurred: %s
Last value: %s
Stack trace:
%s
-----------------------------------------------------------------
`
)

// writeCrashlog dumps a panic and the slider's last value into the log directory
func writeCrashlog(dir string, now time.Time, r interface{}, last Value) (string, error) {
	if err := util.EnsureDirExists(dir); err != nil {
		return "", fmt.Errorf("ensure crashlog dir exists: %w", err)
	}

	timestamp := now.Format(crashlogTimestampFormat)
	crashlogBytes := bytes.NewBufferString(fmt.Sprintf(crashMessage,
		timestamp, r, fmt.Sprintf("(%v, %v)", last.X, last.Y), debug.Stack()))
	crashlogPath := filepath.Join(dir, fmt.Sprintf(crashlogFilename, timestamp))

	if err := ioutil.WriteFile(crashlogPath, crashlogBytes.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write crashlog file: %w", err)
	}

	return crashlogPath, nil
}

func (cs *CrossSlider) recoverFromPanic() {
	r := recover()

	if r == nil {
		return
	}

	crashlogPath, err := writeCrashlog(logDirectory, time.Now(), r, cs.model.Value())
	if err != nil {

		// that would REALLY suck
		panic(fmt.Errorf("can't even write the crashlog: %w (original panic: %v)", err, r))
	}

	cs.logger.Errorw("Encountered and logged panic, crashing",
		"crashlogPath", crashlogPath,
		"error", r)

	cs.notifier.Notify("Unexpected crash occurred...",
		fmt.Sprintf("More details in %s", crashlogPath))

	cs.logger.Errorw("Quitting", "exitCode", 1)
	os.Exit(1)
}
