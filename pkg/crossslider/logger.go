package crossslider

import (
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jax-b/crossslider/pkg/crossslider/util"
)

const (
	buildTypeNone    = ""
	buildTypeDev     = "dev"
	buildTypeRelease = "release"

	logDirectory = "logs"
	logFilename  = "crossslider-latest-run.log"

	loggerNameWidth = 20
)

// NewLogger builds the program-wide logger. Logs never go to stdout, which belongs to
// value lines when touches come from stdin. Debug output is on for dev builds and
// whenever verbose is set.
func NewLogger(buildType string, verbose bool) (*zap.SugaredLogger, error) {
	var loggerConfig zap.Config

	switch buildType {

	// release: a plain file under logs/, info and above unless asked for more
	case buildTypeRelease:
		if err := util.EnsureDirExists(logDirectory); err != nil {
			return nil, fmt.Errorf("ensure log directory exists: %w", err)
		}

		loggerConfig = zap.NewProductionConfig()
		loggerConfig.Encoding = "console"
		loggerConfig.OutputPaths = []string{filepath.Join(logDirectory, logFilename)}
		loggerConfig.Sampling = nil

	// dev and unmarked builds: colorful stderr, with dev builds always at debug
	case buildTypeDev, buildTypeNone:
		loggerConfig = zap.NewDevelopmentConfig()
		loggerConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

		if buildType == buildTypeNone {
			loggerConfig.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
		}

	default:
		return nil, fmt.Errorf("unknown build type %q", buildType)
	}

	if verbose {
		loggerConfig.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	loggerConfig.ErrorOutputPaths = []string{"stderr"}
	loggerConfig.EncoderConfig.EncodeCaller = nil
	loggerConfig.EncoderConfig.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.Format("15:04:05.000"))
	}

	// "crossslider.model" and friends line up in a column
	loggerConfig.EncoderConfig.EncodeName = func(s string, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(fmt.Sprintf("%-*s", loggerNameWidth, s))
	}

	logger, err := loggerConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("create zap logger: %w", err)
	}

	return logger.Sugar(), nil
}
