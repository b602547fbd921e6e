// Package crossslider provides a two-axis slider: a thumb constrained to a rectangular
// track whose position maps to a bounded X/Y value pair, plus a headless adapter that
// drives it from touch lines read off stdin, a file, a serial device or UDP.
package crossslider

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/jax-b/crossslider/pkg/crossslider/util"
)

const (

	// when this is set to anything, notifications only go to the log
	envNoNotifications = "CROSSSLIDER_NO_NOTIFICATIONS"
)

// CrossSlider is the main entity wiring the slider model to its configuration,
// its touch source and its presenter. The run loop is the model's only user.
type CrossSlider struct {
	logger    *zap.SugaredLogger
	notifier  Notifier
	config    *CanonicalConfig
	model     *SliderModel
	presenter Presenter
	source    TouchSource

	input      InputSettings
	appearance Appearance
	watching   bool

	stopChannel chan bool
	version     string
	verbose     bool
}

// NewCrossSlider creates a CrossSlider instance reading its config from configDir
func NewCrossSlider(logger *zap.SugaredLogger, configDir string, verbose bool) (*CrossSlider, error) {
	logger = logger.Named("crossslider")

	var notifier Notifier
	if _, quiet := os.LookupEnv(envNoNotifications); quiet {
		logger.Debugw("Using log-only notifications", "reason", "envvar set")
		notifier = NewLogNotifier(logger)
	} else {
		toastNotifier, err := NewToastNotifier(logger)
		if err != nil {
			logger.Errorw("Failed to create ToastNotifier", "error", err)
			return nil, fmt.Errorf("create new ToastNotifier: %w", err)
		}

		notifier = toastNotifier
	}

	config, err := NewConfig(logger, notifier, configDir)
	if err != nil {
		logger.Errorw("Failed to create Config", "error", err)
		return nil, fmt.Errorf("create new Config: %w", err)
	}

	cs := &CrossSlider{
		logger:      logger,
		notifier:    notifier,
		config:      config,
		model:       NewSliderModel(logger),
		presenter:   NewLogPresenter(logger, verbose),
		appearance:  NewAppearance(),
		stopChannel: make(chan bool, 1),
		verbose:     verbose,
	}

	cs.model.SubscribeToValueChanges(cs.onValueChanged)

	logger.Debug("Created crossslider instance")

	return cs, nil
}

// Initialize loads the configuration, sets up the touch source and runs until
// the input ends or the process is interrupted
func (cs *CrossSlider) Initialize() error {
	cs.logger.Debug("Initializing")

	// load the config for the first time
	if err := cs.config.Load(); err != nil {
		cs.logger.Errorw("Failed to load config during initialization", "error", err)
		return fmt.Errorf("load config during init: %w", err)
	}

	settings := cs.config.Settings()
	if err := cs.applySettings(settings); err != nil {
		return fmt.Errorf("apply config during init: %w", err)
	}

	cs.model.SetValue(settings.InitialValue)
	cs.input = settings.Input

	source, err := cs.newTouchSource(settings.Input)
	if err != nil {
		cs.logger.Errorw("Failed to create touch source", "input", settings.Input.Kind, "error", err)
		return fmt.Errorf("create touch source: %w", err)
	}

	cs.source = source

	cs.setupInterruptHandler()

	return cs.run()
}

// SetVersion records a version string to log when running
func (cs *CrossSlider) SetVersion(version string) {
	cs.version = version
}

func (cs *CrossSlider) newTouchSource(input InputSettings) (TouchSource, error) {
	switch input.Kind {
	case InputFile:
		f, err := os.Open(input.File)
		if err != nil {
			return nil, fmt.Errorf("open touch file: %w", err)
		}

		return NewStreamIO(cs.logger, "file", f, nil, cs.verbose), nil

	case InputSerial:
		return NewSerialIO(cs.logger, input.COMPort, uint(input.BaudRate), cs.verbose)

	case InputUDP:
		return NewUdpIO(cs.logger, input.UdpPort, cs.verbose)

	default:
		return NewStreamIO(cs.logger, "stdin", os.Stdin, os.Stdout, cs.verbose), nil
	}
}

func (cs *CrossSlider) setupInterruptHandler() {
	interruptChannel := util.SetupCloseHandler()

	go func() {
		signal := <-interruptChannel
		cs.logger.Debugw("Interrupted", "signal", signal)
		cs.signalStop()
	}()
}

func (cs *CrossSlider) run() error {
	defer cs.recoverFromPanic()

	cs.logger.Infow("Run loop starting", "version", cs.version)

	// subscribe before starting so no early touches get lost
	touches := cs.source.SubscribeToTouchEvents()
	reloads := cs.config.SubscribeToChanges()

	if err := cs.source.Start(); err != nil {
		cs.logger.Warnw("Failed to start touch source", "error", err)

		// if the port is busy, that's because something else is connected
		if errors.Is(err, os.ErrPermission) {
			cs.notifier.Notify(fmt.Sprintf("Can't connect to %s!", cs.input.COMPort),
				"This serial port is busy, make sure to close any serial monitor or other instance.")
		} else if errors.Is(err, os.ErrNotExist) {
			cs.notifier.Notify(fmt.Sprintf("Can't connect to %s!", cs.input.COMPort),
				"This serial port doesn't exist, check your configuration and make sure it's set correctly.")
		}

		return fmt.Errorf("start touch source: %w", err)
	}

	// watch the config file for changes
	go cs.config.WatchConfigFileChanges()
	cs.watching = true

	cs.present()

	for {
		select {
		case <-cs.stopChannel:
			cs.logger.Debug("Stop channel signaled, terminating")
			cs.stop()

			return nil

		case event, ok := <-touches:
			if !ok {
				cs.logger.Info("Touch input ended, terminating")
				cs.stop()

				return nil
			}

			cs.handleTouch(event)

		case <-reloads:
			if err := cs.applySettings(cs.config.Settings()); err != nil {
				cs.logger.Warnw("Failed to apply reloaded config", "error", err)
			}

			cs.present()
		}
	}
}

func (cs *CrossSlider) signalStop() {
	cs.logger.Debug("Signalling stop channel")

	select {
	case cs.stopChannel <- true:
	default:
	}
}

func (cs *CrossSlider) stop() {
	cs.logger.Info("Stopping")

	if cs.watching {
		cs.config.StopWatchingConfigFile()
		cs.watching = false
	}

	cs.source.Stop()
}

func (cs *CrossSlider) applySettings(settings SliderSettings) error {
	if err := settings.ApplyTo(cs.model); err != nil {
		return err
	}

	cs.appearance = settings.Appearance

	if cs.source != nil && settings.Input != cs.input {
		cs.logger.Warnw("Input settings changed, restart to apply them",
			"current", cs.input,
			"configured", settings.Input)
	}

	cs.logger.Debugw("Applied settings",
		"rangeX", cs.model.RangeX(),
		"rangeY", cs.model.RangeY(),
		"value", cs.model.Value())

	return nil
}

func (cs *CrossSlider) handleTouch(event TouchEvent) {
	switch event.Kind {
	case TouchDown:
		captured := cs.model.BeginTouch(event.Point)
		if cs.verbose {
			cs.logger.Debugw("Touch began", "point", event.Point, "captured", captured)
		}

	case TouchMove:
		cs.model.MoveTouch(event.Point)

	case TouchUp:
		cs.model.EndTouch()
	}

	cs.present()
}

func (cs *CrossSlider) onValueChanged(v Value) {
	cs.logger.Infow("Value changed", "x", v.X, "y", v.Y)

	writer, ok := cs.source.(ValueWriter)
	if !ok {
		return
	}

	if err := writer.WriteValue(v); err != nil {
		cs.logger.Warnw("Failed to report value", "error", err)
	}
}

func (cs *CrossSlider) present() {
	cs.presenter.Present(Frame{
		Layout:      cs.model.Layout(),
		Highlighted: cs.model.IsHighlighted(),
		Value:       cs.model.Value(),
		Appearance:  cs.appearance,
	})
}
