package crossslider

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"github.com/thoas/go-funk"
	"go.uber.org/zap"

	"github.com/jax-b/crossslider/pkg/crossslider/util"
)

// ErrInvalidValue is returned for a configured starting value that isn't a finite number
var ErrInvalidValue = errors.New("invalid value: must be a finite number")

// InputSettings says where touch events come from
type InputSettings struct {
	Kind     string
	File     string
	COMPort  string
	BaudRate int
	UdpPort  int
}

// SliderSettings is one consistent, validated snapshot of the configuration file
type SliderSettings struct {
	RangeX       Range
	RangeY       Range
	InitialValue Value
	Quantizer    Quantizer

	TrackSize Size
	ThumbSide float64

	Appearance Appearance

	Input InputSettings
}

// CanonicalConfig provides application-wide access to configuration fields,
// as well as loading/file watching logic for the configuration file
type CanonicalConfig struct {
	settings     SliderSettings
	settingsLock sync.Mutex

	logger             *zap.SugaredLogger
	notifier           Notifier
	stopWatcherChannel chan bool

	reloadConsumers []chan bool

	configDir  string
	userConfig *viper.Viper
}

const (
	userConfigFilename = "config.yaml"
	userConfigName     = "config"
	configType         = "yaml"

	configKeyMinimumValueX   = "minimum_value_x"
	configKeyMaximumValueX   = "maximum_value_x"
	configKeyMinimumValueY   = "minimum_value_y"
	configKeyMaximumValueY   = "maximum_value_y"
	configKeyValueX          = "value_x"
	configKeyValueY          = "value_y"
	configKeyStepValue       = "step_value"
	configKeyTrackWidth      = "track_width"
	configKeyTrackHeight     = "track_height"
	configKeyThumbWidth      = "thumb_width"
	configKeyCurvaceousness  = "curvaceousness"
	configKeyTrackTintColor  = "track_tint_color"
	configKeyThumbTintColor  = "thumb_tint_color"
	configKeyInput           = "input"
	configKeyInputFile       = "input_file"
	configKeyCOMPort         = "com_port"
	configKeyBaudRate        = "baud_rate"
	configKeyUdpPort         = "udp_port"
	defaultTrackWidth        = 264.0
	defaultTrackHeight       = 264.0
	defaultInput             = InputStdin
	defaultInputFile         = "touches.txt"
	defaultCOMPort           = "COM4"
	defaultBaudRate          = 9600
	defaultUdpPort           = 16990
	maxUdpPort               = 65535
	defaultConfigDirectory   = "."
	configReloadNotification = "Your changes have been applied."
)

// recognized values for the input key
const (
	InputStdin  = "stdin"
	InputFile   = "file"
	InputSerial = "serial"
	InputUDP    = "udp"
)

var knownInputs = []string{InputStdin, InputFile, InputSerial, InputUDP}

var knownConfigKeys = []string{
	configKeyMinimumValueX, configKeyMaximumValueX,
	configKeyMinimumValueY, configKeyMaximumValueY,
	configKeyValueX, configKeyValueY,
	configKeyStepValue,
	configKeyTrackWidth, configKeyTrackHeight, configKeyThumbWidth,
	configKeyCurvaceousness, configKeyTrackTintColor, configKeyThumbTintColor,
	configKeyInput, configKeyInputFile,
	configKeyCOMPort, configKeyBaudRate, configKeyUdpPort,
}

// NewConfig creates a config instance reading config.yaml from configDir
func NewConfig(logger *zap.SugaredLogger, notifier Notifier, configDir string) (*CanonicalConfig, error) {
	logger = logger.Named("config")

	if configDir == "" {
		configDir = defaultConfigDirectory
	}

	cc := &CanonicalConfig{
		logger:             logger,
		notifier:           notifier,
		reloadConsumers:    []chan bool{},
		stopWatcherChannel: make(chan bool),
		configDir:          configDir,
	}

	userConfig := viper.New()
	userConfig.SetConfigName(userConfigName)
	userConfig.SetConfigType(configType)
	userConfig.AddConfigPath(configDir)

	userConfig.SetDefault(configKeyMinimumValueX, defaultMinimumValue)
	userConfig.SetDefault(configKeyMaximumValueX, defaultMaximumValue)
	userConfig.SetDefault(configKeyMinimumValueY, defaultMinimumValue)
	userConfig.SetDefault(configKeyMaximumValueY, defaultMaximumValue)
	userConfig.SetDefault(configKeyValueX, 0.0)
	userConfig.SetDefault(configKeyValueY, 0.0)
	userConfig.SetDefault(configKeyTrackWidth, defaultTrackWidth)
	userConfig.SetDefault(configKeyTrackHeight, defaultTrackHeight)
	userConfig.SetDefault(configKeyThumbWidth, defaultThumbSide)
	userConfig.SetDefault(configKeyCurvaceousness, defaultCurvaceousness)
	userConfig.SetDefault(configKeyTrackTintColor, defaultTrackTint)
	userConfig.SetDefault(configKeyThumbTintColor, defaultThumbTint)
	userConfig.SetDefault(configKeyInput, defaultInput)
	userConfig.SetDefault(configKeyInputFile, defaultInputFile)
	userConfig.SetDefault(configKeyCOMPort, defaultCOMPort)
	userConfig.SetDefault(configKeyBaudRate, defaultBaudRate)
	userConfig.SetDefault(configKeyUdpPort, defaultUdpPort)

	cc.userConfig = userConfig

	logger.Debug("Created config instance")

	return cc, nil
}

// Path is where the config file is expected to be
func (cc *CanonicalConfig) Path() string {
	return filepath.Join(cc.configDir, userConfigFilename)
}

// Settings returns the most recently loaded settings
func (cc *CanonicalConfig) Settings() SliderSettings {
	cc.settingsLock.Lock()
	defer cc.settingsLock.Unlock()

	return cc.settings
}

// Load reads the config file from disk and tries to parse it. On failure the
// previously loaded settings stay in effect.
func (cc *CanonicalConfig) Load() error {
	configPath := cc.Path()
	cc.logger.Debugw("Loading config", "path", configPath)

	// make sure it exists
	if !util.FileExists(configPath) {
		cc.logger.Warnw("Config file not found", "path", configPath)
		cc.notifier.Notify("Can't find configuration!",
			fmt.Sprintf("%s must be in %s. Please re-launch", userConfigFilename, cc.configDir))

		return fmt.Errorf("config file doesn't exist: %s", configPath)
	}

	if err := cc.userConfig.ReadInConfig(); err != nil {
		cc.logger.Warnw("Viper failed to read user config", "error", err)

		// if the error is yaml-format-related, show a sensible error. otherwise, show 'em to the logs
		if strings.Contains(err.Error(), "yaml:") {
			cc.notifier.Notify("Invalid configuration!",
				fmt.Sprintf("Please make sure %s is in a valid YAML format.", userConfigFilename))
		} else {
			cc.notifier.Notify("Error loading configuration!", "Please check the logs for more details.")
		}

		return fmt.Errorf("read user config: %w", err)
	}

	settings, err := cc.settingsFromViper()
	if err != nil {
		cc.logger.Warnw("Failed to populate config fields", "error", err)
		cc.notifier.Notify("Invalid configuration!", err.Error())

		return fmt.Errorf("populate config fields: %w", err)
	}

	cc.settingsLock.Lock()
	cc.settings = settings
	cc.settingsLock.Unlock()

	cc.logger.Info("Loaded config successfully")
	cc.logger.Infow("Config values",
		"rangeX", settings.RangeX,
		"rangeY", settings.RangeY,
		"quantizer", settings.Quantizer,
		"trackSize", settings.TrackSize,
		"thumbSide", settings.ThumbSide,
		"input", settings.Input)

	return nil
}

// SubscribeToChanges allows external components to receive updates when the config is reloaded
func (cc *CanonicalConfig) SubscribeToChanges() chan bool {
	c := make(chan bool)
	cc.reloadConsumers = append(cc.reloadConsumers, c)

	return c
}

// WatchConfigFileChanges starts watching for configuration file changes
// and attempts reloading the config when they happen
func (cc *CanonicalConfig) WatchConfigFileChanges() {
	cc.logger.Debugw("Starting to watch user config file for changes", "path", cc.Path())

	const (
		minTimeBetweenReloadAttempts = time.Millisecond * 500
		delayBetweenEventAndReload   = time.Millisecond * 50
	)

	lastAttemptedReload := time.Now()

	// establish watch using viper as opposed to doing it ourselves, though our internal cooldown is still required
	cc.userConfig.WatchConfig()
	cc.userConfig.OnConfigChange(func(event fsnotify.Event) {

		// when we get a write event...
		if event.Op&fsnotify.Write == fsnotify.Write {

			now := time.Now()

			// ... check if it's not a duplicate (many editors will write to a file twice)
			if lastAttemptedReload.Add(minTimeBetweenReloadAttempts).Before(now) {

				// and attempt reload if appropriate
				cc.logger.Debugw("Config file modified, attempting reload", "event", event)

				// wait a bit to let the editor actually flush the new file contents to disk
				<-time.After(delayBetweenEventAndReload)

				if err := cc.Load(); err != nil {
					cc.logger.Warnw("Failed to reload config file", "error", err)
				} else {
					cc.logger.Info("Reloaded config successfully")
					cc.notifier.Notify("Configuration reloaded!", configReloadNotification)

					cc.onConfigReloaded()
				}

				// don't forget to update the time
				lastAttemptedReload = now
			}
		}
	})

	// wait till they stop us
	<-cc.stopWatcherChannel
	cc.logger.Debug("Stopping user config file watcher")
	cc.userConfig.OnConfigChange(func(fsnotify.Event) {})
}

// StopWatchingConfigFile signals our filesystem watcher to stop
func (cc *CanonicalConfig) StopWatchingConfigFile() {
	cc.stopWatcherChannel <- true
}

func (cc *CanonicalConfig) settingsFromViper() (SliderSettings, error) {
	v := cc.userConfig
	settings := SliderSettings{}

	unknownKeys := funk.FilterString(v.AllKeys(), func(key string) bool {
		return !funk.ContainsString(knownConfigKeys, key)
	})
	if len(unknownKeys) > 0 {
		cc.logger.Warnw("Ignoring unknown config keys", "keys", unknownKeys)
	}

	var err error

	// bounds and step are core configuration, bad values fail the whole load
	if settings.RangeX, err = NewRange(v.GetFloat64(configKeyMinimumValueX), v.GetFloat64(configKeyMaximumValueX)); err != nil {
		return SliderSettings{}, fmt.Errorf("x axis (%s/%s): %w", configKeyMinimumValueX, configKeyMaximumValueX, err)
	}

	if settings.RangeY, err = NewRange(v.GetFloat64(configKeyMinimumValueY), v.GetFloat64(configKeyMaximumValueY)); err != nil {
		return SliderSettings{}, fmt.Errorf("y axis (%s/%s): %w", configKeyMinimumValueY, configKeyMaximumValueY, err)
	}

	if v.IsSet(configKeyStepValue) {
		if settings.Quantizer, err = NewQuantizer(v.GetFloat64(configKeyStepValue)); err != nil {
			return SliderSettings{}, fmt.Errorf("%s: %w", configKeyStepValue, err)
		}
	}

	valueX, valueY := v.GetFloat64(configKeyValueX), v.GetFloat64(configKeyValueY)
	if !util.Finite(valueX) || !util.Finite(valueY) {
		return SliderSettings{}, fmt.Errorf("%s/%s (%v, %v): %w", configKeyValueX, configKeyValueY, valueX, valueY, ErrInvalidValue)
	}

	settings.InitialValue = Value{
		X: settings.RangeX.Clamp(valueX),
		Y: settings.RangeY.Clamp(valueY),
	}

	settings.TrackSize = Size{
		Width:  v.GetFloat64(configKeyTrackWidth),
		Height: v.GetFloat64(configKeyTrackHeight),
	}
	if !validTrackSize(settings.TrackSize) {
		return SliderSettings{}, fmt.Errorf("%s/%s: %w", configKeyTrackWidth, configKeyTrackHeight, ErrInvalidGeometry)
	}

	settings.ThumbSide = v.GetFloat64(configKeyThumbWidth)
	if !validThumbSide(settings.ThumbSide) {
		return SliderSettings{}, fmt.Errorf("%s: %w", configKeyThumbWidth, ErrInvalidGeometry)
	}

	// presentation hints never fail a load, they just fall back
	settings.Appearance = NewAppearance()
	settings.Appearance.SetCurvaceousness(v.GetFloat64(configKeyCurvaceousness))

	if err := settings.Appearance.SetTrackTintHex(v.GetString(configKeyTrackTintColor)); err != nil {
		cc.logger.Warnw("Invalid track tint specified, using default value",
			"key", configKeyTrackTintColor,
			"error", err,
			"defaultValue", defaultTrackTint)
	}

	if err := settings.Appearance.SetThumbTintHex(v.GetString(configKeyThumbTintColor)); err != nil {
		cc.logger.Warnw("Invalid thumb tint specified, using default value",
			"key", configKeyThumbTintColor,
			"error", err,
			"defaultValue", defaultThumbTint)
	}

	settings.Input = cc.inputFromViper()

	cc.logger.Debug("Populated config fields from viper")

	return settings, nil
}

func (cc *CanonicalConfig) inputFromViper() InputSettings {
	v := cc.userConfig

	input := InputSettings{
		Kind:     strings.ToLower(v.GetString(configKeyInput)),
		File:     v.GetString(configKeyInputFile),
		COMPort:  v.GetString(configKeyCOMPort),
		BaudRate: v.GetInt(configKeyBaudRate),
		UdpPort:  v.GetInt(configKeyUdpPort),
	}

	if !funk.ContainsString(knownInputs, input.Kind) {
		cc.logger.Warnw("Unknown input specified, using default value",
			"key", configKeyInput,
			"invalidValue", input.Kind,
			"defaultValue", defaultInput)

		input.Kind = defaultInput
	}

	if input.BaudRate <= 0 {
		cc.logger.Warnw("Invalid baud rate specified, using default value",
			"key", configKeyBaudRate,
			"invalidValue", input.BaudRate,
			"defaultValue", defaultBaudRate)

		input.BaudRate = defaultBaudRate
	}

	if input.UdpPort <= 0 || input.UdpPort > maxUdpPort {
		cc.logger.Warnw("Invalid UDP port specified, using default value",
			"key", configKeyUdpPort,
			"invalidValue", input.UdpPort,
			"defaultValue", defaultUdpPort)

		input.UdpPort = defaultUdpPort
	}

	return input
}

func (cc *CanonicalConfig) onConfigReloaded() {
	cc.logger.Debug("Notifying consumers about configuration reload")

	for _, consumer := range cc.reloadConsumers {
		consumer <- true
	}
}

// ApplyTo pushes bounds, geometry and quantization into the model. Everything is
// checked before anything is changed, so a rejected snapshot leaves the model as it was.
// The model's current value is kept and re-clamped; the initial value is applied separately.
func (s SliderSettings) ApplyTo(m *SliderModel) error {
	if err := s.validate(); err != nil {
		return fmt.Errorf("apply settings: %w", err)
	}

	if err := m.SetRangeX(s.RangeX.Minimum(), s.RangeX.Maximum()); err != nil {
		return fmt.Errorf("apply x range: %w", err)
	}

	if err := m.SetRangeY(s.RangeY.Minimum(), s.RangeY.Maximum()); err != nil {
		return fmt.Errorf("apply y range: %w", err)
	}

	if err := m.SetTrackSize(s.TrackSize); err != nil {
		return fmt.Errorf("apply track size: %w", err)
	}

	if err := m.SetThumbSide(s.ThumbSide); err != nil {
		return fmt.Errorf("apply thumb side: %w", err)
	}

	if step, ok := s.Quantizer.Step(); ok {
		if err := m.SetStep(step); err != nil {
			return fmt.Errorf("apply step: %w", err)
		}
	} else {
		m.ClearStep()
	}

	return nil
}

// validate runs the same checks as the model's setters, up front
func (s SliderSettings) validate() error {
	if _, err := NewRange(s.RangeX.Minimum(), s.RangeX.Maximum()); err != nil {
		return fmt.Errorf("x range: %w", err)
	}

	if _, err := NewRange(s.RangeY.Minimum(), s.RangeY.Maximum()); err != nil {
		return fmt.Errorf("y range: %w", err)
	}

	if !validTrackSize(s.TrackSize) {
		return fmt.Errorf("track size %vx%v: %w", s.TrackSize.Width, s.TrackSize.Height, ErrInvalidGeometry)
	}

	if !validThumbSide(s.ThumbSide) {
		return fmt.Errorf("thumb side %v: %w", s.ThumbSide, ErrInvalidGeometry)
	}

	if step, ok := s.Quantizer.Step(); ok {
		if _, err := NewQuantizer(step); err != nil {
			return err
		}
	}

	return nil
}
