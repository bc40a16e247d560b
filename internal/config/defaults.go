package config

const (
	defaultStateFile          = "~/.local/share/photovault/archive.json"
	defaultLogDir             = "~/.local/share/photovault/logs"
	defaultRawExtension       = ".heic"
	defaultConvertedExtension = ".jpg"
	defaultConversionBinary   = "magick"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateFile: defaultStateFile,
			LogDir:    defaultLogDir,
		},
		Archive: Archive{
			RawExtension:       defaultRawExtension,
			ConvertedExtension: defaultConvertedExtension,
		},
		Conversion: Conversion{
			Binary: defaultConversionBinary,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
