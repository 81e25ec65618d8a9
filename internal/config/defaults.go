package config

const (
	defaultConfigPath          = "~/.config/hkxshift/config.toml"
	defaultResultsDir          = "HKXShift_results"
	defaultHistoryDB           = "~/.local/share/hkxshift/history.db"
	defaultToolBinary          = "hkanno64.exe"
	defaultNoiseMarker         = "hctFilterTexture.dll"
	defaultScaleMin            = 0.1
	defaultScaleMax            = 2.0
	defaultRecommendedMin      = 0.6
	defaultRecommendedMax      = 1.4
	defaultProtectedMarker     = "SCAR_ActionData"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultHistoryEnabled      = true
	defaultBackup              = true
	defaultDeleteIntermediates = true
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ResultsDir: defaultResultsDir,
			HistoryDB:  defaultHistoryPath(),
		},
		Tool: Tool{
			Binary:       defaultToolBinary,
			NoiseMarkers: []string{defaultNoiseMarker},
		},
		Scale: Scale{
			Min:            defaultScaleMin,
			Max:            defaultScaleMax,
			RecommendedMin: defaultRecommendedMin,
			RecommendedMax: defaultRecommendedMax,
		},
		Annotations: Annotations{
			ProtectedMarker: defaultProtectedMarker,
		},
		Classify: Classify{
			AssetExtensions:   []string{".hkx"},
			SupportExtensions: []string{".txt", ".json"},
			ScarMarkers:       []string{"scar"},
			CprMarkers:        []string{"equip", "unequip"},
		},
		Options: Options{
			Backup:              defaultBackup,
			DeleteIntermediates: defaultDeleteIntermediates,
			PreserveProtected:   true,
		},
		History: History{
			Enabled: defaultHistoryEnabled,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
