package docmark

import "github.com/goliatone/go-docmark/internal/runtimeconfig"

var (
	ErrMarkerPrefixInvalid     = runtimeconfig.ErrMarkerPrefixInvalid
	ErrOrphanSeverityInvalid   = runtimeconfig.ErrOrphanSeverityInvalid
	ErrWorkersInvalid          = runtimeconfig.ErrWorkersInvalid
	ErrWorkspaceRootRequired   = runtimeconfig.ErrWorkspaceRootRequired
	ErrWorkspacePatternInvalid = runtimeconfig.ErrWorkspacePatternInvalid
	ErrLoggingProviderRequired = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown  = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid     = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid    = runtimeconfig.ErrLoggingFormatInvalid
	ErrHistoryDriverUnknown    = runtimeconfig.ErrHistoryDriverUnknown
	ErrHistoryDSNRequired      = runtimeconfig.ErrHistoryDSNRequired
)

type (
	Config           = runtimeconfig.Config
	MarkersConfig    = runtimeconfig.MarkersConfig
	ValidationConfig = runtimeconfig.ValidationConfig
	WorkspaceConfig  = runtimeconfig.WorkspaceConfig
	LoggingConfig    = runtimeconfig.LoggingConfig
	HistoryConfig    = runtimeconfig.HistoryConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads a YAML config file over DefaultConfig.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.LoadFile(path)
}
