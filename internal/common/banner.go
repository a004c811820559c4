package common

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/banner"
)

// PrintBanner displays the startup banner and logs the resolved
// listen address.
func PrintBanner(config *Config, logger arbor.ILogger) {
	banner.PrintSimple("Scout", GetVersion())

	logger.Info().
		Str("version", GetVersion()).
		Str("host", config.Server.Host).
		Int("port", config.Server.Port).
		Msg("Scout starting")
}
