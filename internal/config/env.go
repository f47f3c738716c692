package config

import (
	"errors"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/dmitrijs2005/mailtrack/internal/flagx"
	"github.com/joho/godotenv"
)

// EnvPrefix namespaces every environment variable, e.g. MAILTRACK_REST_URL.
const EnvPrefix = "MAILTRACK_"

// parseEnv loads a dotenv file (the -env flag, else ./.env if present) and
// overlays cfg with MAILTRACK_* variables. Variables already set in the
// process environment win over the file.
func parseEnv(cfg *Config) error {
	if path := flagx.EnvFileFlags(); path != "" {
		if err := godotenv.Load(path); err != nil {
			return err
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	return env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix})
}
