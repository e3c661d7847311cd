package depot

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables read by OptionsFromEnv.
const (
	EnvDefaultScope = "DEPOT_DEFAULT_SCOPE"
	EnvDiagnostics  = "DEPOT_DIAGNOSTICS"
)

// OptionsFromEnv reads .env files (if present) and turns the DEPOT_*
// environment variables into container options. Variables already set in
// the environment take precedence over the files.
//
//	opts, err := depot.OptionsFromEnv()
//	c := depot.New(append(opts, depot.WithLogger(logger))...)
func OptionsFromEnv(envFiles ...string) ([]ContainerOption, error) {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// Non-fatal: .env may not exist in production
	_ = godotenv.Load(files...)

	var opts []ContainerOption

	if name := os.Getenv(EnvDefaultScope); name != "" {
		scope, err := ScopeByName(name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvDefaultScope, err)
		}
		opts = append(opts, WithDefaultScope(scope))
	}

	if v := os.Getenv(EnvDiagnostics); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvDiagnostics, err)
		}
		opts = append(opts, WithDiagnostics(enabled))
	}

	return opts, nil
}
