package config

import (
	"os"
	"strings"
)

// Environment is the deployment the server runs in. It decides which
// settings are mandatory and where missing values may come from.
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	CI          Environment = "ci"
	Production  Environment = "production"
)

// GetEnvironment reads ENV, with CI=true taking precedence. Unknown or
// empty values mean development.
func GetEnvironment() Environment {
	if strings.EqualFold(strings.TrimSpace(os.Getenv("CI")), "true") {
		return CI
	}
	return ParseEnvironment(os.Getenv("ENV"))
}

// ParseEnvironment maps an ENV value to an Environment.
func ParseEnvironment(v string) Environment {
	switch e := Environment(strings.ToLower(strings.TrimSpace(v))); e {
	case Production, Test, CI:
		return e
	default:
		return Development
	}
}

func (e Environment) IsProduction() bool {
	return e == Production
}

// LoadsDotEnv reports whether a local .env file is consulted.
func (e Environment) LoadsDotEnv() bool {
	return e == Development || e == Test
}

// ReadsSecrets reports whether Docker secrets back unset credentials.
// CI runners supply everything through the environment.
func (e Environment) ReadsSecrets() bool {
	return e != CI
}
