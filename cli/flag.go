package cli

import (
	"strings"

	"github.com/aggieseek/seatwatch/config"
	"github.com/morikuni/failure/v2"
	"github.com/spf13/pflag"
)

// cacheBackendFlag records whether --cache was given so the environment
// value is only overridden explicitly
type cacheBackendFlag struct {
	IsSet bool
	Value string
}

// String implements pflag.Value.
func (s *cacheBackendFlag) String() string {
	return s.Value
}

func (s *cacheBackendFlag) Set(value string) error {
	value = strings.ToLower(strings.TrimSpace(value))
	switch config.CacheBackend(value) {
	case config.CacheBackendMemory, config.CacheBackendSnapshot, config.CacheBackendRedis:
	default:
		return failure.New(InvalidArguments,
			failure.Message("cache must be one of memory, snapshot, redis"),
			failure.Context{"cache": value},
		)
	}
	s.Value = value
	s.IsSet = true
	return nil
}

func (s *cacheBackendFlag) Type() string {
	return "backend"
}

var _ pflag.Value = &cacheBackendFlag{}
