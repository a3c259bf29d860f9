package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix is prepended to a flag's name to find the environment variable that sets its default.
const EnvPrefix = "EVENTHOST_"

// envKey translates a flag name like "log-level" to "EVENTHOST_LOG_LEVEL".
func envKey(flagName string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}

// envVal looks up the variable for flagName, ignoring case.
// Unset or blank variables result in defaultVal.
func envVal(flagName, defaultVal string) string {
	key := envKey(flagName)
	for _, kv := range os.Environ() {
		k, v, found := strings.Cut(kv, "=")
		if !found || !strings.EqualFold(k, key) {
			continue
		}
		if v = strings.TrimSpace(v); len(v) > 0 {
			return v
		}
	}
	return defaultVal
}

func envInt(flagName string, defaultVal int) int {
	sval := envVal(flagName, "")
	if len(sval) == 0 {
		return defaultVal
	}
	ival, err := strconv.Atoi(sval)
	if err != nil {
		return defaultVal
	}
	return ival
}

func envDuration(flagName string, defaultVal time.Duration) time.Duration {
	sval := envVal(flagName, "")
	if len(sval) == 0 {
		return defaultVal
	}
	dval, err := time.ParseDuration(sval)
	if err != nil {
		return defaultVal
	}
	return dval
}
