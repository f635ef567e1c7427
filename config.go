package mmf

import (
	"math"
	"os"
	"strconv"
)

// EnvironmentVariable names an ambient tunable read from the process
// environment.
type EnvironmentVariable struct {
	Name         string
	DefaultValue string
	Description  string
}

// MaxSpinTriesEnvVar overrides the try budget SpinAndLockRead/Write use
// when a caller doesn't pass an explicit maxTries. Unset or unparsable
// falls back to the platform's maximum unsigned word, per this package's
// default spin policy.
var MaxSpinTriesEnvVar = EnvironmentVariable{
	Name:         "WINMMF_MAX_SPIN_TRIES",
	DefaultValue: "",
	Description:  "maximum busy-retries for the default read/write spin helpers",
}

// GetEnvironmentVariable reads e's value from the process environment,
// falling back to e.DefaultValue when unset.
func GetEnvironmentVariable(e EnvironmentVariable) string {
	if v := os.Getenv(e.Name); v != "" {
		return v
	}
	return e.DefaultValue
}

// defaultMaxTries returns the spin budget used when a caller doesn't
// supply one explicitly.
func defaultMaxTries() uint32 {
	v := GetEnvironmentVariable(MaxSpinTriesEnvVar)
	if v == "" {
		return math.MaxUint32
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return math.MaxUint32
	}
	return uint32(n)
}
