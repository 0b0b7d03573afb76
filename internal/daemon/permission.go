package daemon

import (
	"fmt"
	"os"
	"strings"
)

// PermissionEnv overrides the input permission probe ("granted" or "denied").
const PermissionEnv = "HOLDSWIPE_INPUT_PERMISSION"

// LookupEnvFunc exposes environment probing for testability.
type LookupEnvFunc func(string) (string, bool)

// EnvPermission wraps probe with the PermissionEnv override. A nil lookup
// reads the process environment; a nil probe grants.
func EnvPermission(lookup LookupEnvFunc, probe PermissionCheck) PermissionCheck {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return func() error {
		if value, ok := lookup(PermissionEnv); ok {
			if granted, known := interpretPermissionFlag(value); known {
				if granted {
					return nil
				}
				return fmt.Errorf("%w via %s", ErrPermissionDenied, PermissionEnv)
			}
		}
		if probe == nil {
			return nil
		}
		return probe()
	}
}

func interpretPermissionFlag(value string) (granted, known bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "granted", "allow", "allowed", "yes", "true":
		return true, true
	case "denied", "no", "false", "blocked":
		return false, true
	default:
		return false, false
	}
}
