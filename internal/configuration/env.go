package configuration

import "os"

// OSEnvProvider reads the process environment.
type OSEnvProvider struct{}

// LookupEnv returns the value of the environment variable key.
func (*OSEnvProvider) LookupEnv(key string) (string, bool) {
	return os.LookupEnv(key)
}
