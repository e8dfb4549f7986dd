package configuration

import (
	"fmt"

	"github.com/joho/godotenv"
)

// GodotenvProvider reads configuration files through godotenv.
type GodotenvProvider struct{}

// Read parses KEY=value files into a map.
func (*GodotenvProvider) Read(filenames ...string) (map[string]string, error) {
	data, err := godotenv.Read(filenames...)
	if err != nil {
		return data, fmt.Errorf("(config-godotenv) %w", err)
	}

	return data, nil
}
