package api

import (
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	yaml "gopkg.in/yaml.v2"
)

// ConfigReader reads the tools config from file
type ConfigReader interface {
	ReadConfigFromFile(configPath string) (*Config, error)
}

type configReaderImpl struct {
}

// NewConfigReader returns a new api.ConfigReader
func NewConfigReader() ConfigReader {
	return &configReaderImpl{}
}

// ReadConfigFromFile reads the yaml config; an empty path returns an empty config so flags can fill it in
func (h *configReaderImpl) ReadConfigFromFile(configPath string) (config *Config, err error) {

	config = &Config{}
	if configPath == "" {
		return config, nil
	}

	log.Debug().Msgf("Reading %v file...", configPath)

	data, err := os.ReadFile(configPath)
	if err != nil {
		return config, errors.Wrapf(err, "Failed reading config file %v", configPath)
	}

	// unmarshal into structs
	if err := yaml.Unmarshal(data, config); err != nil {
		return config, errors.Wrapf(err, "Failed unmarshalling config file %v", configPath)
	}

	log.Debug().Msgf("Finished reading %v file successfully", configPath)

	return
}
