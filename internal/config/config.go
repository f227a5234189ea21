package config

import (
	"io/ioutil"

	"gopkg.in/yaml.v3"

	"github.com/mmadfox/fencer/internal/geocode"
	"github.com/mmadfox/fencer/internal/remote"
)

type Config struct {
	Logger   logger          `yaml:"logger"`
	Store    remote.Options  `yaml:"store"`
	Geocoder geocode.Options `yaml:"geocoder"`
}

func FromBytes(data []byte) (*Config, error) {
	var conf Config
	if err := yaml.Unmarshal(data, &conf); err != nil {
		return nil, err
	}
	return &conf, nil
}

func FromFile(filename string) (*Config, error) {
	raw, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return FromBytes(raw)
}
