package jsonfile

import "fmt"

const defaultFile = "memories.json"

// Config holds the JSON file storage module configuration.
type Config struct {
	// Path is the document file path. Defaults to {DataDir}/memories.json.
	Path string `yaml:"path"`
}

func (c *Config) validate() error {
	if c.Path == "" {
		return fmt.Errorf("jsonfile: path must not be empty after provisioning")
	}
	return nil
}
