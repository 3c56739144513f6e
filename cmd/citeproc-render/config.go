package main

import (
	"log"
	"os"

	"github.com/citeproc-go/engine/outputformat"
	"gopkg.in/yaml.v2"
)

// renderConfig mirrors the teacher's database.GeneratorConfig YAML
// shape: plain exported fields, each with a yaml tag naming its
// snake_case key explicitly.
type renderConfig struct {
	OutputFormat string            `yaml:"output_format"`
	FormatOptions map[string]string `yaml:"format_options"`
	UncitedMode  string            `yaml:"uncited_mode"`
	UncitedIDs   []string          `yaml:"uncited_ids"`
}

// parseRenderConfig reads configFile, or returns a zero-value config
// when no path is given, matching database.ParseGeneratorConfig's
// "empty config file means empty config" behavior.
func parseRenderConfig(configFile string) renderConfig {
	if configFile == "" {
		return renderConfig{}
	}
	buf, err := os.ReadFile(configFile)
	if err != nil {
		log.Fatal(err)
	}
	var cfg renderConfig
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		log.Fatal(err)
	}
	return cfg
}

func (c renderConfig) formatOptions() outputformat.Options {
	if len(c.FormatOptions) == 0 {
		return nil
	}
	return outputformat.Options(c.FormatOptions)
}
