package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const DefaultSettingsFile = "paychain.yaml"

// Settings is the paychain.yaml configuration format.
type Settings struct {
	StaticDir      string     `yaml:"staticDir"`
	CredentialsDir string     `yaml:"credentialsDir"`
	TestSuitesDir  string     `yaml:"testSuitesDir"`
	Tests          string     `yaml:"tests"`
	Threads        int        `yaml:"threads"`
	Results        Results    `yaml:"results"`
	References     References `yaml:"references"`
	DCC            DCC        `yaml:"dcc"`
}

// Results configures the result artifacts.
type Results struct {
	CSV      string `yaml:"csv"`
	Database string `yaml:"database"`
}

// References holds sprig templates for generated request references.
type References struct {
	OperationID       string `yaml:"operationId"`
	MerchantReference string `yaml:"merchantReference"`
}

// DCC configures currency conversion defaults.
type DCC struct {
	DefaultCurrency string `yaml:"defaultCurrency"`
}

// Defaults returns the settings used when no settings file is present.
func Defaults() Settings {
	return Settings{
		StaticDir:      "config/static",
		CredentialsDir: "config/credentials",
		TestSuitesDir:  "config/test_suites",
		Tests:          "smoke_tests.csv",
		Threads:        1,
		Results: Results{
			CSV:      "outputs/results.csv",
			Database: "outputs/local.db",
		},
		References: References{
			OperationID:       `{{ .TestID }}:{{ randAlphaNum .Remaining }}`,
			MerchantReference: `{{ .TestID }}:{{ randAlphaNum .Remaining }}`,
		},
		DCC: DCC{DefaultCurrency: "EUR"},
	}
}

// LoadSettings reads a settings file over the defaults. A missing file yields the defaults.
func LoadSettings(filename string) (Settings, error) {
	s := Defaults()

	data, err := os.ReadFile(filename)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("reading settings file: %w", err)
	}

	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parsing settings file: %w", err)
	}

	if s.Threads < 1 {
		return s, fmt.Errorf("threads must be at least 1, got %d", s.Threads)
	}
	return s, nil
}
