package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/systemstart/paychain/pkg/api"
)

// Set is the loaded configuration of one run.
type Set struct {
	Tables    api.Tables
	Steps     []api.TestStep
	TestsFile string
}

// Load reads every configuration table and the tests file named by s.Tests.
func Load(s Settings) (*Set, error) {
	tables, err := LoadTables(s)
	if err != nil {
		return nil, err
	}

	testsFile, err := ResolveTestsFile(s.TestSuitesDir, s.Tests)
	if err != nil {
		return nil, err
	}
	steps, err := api.LoadTestSteps(testsFile)
	if err != nil {
		return nil, err
	}
	slog.Info("tests loaded", "file", testsFile, "steps", len(steps))

	for _, w := range tables.DanglingReferences(steps) {
		slog.Warn("dangling reference", "detail", w)
	}

	return &Set{Tables: *tables, Steps: steps, TestsFile: testsFile}, nil
}

// LoadTables reads the required and optional configuration tables.
func LoadTables(s Settings) (*api.Tables, error) {
	var (
		t   api.Tables
		err error
	)

	static := func(name string) string { return filepath.Join(s.StaticDir, name) }

	if t.Environments, err = loadTable(static("environments.csv"), true, api.EnvironmentColumns, api.ParseEnvironments); err != nil {
		return nil, err
	}
	if t.Merchants, err = loadTable(static("merchants.csv"), true, api.MerchantColumns, api.ParseMerchants); err != nil {
		return nil, err
	}
	if t.Cards, err = loadTable(static("cards.csv"), true, api.CardColumns, api.ParseCards); err != nil {
		return nil, err
	}
	if t.Addresses, err = loadTable(static("address.csv"), false, api.AddressColumns, api.ParseAddresses); err != nil {
		return nil, err
	}
	if t.ThreeDS, err = loadTable(static("threeddata.csv"), false, api.ThreeDSColumns, api.ParseThreeDS); err != nil {
		return nil, err
	}
	if t.CardOnFile, err = loadTable(static("cardonfile.csv"), false, api.CardOnFileColumns, api.ParseCardOnFile); err != nil {
		return nil, err
	}
	if t.NetworkTokens, err = loadTable(static("networktoken.csv"), false, api.NetworkTokenColumns, api.ParseNetworkTokens); err != nil {
		return nil, err
	}
	if t.MerchantData, err = loadTable(static("merchantdata.csv"), false, api.MerchantDataColumns, api.ParseMerchantData); err != nil {
		return nil, err
	}

	creds, err := loadTable(filepath.Join(s.CredentialsDir, "secrets.csv"), false, api.CredentialColumns, api.ParseCredentials)
	if err != nil {
		return nil, err
	}
	mergeCredentials(t.Environments, creds, os.Getenv)

	slog.Info("configuration loaded",
		"environments", len(t.Environments),
		"merchants", len(t.Merchants),
		"cards", len(t.Cards),
		"addresses", len(t.Addresses),
		"threeds", len(t.ThreeDS),
		"cardOnFile", len(t.CardOnFile),
		"networkTokens", len(t.NetworkTokens),
		"merchantData", len(t.MerchantData))

	return &t, nil
}

func loadTable[K comparable, V any](filename string, required bool, columns []string, parse func([]api.Row) (map[K]V, error)) (map[K]V, error) {
	rows, err := api.ReadTableFile(filename, columns...)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		if required {
			return nil, &api.ConfigurationError{File: filename, Err: fmt.Errorf("required file not found")}
		}
		slog.Debug("optional configuration file not found", "file", filename)
		return map[K]V{}, nil
	}

	table, err := parse(rows)
	if err != nil {
		return nil, &api.ConfigurationError{File: filename, Err: err}
	}
	slog.Debug("configuration file loaded", "file", filename, "entries", len(table))
	return table, nil
}

// mergeCredentials attaches client credentials to environments. Environment
// variables PAYCHAIN_<ENV>_CLIENT_ID and PAYCHAIN_<ENV>_CLIENT_SECRET win over secrets.csv.
func mergeCredentials(envs map[string]api.Environment, creds map[string]api.Credentials, getenv func(string) string) {
	for name, env := range envs {
		c := creds[name]
		prefix := "PAYCHAIN_" + envVarName(name) + "_"
		if v := getenv(prefix + "CLIENT_ID"); v != "" {
			c.ClientID = v
		}
		if v := getenv(prefix + "CLIENT_SECRET"); v != "" {
			c.ClientSecret = v
		}
		if c.ClientID == "" {
			slog.Warn("missing credentials for environment", "env", name)
		}
		env.ClientID = c.ClientID
		env.ClientSecret = c.ClientSecret
		envs[name] = env
	}
}

func envVarName(env string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, env)
}

// ResolveTestsFile looks for name inside suitesDir first, then as given.
func ResolveTestsFile(suitesDir, name string) (string, error) {
	if name == "" {
		return "", &api.ConfigurationError{Err: fmt.Errorf("no tests file given")}
	}

	candidates := []string{name}
	if !filepath.IsAbs(name) && suitesDir != "" {
		candidates = []string{filepath.Join(suitesDir, name), name}
	}
	for _, c := range candidates {
		st, err := os.Stat(c)
		if err == nil && !st.IsDir() {
			return c, nil
		}
	}
	return "", &api.ConfigurationError{File: name, Err: fmt.Errorf("tests file not found (looked in %s)", strings.Join(candidates, ", "))}
}
