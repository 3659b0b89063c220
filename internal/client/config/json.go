package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/ficomdev/ficomtest/internal/flagx"
	"github.com/ficomdev/ficomtest/internal/timex"
)

// JsonConfig is the intermediate DTO used only for reading JSON
// configuration files. Interval fields use timex.Duration so both string
// values such as "10s" and integer nanoseconds parse.
type JsonConfig struct {
	ServerURL      string         `json:"server_url"`
	CredentialDB   string         `json:"credential_db"`
	RequestTimeout timex.Duration `json:"request_timeout"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path comes from the -c/-config flags; when
// neither is set, no JSON file is loaded. An unreadable or invalid file
// panics: configuration errors are fatal at startup.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.ServerURL != "" {
		config.ServerURL = c.ServerURL
	}
	if c.CredentialDB != "" {
		config.CredentialDB = c.CredentialDB
	}
	if c.RequestTimeout.Duration != 0 {
		config.RequestTimeout = time.Duration(c.RequestTimeout.Duration)
	}
}
