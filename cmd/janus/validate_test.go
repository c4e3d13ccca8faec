package main

import (
	"os"
	"path/filepath"
	"testing"
)

const testConfigYAML = `
proxy:
  host: 127.0.0.1
  port: 3456
router:
  default: "openai,gpt-5.2"
providers:
  - name: openai
    base_url: https://api.openai.com/v1
    api_key: test-key
`

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestValidateCommand(t *testing.T) {
	origCfg := cfgFile
	defer func() { cfgFile = origCfg }()

	cfgFile = writeTestConfig(t, testConfigYAML)
	if err := runValidate(validateCmd, nil); err != nil {
		t.Errorf("validate failed on valid config: %v", err)
	}
}

func TestValidateCommand_BadConfig(t *testing.T) {
	origCfg := cfgFile
	defer func() { cfgFile = origCfg }()

	// Default chain references a provider that does not exist.
	cfgFile = writeTestConfig(t, `
router:
  default: "ghost,phantom-model"
providers:
  - name: openai
    base_url: https://api.openai.com/v1
`)
	if err := runValidate(validateCmd, nil); err == nil {
		t.Error("expected error for unknown provider in default chain")
	}
}

func TestValidateCommand_MissingFile(t *testing.T) {
	origCfg := cfgFile
	defer func() { cfgFile = origCfg }()

	cfgFile = filepath.Join(t.TempDir(), "missing.yaml")
	if err := runValidate(validateCmd, nil); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}
	for _, want := range []string{"run", "validate", "version"} {
		if !names[want] {
			t.Errorf("command %q not registered", want)
		}
	}
}
