package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/authform/internal/field"
	"github.com/roach88/authform/internal/form"
)

// Scenario is a scripted run of the login form.
type Scenario struct {
	// Name uniquely identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario validates.
	Description string `yaml:"description"`

	// FlowToken tags every trace entry. Defaults to "test-flow-default".
	FlowToken string `yaml:"flow_token,omitempty"`

	// Restored seeds the durable marker before the session is restored.
	Restored bool `yaml:"restored,omitempty"`

	// Steps run in order.
	Steps []Step `yaml:"steps"`

	// Expect is checked after the last step.
	Expect *Expectation `yaml:"expect,omitempty"`
}

// Step is one scripted action. Exactly one action field is set.
type Step struct {
	Email        *string   `yaml:"email,omitempty"`
	Password     *string   `yaml:"password,omitempty"`
	TypeEmail    *string   `yaml:"type_email,omitempty"`
	TypePassword *string   `yaml:"type_password,omitempty"`
	Blur         string    `yaml:"blur,omitempty"`
	Wait         string    `yaml:"wait,omitempty"`
	Submit       *struct{} `yaml:"submit,omitempty"`
	Logout       *struct{} `yaml:"logout,omitempty"`
	Reset        *struct{} `yaml:"reset,omitempty"`
	Restart      *struct{} `yaml:"restart,omitempty"`

	// Expect is checked right after this step.
	Expect *Expectation `yaml:"expect,omitempty"`
}

// Step action names.
const (
	ActionEmail        = "email"
	ActionPassword     = "password"
	ActionTypeEmail    = "type_email"
	ActionTypePassword = "type_password"
	ActionBlur         = "blur"
	ActionWait         = "wait"
	ActionSubmit       = "submit"
	ActionLogout       = "logout"
	ActionReset        = "reset"
	ActionRestart      = "restart"
)

// Actions returns the names of every action field set on the step.
func (s Step) Actions() []string {
	var names []string
	if s.Email != nil {
		names = append(names, ActionEmail)
	}
	if s.Password != nil {
		names = append(names, ActionPassword)
	}
	if s.TypeEmail != nil {
		names = append(names, ActionTypeEmail)
	}
	if s.TypePassword != nil {
		names = append(names, ActionTypePassword)
	}
	if s.Blur != "" {
		names = append(names, ActionBlur)
	}
	if s.Wait != "" {
		names = append(names, ActionWait)
	}
	if s.Submit != nil {
		names = append(names, ActionSubmit)
	}
	if s.Logout != nil {
		names = append(names, ActionLogout)
	}
	if s.Reset != nil {
		names = append(names, ActionReset)
	}
	if s.Restart != nil {
		names = append(names, ActionRestart)
	}
	return names
}

// Expectation is a subset match against the observable state. Nil fields
// are not checked.
type Expectation struct {
	FormValid  *bool        `yaml:"form_valid,omitempty"`
	Email      *FieldExpect `yaml:"email,omitempty"`
	Password   *FieldExpect `yaml:"password,omitempty"`
	LoggedIn   *bool        `yaml:"logged_in,omitempty"`
	Marker     *bool        `yaml:"marker,omitempty"`
	Recomputes *int         `yaml:"recomputes,omitempty"`
	Success    *bool        `yaml:"success,omitempty"`
	Focus      *form.Focus  `yaml:"focus,omitempty"`
}

// FieldExpect matches one field's state.
type FieldExpect struct {
	Value    *string         `yaml:"value,omitempty"`
	Validity *field.Validity `yaml:"validity,omitempty"`
}

// LoadScenario reads, strictly decodes and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates a scenario document.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict decoding catches typos like "passwrd:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := CheckSchema(data); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	if errs := Validate(&scenario); len(errs) > 0 {
		return nil, fmt.Errorf("invalid scenario: %w", errs[0])
	}

	return &scenario, nil
}

// LoadScenarios loads a single file, or every .yaml/.yml file in a
// directory in lexical order.
func LoadScenarios(path string) ([]*Scenario, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to access %s: %w", path, err)
	}
	if !info.IsDir() {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return []*Scenario{s}, nil
	}

	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(path, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)

	scenarios := make([]*Scenario, 0, len(files))
	for _, f := range files {
		s, err := LoadScenario(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f, err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// waitDuration parses the wait step's duration.
func (s Step) waitDuration() (time.Duration, error) {
	d, err := time.ParseDuration(s.Wait)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", s.Wait)
	}
	return d, nil
}
