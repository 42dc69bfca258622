// Package config loads the YAML configuration that wires together a
// kernel.Config, a policy.Policy and the domain-stack adapters a running
// agent needs (model endpoint, storage, transport).
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Options is the top-level configuration document.
type Options struct {
	Agent     AgentOptions     `yaml:"agent"`
	Policy    PolicyOptions    `yaml:"policy"`
	Model     ModelOptions     `yaml:"model"`
	Storage   StorageOptions   `yaml:"storage"`
	Transport TransportOptions `yaml:"transport"`
	Telemetry TelemetryOptions `yaml:"telemetry"`
}

// AgentOptions bounds one kernel run.
type AgentOptions struct {
	SystemPrompt       string  `yaml:"system_prompt"`
	MaxSteps           int     `yaml:"max_steps"`
	MaxDelegations     int     `yaml:"max_delegations"`
	MaxRejections      int     `yaml:"max_rejections"`
	MaxParseFailures   int     `yaml:"max_parse_failures"`
	MaxRepeatToolCalls int     `yaml:"max_repeat_tool_calls"`
	Temperature        float64 `yaml:"temperature"`
	MaxTokens          int     `yaml:"max_tokens"`
	Stream             bool    `yaml:"stream"`
}

// PolicyOptions configures the tool-call policy.
type PolicyOptions struct {
	AllowedTools        []string `yaml:"allowed_tools"`
	ForbiddenPatterns   []string `yaml:"forbidden_patterns"`
	AutoApprovePatterns []string `yaml:"auto_approve_patterns"`
}

// ModelOptions selects and configures the LLM adapter.
type ModelOptions struct {
	Provider string `yaml:"provider"` // "anthropic", "openai", or "bedrock"
	Model    string `yaml:"model"`

	RetryMaxAttempts int           `yaml:"retry_max_attempts"`
	RetryBaseDelay   time.Duration `yaml:"retry_base_delay"`

	BreakerFailureThreshold int           `yaml:"breaker_failure_threshold"`
	BreakerCooldown         time.Duration `yaml:"breaker_cooldown"`

	RateLimitPerSecond float64 `yaml:"rate_limit_per_second"`
	RateLimitBurst     int     `yaml:"rate_limit_burst"`
}

// StorageOptions selects the session snapshot store.
type StorageOptions struct {
	MongoURI        string `yaml:"mongo_uri"`
	MongoDatabase   string `yaml:"mongo_database"`
	MongoCollection string `yaml:"mongo_collection"`
}

// TransportOptions selects how events and intents move between the
// session scheduler and the capability runtime.
type TransportOptions struct {
	Kind string `yaml:"kind"` // "redis", "grpc", or "in-process"

	RedisAddr   string `yaml:"redis_addr"`
	RedisStream string `yaml:"redis_stream"`

	GRPCAddr string `yaml:"grpc_addr"`
}

// TelemetryOptions selects the telemetry backend.
type TelemetryOptions struct {
	Kind            string `yaml:"kind"` // "noop" or "clue"
	ServiceName     string `yaml:"service_name"`
	CollectorURL    string `yaml:"collector_url"`
}

// Load reads and parses the YAML document at path.
func Load(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML document into Options, applying defaults for any
// zero-valued numeric field that must not be zero.
func Parse(data []byte) (Options, error) {
	var opts Options
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return Options{}, fmt.Errorf("config: parsing yaml: %w", err)
	}
	opts.ApplyDefaults()
	return opts, nil
}

// ApplyDefaults fills in every zero-valued field that must not be zero.
// Load and Parse call this automatically; callers building an Options
// value directly (e.g. a CLI with no config file) should call it too.
func (o *Options) ApplyDefaults() {
	if o.Agent.MaxSteps == 0 {
		o.Agent.MaxSteps = 50
	}
	if o.Agent.MaxDelegations == 0 {
		o.Agent.MaxDelegations = 5
	}
	if o.Agent.MaxRejections == 0 {
		o.Agent.MaxRejections = 3
	}
	if o.Agent.MaxParseFailures == 0 {
		o.Agent.MaxParseFailures = 3
	}
	if o.Agent.MaxRepeatToolCalls == 0 {
		o.Agent.MaxRepeatToolCalls = 3
	}
	if o.Agent.MaxTokens == 0 {
		o.Agent.MaxTokens = 4096
	}
	if o.Model.RetryMaxAttempts == 0 {
		o.Model.RetryMaxAttempts = 3
	}
	if o.Model.RetryBaseDelay == 0 {
		o.Model.RetryBaseDelay = 200 * time.Millisecond
	}
	if o.Model.BreakerFailureThreshold == 0 {
		o.Model.BreakerFailureThreshold = 5
	}
	if o.Model.BreakerCooldown == 0 {
		o.Model.BreakerCooldown = 30 * time.Second
	}
	if o.Telemetry.Kind == "" {
		o.Telemetry.Kind = "noop"
	}
	if o.Transport.Kind == "" {
		o.Transport.Kind = "in-process"
	}
}
