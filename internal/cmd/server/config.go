// Package server wires the world process: storage, kernel, trigger engine,
// sessions, the WCP transport, and the agent scheduler.
package server

import (
	"fmt"
	"time"

	"github.com/louisbranch/loreworld/internal/platform/config"
)

// Transport selects how WCP is served.
const (
	TransportStdio     = "stdio"
	TransportWebSocket = "websocket"
)

// LLM backend names.
const (
	BackendGenAI = "genai"
	BackendStub  = "stub"
)

// Config is the server process configuration, read from the environment.
type Config struct {
	DBPath           string `env:"DB_PATH" envDefault:"loreworld.db"`
	DBPoolMax        int    `env:"DB_POOL_MAX" envDefault:"10"`
	DBIdleTimeoutMS  int    `env:"DB_IDLE_TIMEOUT" envDefault:"30000"`
	DBConnectTimeout int    `env:"DB_CONNECT_TIMEOUT" envDefault:"2000"`

	MCPPort      int    `env:"MCP_PORT" envDefault:"3000"`
	MCPTransport string `env:"MCP_TRANSPORT" envDefault:"stdio"`

	CycleIntervalMS int   `env:"CYCLE_INTERVAL" envDefault:"5000"`
	WorldID         int64 `env:"WORLD_ID" envDefault:"1"`

	LogQueries bool `env:"LOG_QUERIES" envDefault:"false"`

	LLMBackend    string `env:"LLM_BACKEND" envDefault:"genai"`
	LLMMinorModel string `env:"LLM_MINOR_MODEL" envDefault:"gemini-2.0-flash-lite"`
	LLMStoryModel string `env:"LLM_STORY_MODEL" envDefault:"gemini-2.0-flash"`
}

// ParseConfig loads and validates the environment configuration.
func ParseConfig() (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	switch cfg.MCPTransport {
	case TransportStdio, TransportWebSocket:
	default:
		return Config{}, fmt.Errorf("MCP_TRANSPORT %q must be stdio or websocket", cfg.MCPTransport)
	}
	switch cfg.LLMBackend {
	case BackendGenAI, BackendStub:
	default:
		return Config{}, fmt.Errorf("LLM_BACKEND %q must be genai or stub", cfg.LLMBackend)
	}
	return cfg, nil
}

// CycleInterval is the scheduler cadence.
func (c Config) CycleInterval() time.Duration {
	return time.Duration(c.CycleIntervalMS) * time.Millisecond
}

// DBIdleTimeout is the pool idle timeout.
func (c Config) DBIdleTimeout() time.Duration {
	return time.Duration(c.DBIdleTimeoutMS) * time.Millisecond
}

// DBConnectTimeoutDuration bounds the startup connectivity check.
func (c Config) DBConnectTimeoutDuration() time.Duration {
	return time.Duration(c.DBConnectTimeout) * time.Millisecond
}
