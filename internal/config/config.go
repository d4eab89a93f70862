package config

import (
	"fmt"
	"strings"
	"time"
)

const (
	GeminiBackendAPI    = "gemini"
	GeminiBackendVertex = "vertex"
)

type Config struct {
	Tools       ToolsConfig       `yaml:"tools"`
	Paths       PathsConfig       `yaml:"paths"`
	Logging     LoggingConfig     `yaml:"logging"`
	Performance PerformanceConfig `yaml:"performance"`
	Server      ServerConfig      `yaml:"server"`
	Gemini      GeminiConfig      `yaml:"gemini"`
	Summary     SummaryConfig     `yaml:"summary"`
}

type ToolsConfig struct {
	YTDLP  string `yaml:"yt_dlp"`
	FFmpeg string `yaml:"ffmpeg"`
}

type PathsConfig struct {
	Output  string `yaml:"output"`
	Temp    string `yaml:"temp"`
	Uploads string `yaml:"uploads"`
	Inbox   string `yaml:"inbox"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type PerformanceConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type GeminiConfig struct {
	Backend         string `yaml:"backend"`
	Model           string `yaml:"model"`
	APIKey          string `yaml:"api_key"`
	CredentialsFile string `yaml:"credentials_file"`
	Project         string `yaml:"project"`
	Location        string `yaml:"location"`
}

type SummaryConfig struct {
	MinTranscriptChars int    `yaml:"min_transcript_chars"`
	SubLangs           string `yaml:"sub_langs"`
	Language           string `yaml:"language"`
	ExportMarkdown     bool   `yaml:"export_markdown"`
	ExportDocx         bool   `yaml:"export_docx"`
}

func (c *Config) Validate() error {
	if c.Performance.MaxConcurrent < 0 {
		return fmt.Errorf("performance.max_concurrent must not be negative")
	}
	if c.Summary.MinTranscriptChars < 0 {
		return fmt.Errorf("summary.min_transcript_chars must not be negative")
	}

	c.Gemini.Backend = strings.ToLower(strings.TrimSpace(c.Gemini.Backend))
	switch c.Gemini.Backend {
	case "":
		c.Gemini.Backend = GeminiBackendAPI
	case GeminiBackendAPI, GeminiBackendVertex:
	default:
		return fmt.Errorf("gemini.backend must be %q or %q, got %q", GeminiBackendAPI, GeminiBackendVertex, c.Gemini.Backend)
	}

	if c.Tools.YTDLP == "" {
		c.Tools.YTDLP = "yt-dlp"
	}
	if c.Tools.FFmpeg == "" {
		c.Tools.FFmpeg = "ffmpeg"
	}
	if c.Paths.Output == "" {
		c.Paths.Output = "data/output"
	}
	if c.Paths.Temp == "" {
		c.Paths.Temp = "data/temp"
	}
	if c.Paths.Uploads == "" {
		c.Paths.Uploads = "data/uploads"
	}
	if c.Paths.Inbox == "" {
		c.Paths.Inbox = "data/inbox"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Performance.MaxConcurrent == 0 {
		c.Performance.MaxConcurrent = 2
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 30 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 120 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 15 * time.Second
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.5-flash"
	}
	if c.Gemini.Location == "" {
		c.Gemini.Location = "us-central1"
	}
	if c.Summary.MinTranscriptChars == 0 {
		c.Summary.MinTranscriptChars = 100
	}
	if c.Summary.SubLangs == "" {
		c.Summary.SubLangs = "en.*,en"
	}
	if c.Summary.Language == "" {
		c.Summary.Language = "English"
	}

	return nil
}
