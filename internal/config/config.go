package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"KeywordAnalyzer/internal/domain"
)

const (
	defaultTimezone = "Asia/Karachi"
	configPathEnv   = "KEYWORD_ANALYZER_CONFIG"

	logLevelEnv        = "LOG_LEVEL"
	llmAPIKeyEnv       = "LLM_API_KEY"
	llmBaseURLEnv      = "LLM_BASE_URL"
	llmModelEnv        = "LLM_MODEL"
	serpAPIKeyEnv      = "SERPAPI_API_KEY"
	contentRootEnv     = "BLOG_CONTENT_ROOT"
	indexFileEnv       = "BLOG_INDEX_FILE"
	metricsURLEnv      = "METRICS_WEBHOOK_URL"
	metricsTokenEnv    = "METRICS_TOKEN"
	intMetricsURLEnv   = "INT_METRICS_WEBHOOK_URL"
	intMetricsTokenEnv = "INT_METRICS_TOKEN"
	historyDSNEnv      = "HISTORY_DSN"
	outputDirEnv       = "KRA_OUTPUT_DIR"
	dataDirEnv         = "KRA_DATA_DIR"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging      LoggingConfig         `yaml:"logging"`
	LLM          LLMConfig             `yaml:"llm"`
	SerpAPI      SerpAPIConfig         `yaml:"serpapi"`
	Scoring      ScoringConfig         `yaml:"scoring"`
	Data         DataConfig            `yaml:"data"`
	ContentIndex ContentIndexConfig    `yaml:"contentIndex"`
	Telemetry    TelemetryConfig       `yaml:"telemetry"`
	History      HistoryConfig         `yaml:"history"`
	Brands       map[string]BrandEntry `yaml:"brands"`
	Platforms    []PlatformEntry       `yaml:"platforms"`
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// LLMConfig defines how to contact an OpenAI-compatible chat endpoint.
type LLMConfig struct {
	Endpoint    string        `yaml:"endpoint"`
	Model       string        `yaml:"model"`
	APIKey      string        `yaml:"apiKey"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
	// JSONMode sends response_format=json_object; many self-hosted servers
	// reject it.
	JSONMode bool `yaml:"jsonMode"`
}

// SerpAPIConfig wires the search-API keyword feed.
type SerpAPIConfig struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"apiKey"`
	Engine   string `yaml:"engine"`
}

// ScoringConfig carries default request knobs.
type ScoringConfig struct {
	Weights     domain.Weights `yaml:"weights"`
	TopClusters int            `yaml:"topClusters"`
	MaxRows     int            `yaml:"maxRows"`
}

// DataConfig locates input samples and output artifacts.
type DataConfig struct {
	DataDir          string   `yaml:"dataDir"`
	OutputDir        string   `yaml:"outputDir"`
	DefaultLocations []string `yaml:"defaultLocations"`
}

// ContentIndexConfig points at previously published content.
type ContentIndexConfig struct {
	Root    string `yaml:"root"`
	FeedURL string `yaml:"feedUrl"`
	// IndexFile is a prebuilt JSON index (blog_index.json); when set it is
	// read instead of walking Root.
	IndexFile string `yaml:"indexFile"`
}

// TelemetryConfig describes the two best-effort stage webhooks.
type TelemetryConfig struct {
	AgentName          string         `yaml:"agentName"`
	AgentOwner         string         `yaml:"agentOwner"`
	ClusteringJob      string         `yaml:"clusteringJob"`
	TopicGenerationJob string         `yaml:"topicGenerationJob"`
	WebhookURL         string         `yaml:"webhookUrl"`
	Token              string         `yaml:"token"`
	InternalWebhookURL string         `yaml:"internalWebhookUrl"`
	InternalToken      string         `yaml:"internalToken"`
	RunEnv             string         `yaml:"runEnv"`
	Timeout            time.Duration  `yaml:"timeout"`
	Timezone           string         `yaml:"timezone"`
	location           *time.Location `yaml:"-"`
}

// Location resolves the telemetry timezone string to a time.Location.
func (t TelemetryConfig) Location() *time.Location {
	if t.location != nil {
		return t.location
	}
	loc, err := time.LoadLocation(defaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// HistoryConfig selects the SQL store for run history.
type HistoryConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// BrandEntry maps a brand to the website/section pair reported in telemetry.
type BrandEntry struct {
	Website string `yaml:"website"`
	Section string `yaml:"section"`
}

// PlatformEntry is one row of the ordered platform table.
type PlatformEntry struct {
	Name     string   `yaml:"name"`
	Label    string   `yaml:"label"`
	Patterns []string `yaml:"patterns"`
}

// Load reads the YAML file named by KEYWORD_ANALYZER_CONFIG (if present).
func Load() Config {
	return LoadFile(os.Getenv(configPathEnv))
}

// LoadFile reads YAML configuration (if present) and applies environment overrides.
func LoadFile(path string) Config {
	// .env is optional
	_ = godotenv.Load()

	cfg := defaultConfig()

	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

// ResolveBrand returns the website/section pair for a brand. Unknown brands
// are a configuration error.
func (c Config) ResolveBrand(brand string) (website, section string, err error) {
	key := domain.NormalizeKey(brand)
	entry, ok := c.Brands[key]
	if !ok {
		return "", "", fmt.Errorf("%w %q: add it to the brands table with website and section", domain.ErrUnknownBrand, brand)
	}
	if entry.Website == "" || entry.Section == "" {
		return "", "", fmt.Errorf("%w %q: website/section cannot be empty", domain.ErrUnknownBrand, brand)
	}
	return entry.Website, entry.Section, nil
}

func (c *Config) applyEnvOverrides() {
	overrides := []struct {
		env    string
		target *string
	}{
		{logLevelEnv, &c.Logging.Level},
		{llmAPIKeyEnv, &c.LLM.APIKey},
		{llmBaseURLEnv, &c.LLM.Endpoint},
		{llmModelEnv, &c.LLM.Model},
		{serpAPIKeyEnv, &c.SerpAPI.APIKey},
		{contentRootEnv, &c.ContentIndex.Root},
		{indexFileEnv, &c.ContentIndex.IndexFile},
		{metricsURLEnv, &c.Telemetry.WebhookURL},
		{metricsTokenEnv, &c.Telemetry.Token},
		{intMetricsURLEnv, &c.Telemetry.InternalWebhookURL},
		{intMetricsTokenEnv, &c.Telemetry.InternalToken},
		{historyDSNEnv, &c.History.DSN},
		{outputDirEnv, &c.Data.OutputDir},
		{dataDirEnv, &c.Data.DataDir},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.target = v
		}
	}
}

func (c *Config) bindTimezone() {
	tz := c.Telemetry.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to UTC", tz)
		loc = time.UTC
	}
	c.Telemetry.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.LLM.Endpoint != "" {
		base.LLM.Endpoint = override.LLM.Endpoint
	}
	if override.LLM.Model != "" {
		base.LLM.Model = override.LLM.Model
	}
	if override.LLM.APIKey != "" {
		base.LLM.APIKey = override.LLM.APIKey
	}
	if override.LLM.Temperature != 0 {
		base.LLM.Temperature = override.LLM.Temperature
	}
	if override.LLM.Timeout != 0 {
		base.LLM.Timeout = override.LLM.Timeout
	}
	base.LLM.JSONMode = base.LLM.JSONMode || override.LLM.JSONMode

	if override.SerpAPI.Endpoint != "" {
		base.SerpAPI.Endpoint = override.SerpAPI.Endpoint
	}
	if override.SerpAPI.APIKey != "" {
		base.SerpAPI.APIKey = override.SerpAPI.APIKey
	}
	if override.SerpAPI.Engine != "" {
		base.SerpAPI.Engine = override.SerpAPI.Engine
	}

	if !override.Scoring.Weights.IsZero() {
		base.Scoring.Weights = override.Scoring.Weights
	}
	if override.Scoring.TopClusters > 0 {
		base.Scoring.TopClusters = override.Scoring.TopClusters
	}
	if override.Scoring.MaxRows > 0 {
		base.Scoring.MaxRows = override.Scoring.MaxRows
	}

	if override.Data.DataDir != "" {
		base.Data.DataDir = override.Data.DataDir
	}
	if override.Data.OutputDir != "" {
		base.Data.OutputDir = override.Data.OutputDir
	}
	if len(override.Data.DefaultLocations) > 0 {
		base.Data.DefaultLocations = override.Data.DefaultLocations
	}

	if override.ContentIndex.Root != "" {
		base.ContentIndex.Root = override.ContentIndex.Root
	}
	if override.ContentIndex.FeedURL != "" {
		base.ContentIndex.FeedURL = override.ContentIndex.FeedURL
	}
	if override.ContentIndex.IndexFile != "" {
		base.ContentIndex.IndexFile = override.ContentIndex.IndexFile
	}

	base.Telemetry = mergeTelemetry(base.Telemetry, override.Telemetry)

	if override.History.Driver != "" {
		base.History.Driver = override.History.Driver
	}
	if override.History.DSN != "" {
		base.History.DSN = override.History.DSN
	}

	for name, entry := range override.Brands {
		if base.Brands == nil {
			base.Brands = map[string]BrandEntry{}
		}
		base.Brands[domain.NormalizeKey(name)] = entry
	}

	if len(override.Platforms) > 0 {
		base.Platforms = override.Platforms
	}

	return base
}

func mergeTelemetry(base, override TelemetryConfig) TelemetryConfig {
	pick := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	pick(&base.AgentName, override.AgentName)
	pick(&base.AgentOwner, override.AgentOwner)
	pick(&base.ClusteringJob, override.ClusteringJob)
	pick(&base.TopicGenerationJob, override.TopicGenerationJob)
	pick(&base.WebhookURL, override.WebhookURL)
	pick(&base.Token, override.Token)
	pick(&base.InternalWebhookURL, override.InternalWebhookURL)
	pick(&base.InternalToken, override.InternalToken)
	pick(&base.RunEnv, override.RunEnv)
	pick(&base.Timezone, override.Timezone)
	if override.Timeout > 0 {
		base.Timeout = override.Timeout
	}
	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		LLM: LLMConfig{
			Endpoint:    "https://api.openai.com/v1/chat/completions",
			Model:       "gpt-oss",
			Temperature: 0.2,
			Timeout:     120 * time.Second,
		},
		SerpAPI: SerpAPIConfig{
			Endpoint: "https://serpapi.com/search",
			Engine:   "google",
		},
		Scoring: ScoringConfig{
			Weights:     domain.DefaultWeights(),
			TopClusters: domain.DefaultTopClusters,
			MaxRows:     domain.DefaultMaxRows,
		},
		Data: DataConfig{
			DataDir:   "./content",
			OutputDir: "./content",
			DefaultLocations: []string{
				"./data/samples",
				"/mnt/data/samples",
			},
		},
		Telemetry: TelemetryConfig{
			AgentName:          "Keyword Analyzer",
			AgentOwner:         "Content Team",
			ClusteringJob:      "Keyword Clustering",
			TopicGenerationJob: "Topics Generation",
			RunEnv:             "PROD",
			Timeout:            5 * time.Second,
			Timezone:           defaultTimezone,
		},
		History: HistoryConfig{Driver: "sqlite", DSN: ""},
		Brands: map[string]BrandEntry{
			"aspose":         {Website: "aspose.com", Section: "Blog"},
			"groupdocs":      {Website: "groupdocs.com", Section: "Blog"},
			"asposecloud":    {Website: "aspose.cloud", Section: "Blog"},
			"groupdocscloud": {Website: "groupdocs.cloud", Section: "Blog"},
			"conholdate":     {Website: "conholdate.com", Section: "Blog"},
			"familiarize":    {Website: "familiarize.com", Section: "Blog"},
		},
		Platforms: DefaultPlatforms(),
	}
}

// DefaultPlatforms returns the built-in platform table. Order matters: it is
// the detection order.
func DefaultPlatforms() []PlatformEntry {
	return []PlatformEntry{
		{Name: "python", Label: "Python", Patterns: []string{"python"}},
		{Name: "java", Label: "Java", Patterns: []string{"java"}},
		{Name: "csharp", Label: "C#", Patterns: []string{"c#", "csharp", "c-sharp", "dotnet", ".net", "asp.net", "vb.net"}},
		{Name: "cpp", Label: "C++", Patterns: []string{"c++", "cpp"}},
		{Name: "php", Label: "PHP", Patterns: []string{"php"}},
		{Name: "javascript", Label: "JavaScript", Patterns: []string{"javascript", "js"}},
		{Name: "nodejs", Label: "Node.js", Patterns: []string{"node.js", "nodejs", "node js"}},
	}
}
