package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone  = "UTC"
	appName          = "tenderscanner"
	configPathEnv    = "TENDER_SCANNER_CONFIG"
	dotenvPathEnv    = "TENDER_SCANNER_DOTENV"
	logLevelEnv      = "LOG_LEVEL"
	devaidAPIKeyEnv  = "DEVAID_API_KEY"
	llmProviderEnv   = "LLM_PROVIDER"
	llmModelEnv      = "LLM_MODEL"
	openAIAPIKeyEnv  = "OPENAI_API_KEY"
	geminiAPIKeyEnv  = "GEMINI_API_KEY"
	slackTokenEnv    = "SLACK_BOT_TOKEN"
	slackChannelEnv  = "SLACK_CHANNEL_ID"
	ProviderOpenAI   = "openai"
	ProviderGemini   = "gemini"
	defaultUserAgent = "TenderScanner/1.0"
)

var defaultModels = map[string]string{
	ProviderOpenAI: "gpt-4.1",
	ProviderGemini: "gemini-2.5-flash",
}

// Config holds every setting the process needs. It is built once at start-up and passed
// down explicitly.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	DevAid    DevAidConfig    `yaml:"devaid"`
	Search    SearchConfig    `yaml:"search"`
	LLM       LLMConfig       `yaml:"llm"`
	Bidder    BidderConfig    `yaml:"bidder"`
	Slack     SlackConfig     `yaml:"slack"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
}

// LoggingConfig selects slog level and handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// SchedulerConfig defines when the pipeline should run.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	PollInterval   time.Duration  `yaml:"pollInterval"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// DevAidConfig describes the tender-listing API.
type DevAidConfig struct {
	BaseURL      string        `yaml:"baseUrl"`
	APIKey       string        `yaml:"apiKey"`
	Timeout      time.Duration `yaml:"timeout"`
	RateLimitRPS float64       `yaml:"rateLimitRps"`
	UserAgent    string        `yaml:"userAgent"`
}

// NamedID is one entry of the listing service's dictionaries.
type NamedID struct {
	Name string `yaml:"name"`
	ID   int    `yaml:"id"`
}

// SearchConfig is the fixed filter every run searches with.
type SearchConfig struct {
	Sort             string    `yaml:"sort"`
	PageSize         int       `yaml:"pageSize"`
	Keyword          string    `yaml:"keyword"`
	SearchedFields   []string  `yaml:"searchedFields"`
	Countries        []NamedID `yaml:"countries"`
	Sectors          []NamedID `yaml:"sectors"`
	Statuses         []int     `yaml:"statuses"`
	TenderTypes      []int     `yaml:"tenderTypes"`
	EligibilityAlias string    `yaml:"eligibilityAlias"`
	BudgetMinEUR     int       `yaml:"budgetMinEur"`
	BudgetMaxEUR     int       `yaml:"budgetMaxEur"`
}

// CountryIDs lists configured location ids in order.
func (s SearchConfig) CountryIDs() []int {
	return ids(s.Countries)
}

// SectorIDs lists configured sector ids in order.
func (s SearchConfig) SectorIDs() []int {
	return ids(s.Sectors)
}

// CountryNames lists configured location names in order.
func (s SearchConfig) CountryNames() []string {
	names := make([]string, 0, len(s.Countries))
	for _, c := range s.Countries {
		names = append(names, c.Name)
	}
	return names
}

func ids(items []NamedID) []int {
	out := make([]int, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}

// LLMConfig defines how to reach the web-search capable model.
type LLMConfig struct {
	Provider           string        `yaml:"provider"`
	Endpoint           string        `yaml:"endpoint"`
	Model              string        `yaml:"model"`
	APIKey             string        `yaml:"apiKey"`
	Timeout            time.Duration `yaml:"timeout"`
	AnalysisCharBudget int           `yaml:"analysisCharBudget"`
}

// BidderConfig describes the organisation the go/no-go prompt reasons for.
type BidderConfig struct {
	Name               string   `yaml:"name"`
	OperatingCountries []string `yaml:"operatingCountries"`
	SecondaryCountries string   `yaml:"secondaryCountries"`
	ResearchAreas      string   `yaml:"researchAreas"`
	MinimumBudget      string   `yaml:"minimumBudget"`
}

// SlackConfig wires the notification channel.
type SlackConfig struct {
	BotToken  string `yaml:"botToken"`
	ChannelID string `yaml:"channelId"`
	APIURL    string `yaml:"apiUrl"`
}

// Enabled reports whether notifications can be delivered.
func (s SlackConfig) Enabled() bool {
	return strings.TrimSpace(s.BotToken) != "" && strings.TrimSpace(s.ChannelID) != ""
}

// PipelineConfig tunes the per-run behaviour.
type PipelineConfig struct {
	MaxTenders   int    `yaml:"maxTenders"`
	SummaryLimit int    `yaml:"summaryLimit"`
	BotName      string `yaml:"botName"`
}

// Load reads .env, the YAML file (if present) and applies environment overrides.
func Load() Config {
	loadDotenv()

	cfg := defaultConfig()

	if path := configPath(); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			fileCfg := defaultConfig()
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = fileCfg
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.applyFloors()
	cfg.bindTimezone()

	return cfg
}

// DefaultPath is where the YAML file is looked up when TENDER_SCANNER_CONFIG is unset.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.yaml")
}

func configPath() string {
	if path := os.Getenv(configPathEnv); path != "" {
		return path
	}
	path := DefaultPath()
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

func loadDotenv() {
	path := os.Getenv(dotenvPathEnv)
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("config: cannot load %s: %v", path, err)
	}
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(devaidAPIKeyEnv); v != "" {
		c.DevAid.APIKey = v
	}

	if v := os.Getenv(llmProviderEnv); v != "" {
		c.LLM.Provider = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv(llmModelEnv); v != "" {
		c.LLM.Model = v
	}
	if c.LLM.APIKey == "" {
		switch c.LLM.Provider {
		case ProviderGemini:
			c.LLM.APIKey = os.Getenv(geminiAPIKeyEnv)
		default:
			c.LLM.APIKey = os.Getenv(openAIAPIKeyEnv)
		}
	}

	if v := os.Getenv(slackTokenEnv); v != "" {
		c.Slack.BotToken = v
	}
	if v := os.Getenv(slackChannelEnv); v != "" {
		c.Slack.ChannelID = v
	}
}

// applyFloors restores defaults for values a partial YAML file zeroed out.
func (c *Config) applyFloors() {
	def := defaultConfig()
	if c.Scheduler.PollInterval <= 0 {
		c.Scheduler.PollInterval = def.Scheduler.PollInterval
	}
	if c.Scheduler.CronExpression == "" {
		c.Scheduler.CronExpression = def.Scheduler.CronExpression
	}
	if c.DevAid.Timeout <= 0 {
		c.DevAid.Timeout = def.DevAid.Timeout
	}
	if c.DevAid.UserAgent == "" {
		c.DevAid.UserAgent = def.DevAid.UserAgent
	}
	if c.Search.PageSize <= 0 {
		c.Search.PageSize = def.Search.PageSize
	}
	if c.LLM.Timeout <= 0 {
		c.LLM.Timeout = def.LLM.Timeout
	}
	if c.LLM.AnalysisCharBudget <= 0 {
		c.LLM.AnalysisCharBudget = def.LLM.AnalysisCharBudget
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = ProviderOpenAI
	}
	if c.LLM.Model == "" {
		c.LLM.Model = defaultModels[c.LLM.Provider]
	}
	if c.LLM.Endpoint == "" && c.LLM.Provider == ProviderOpenAI {
		c.LLM.Endpoint = "https://api.openai.com/v1/responses"
	}
	if c.Pipeline.SummaryLimit <= 0 {
		c.Pipeline.SummaryLimit = def.Pipeline.SummaryLimit
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Scheduler: SchedulerConfig{
			CronExpression: "0 7 * * 1-5",
			Timezone:       defaultTimezone,
			PollInterval:   2 * time.Minute,
			location:       tz,
		},
		DevAid: DevAidConfig{
			BaseURL:      "https://www.developmentaid.org/api/external",
			Timeout:      30 * time.Second,
			RateLimitRPS: 2,
			UserAgent:    defaultUserAgent,
		},
		Search: SearchConfig{
			Sort:           "posted_date.desc",
			PageSize:       50,
			Keyword:        "survey | research | evaluation | monitoring",
			SearchedFields: []string{"title", "description", "documents"},
			Countries: []NamedID{
				{Name: "Kenya", ID: 35},
				{Name: "Rwanda", ID: 51},
				{Name: "Ethiopia", ID: 28},
				{Name: "Tanzania", ID: 62},
				{Name: "Uganda", ID: 65},
				{Name: "Sierra Leone", ID: 56},
				{Name: "Peru", ID: 109},
			},
			Sectors: []NamedID{
				{Name: "Agriculture", ID: 100},
				{Name: "Education", ID: 5},
				{Name: "Energy", ID: 6},
				{Name: "Environment & NRM", ID: 7},
				{Name: "Gender", ID: 9},
				{Name: "Health", ID: 11},
				{Name: "Labour Market & Employment", ID: 14},
				{Name: "Financial Services & Audit", ID: 92},
				{Name: "Food systems and Livelihoods", ID: 8},
				{Name: "Monitoring & Evaluation", ID: 30},
				{Name: "Research & Innovation", ID: 87},
				{Name: "Social development", ID: 22},
				{Name: "Statistics & Data", ID: 43},
				{Name: "Urban development", ID: 34},
				{Name: "Water & Sanitation", ID: 48},
				{Name: "Youth and Children", ID: 27},
			},
			// forecast, open, country programming, formulation, approval
			Statuses:         []int{2, 3, 8, 9, 10},
			TenderTypes:      []int{4},
			EligibilityAlias: "organisation",
			BudgetMinEUR:     15000,
			BudgetMaxEUR:     20000000,
		},
		LLM: LLMConfig{
			Provider:           ProviderOpenAI,
			Timeout:            5 * time.Minute,
			AnalysisCharBudget: 10000,
		},
		Bidder: BidderConfig{
			Name:               "Laterite",
			OperatingCountries: []string{"Rwanda", "Ethiopia", "Tanzania", "Uganda", "Kenya", "Sierra Leone", "Peru"},
			SecondaryCountries: "the Netherlands (for non-survey work)",
			ResearchAreas:      "impact evaluations, data systems, surveys, monitoring & evaluation",
			MinimumBudget:      "150k USD",
		},
		Pipeline: PipelineConfig{
			MaxTenders:   5,
			SummaryLimit: 5000,
			BotName:      "BDC Tender Fetcher Bot",
		},
	}
}
