package model

import "time"

// Config holds every tunable of a run. Site selectors and URLs live here so
// structural drift on either site can be patched from the config file.
type Config struct {
	Court   CourtConfig   `yaml:"court" mapstructure:"court"`
	People  PeopleConfig  `yaml:"people" mapstructure:"people"`
	Browser BrowserConfig `yaml:"browser" mapstructure:"browser"`
	HTTP    HTTPConfig    `yaml:"http" mapstructure:"http"`
	Cache   CacheConfig   `yaml:"cache" mapstructure:"cache"`
	Enrich  EnrichConfig  `yaml:"enrich" mapstructure:"enrich"`
	Output  OutputConfig  `yaml:"output" mapstructure:"output"`
}

// CourtConfig maps the judicial property-address search site
type CourtConfig struct {
	SearchURL         string `yaml:"search_url" mapstructure:"search_url"`
	TownInput         string `yaml:"town_input" mapstructure:"town_input"`                 // CSS selector
	SubmitButton      string `yaml:"submit_button" mapstructure:"submit_button"`           // CSS selector
	ResultsTableID    string `yaml:"results_table_id" mapstructure:"results_table_id"`     // Element id, not a selector
	NoResultsSelector string `yaml:"no_results_selector" mapstructure:"no_results_selector"`
	DetailURL         string `yaml:"detail_url" mapstructure:"detail_url"`
	DocketParam       string `yaml:"docket_param" mapstructure:"docket_param"`
	ReadySelector     string `yaml:"ready_selector" mapstructure:"ready_selector"` // Detail page readiness gate
	DefendantSelector string `yaml:"defendant_selector" mapstructure:"defendant_selector"`
	AddressSelector   string `yaml:"address_selector" mapstructure:"address_selector"`
}

// PeopleConfig maps the people-search site used for phone lookups
type PeopleConfig struct {
	SearchURL       string        `yaml:"search_url" mapstructure:"search_url"`
	CardSelector    string        `yaml:"card_selector" mapstructure:"card_selector"`
	NameSelector    string        `yaml:"name_selector" mapstructure:"name_selector"`
	AddressSelector string        `yaml:"address_selector" mapstructure:"address_selector"`
	PhoneSelector   string        `yaml:"phone_selector" mapstructure:"phone_selector"`
	PhonePrefix     string        `yaml:"phone_prefix" mapstructure:"phone_prefix"`
	MaxCards        int           `yaml:"max_cards" mapstructure:"max_cards"`
	FallbackState   string        `yaml:"fallback_state" mapstructure:"fallback_state"`
	RateLimit       time.Duration `yaml:"rate_limit" mapstructure:"rate_limit"` // Interval between lookup navigations
	Settle          time.Duration `yaml:"settle" mapstructure:"settle"`         // Pause after navigation before reading
	RespectRobots   bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
}

// BrowserConfig configures the shared browser session
type BrowserConfig struct {
	Headless    bool          `yaml:"headless" mapstructure:"headless"`
	ExecPath    string        `yaml:"exec_path,omitempty" mapstructure:"exec_path"`
	RemoteURL   string        `yaml:"remote_url,omitempty" mapstructure:"remote_url"` // Attach to a running Chrome instead
	UserAgent   string        `yaml:"user_agent" mapstructure:"user_agent"`
	WaitTimeout time.Duration `yaml:"wait_timeout" mapstructure:"wait_timeout"` // Upper bound for readiness gates
	ProxyServer string        `yaml:"proxy_server,omitempty" mapstructure:"proxy_server"`
}

// HTTPConfig configures the plain HTTP client used for robots.txt
type HTTPConfig struct {
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent  string        `yaml:"user_agent" mapstructure:"user_agent"`
	HTTPProxy  string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
}

// CacheConfig configures the phone lookup cache
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
	Dir     string        `yaml:"dir,omitempty" mapstructure:"dir"` // Empty keeps the cache in memory only
}

// EnrichConfig controls detail enrichment failure handling
type EnrichConfig struct {
	ContinueOnError bool          `yaml:"continue_on_error" mapstructure:"continue_on_error"`
	Retries         int           `yaml:"retries" mapstructure:"retries"`
	RetryBackoff    time.Duration `yaml:"retry_backoff" mapstructure:"retry_backoff"` // Initial interval
}

// OutputConfig controls export and archiving
type OutputConfig struct {
	CSVPath  string `yaml:"csv_path" mapstructure:"csv_path"`
	Database string `yaml:"database,omitempty" mapstructure:"database"` // SQLite run archive, empty disables
	Table    bool   `yaml:"table" mapstructure:"table"`
	Verbose  bool   `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns the hand-mapped configuration for the Connecticut
// judicial site and the people-search site
func DefaultConfig() *Config {
	return &Config{
		Court: CourtConfig{
			SearchURL:         "https://civilinquiry.jud.ct.gov/PropertyAddressSearch.aspx",
			TownInput:         "#ctl00_ContentPlaceHolder1_txtCityTown",
			SubmitButton:      "#ctl00_ContentPlaceHolder1_btnSubmit",
			ResultsTableID:    "ctl00_ContentPlaceHolder1_gvPropertyResults",
			NoResultsSelector: "#ctl00_ContentPlaceHolder1_lblMessage",
			DetailURL:         "https://civilinquiry.jud.ct.gov/CaseDetail/PublicCaseDetail.aspx",
			DocketParam:       "DocketNo",
			ReadySelector:     "#ctl00_tblContent",
			DefendantSelector: "span#ctl00_ContentPlaceHolder1_CaseDetailParties1_gvParties_ctl05_lblPtyPartyName",
			AddressSelector:   "span#ctl00_ContentPlaceHolder1_CaseDetailBasicInfo1_lblPropertyAddress",
		},
		People: PeopleConfig{
			SearchURL:       "https://www.truepeoplesearch.com/results",
			CardSelector:    ".search-result",
			NameSelector:    ".h4",
			AddressSelector: `div[data-label="Current Address"] span[itemprop="address"]`,
			PhoneSelector:   `div[data-label="Phone Numbers"] a`,
			PhonePrefix:     "tel:",
			MaxCards:        5,
			FallbackState:   "CT",
			RateLimit:       2 * time.Second,
			Settle:          3 * time.Second,
		},
		Browser: BrowserConfig{
			Headless:    true,
			UserAgent:   "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
			WaitTimeout: 30 * time.Second,
		},
		HTTP: HTTPConfig{
			Timeout:   10 * time.Second,
			UserAgent: "docketscan/0.1 (+https://github.com/ppiankov/docketscan)",
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     24 * time.Hour,
		},
		Enrich: EnrichConfig{
			RetryBackoff: 2 * time.Second,
		},
		Output: OutputConfig{
			CSVPath: "./output/cases.csv",
			Table:   true,
		},
	}
}
