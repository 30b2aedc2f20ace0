package conf

// Bootstrap 对应 configs/config.yaml 的顶层结构
type Bootstrap struct {
	Server  *Server  `json:"server"`
	Session *Session `json:"session"`
	Radar   *Radar   `json:"radar"`
}

type Server struct {
	Http *HTTP `json:"http"`
}

type HTTP struct {
	Addr    string `json:"addr"`
	Timeout string `json:"timeout"`
}

// Session 会话存储配置，时长使用 time.ParseDuration 格式
type Session struct {
	Ttl             string `json:"ttl"`
	CleanupInterval string `json:"cleanup_interval"`
	CookieSecure    bool   `json:"cookie_secure"`
}

type Radar struct {
	Llm         *LLM         `json:"llm"`
	Search      *Search      `json:"search"`
	Log         *Log         `json:"log"`
	Concurrency *Concurrency `json:"concurrency"`
	Report      *Report      `json:"report"`
}

type LLM struct {
	BaseUrl     string   `json:"base_url"`
	ApiKey      string   `json:"api_key"`
	Model       string   `json:"model"`
	Temperature *float32 `json:"temperature"`
	Timeout     int32    `json:"timeout"`
}

type Search struct {
	Provider   string   `json:"provider"`
	MaxResults int32    `json:"max_results"`
	Tavily     *Tavily  `json:"tavily"`
	Searxng    *SearXNG `json:"searxng"`
}

type Tavily struct {
	ApiKey string `json:"api_key"`
}

type SearXNG struct {
	BaseUrl string `json:"base_url"`
	Timeout int32  `json:"timeout"`
}

type Log struct {
	Level string `json:"level"`
	File  string `json:"file"`
}

type Concurrency struct {
	Qps     int32 `json:"qps"`
	Rpm     int32 `json:"rpm"`
	Markets int32 `json:"markets"`
}

type Report struct {
	FallbackBrief bool `json:"fallback_brief"`
}
