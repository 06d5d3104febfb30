package cfg

import "time"

type Cfg struct {
	// Input and state
	ConfigFile    string
	StateDriver   string
	StateDir      string
	DBPath        string
	RedisAddress  string
	RedisPassword string
	RedisDB       int

	// Output
	OutputDir         string
	BaseUrl           string
	MaxFeedItems      int
	RecentPerProduct  int
	DescriptionFormat string

	// Fetching
	RequestTimeout int // seconds
	RequestDelay   int // milliseconds
	UserAgent      string

	// Serve mode
	Serve             bool
	Port              string
	SchedulerInterval int // seconds
	APIAccessKey      string

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}

func (c *Cfg) GetRequestTimeout() time.Duration {
	if c.RequestTimeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.RequestTimeout) * time.Second
}

func (c *Cfg) GetRequestDelay() time.Duration {
	if c.RequestDelay < 0 {
		return 0
	}
	return time.Duration(c.RequestDelay) * time.Millisecond
}

func (c *Cfg) GetSchedulerInterval() time.Duration {
	if c.SchedulerInterval <= 0 {
		return time.Hour
	}
	return time.Duration(c.SchedulerInterval) * time.Second
}
