package snapcheck

// Option is a functional option for configuring a Workflow.
type Option interface {
	apply(*config)
}

type optionFunc func(*config)

func (f optionFunc) apply(c *config) {
	f(c)
}

type config struct {
	mode       Mode
	cache      CacheMode
	memoryName string
	targetDir  string
	maxConns   int
	runID      string
	observer   Observer
}

// WithMode selects the access strategy (exclusive connection or capacity-1
// pool). Default is ModeExclusive.
func WithMode(m Mode) Option {
	return optionFunc(func(c *config) {
		c.mode = m
	})
}

// WithSharedCache names the in-memory store and enables the shared cache,
// so independent handles opened with the same name observe one logical
// dataset. An empty name derives one from the run ID.
func WithSharedCache(name string) Option {
	return optionFunc(func(c *config) {
		c.cache = CacheShared
		c.memoryName = name
	})
}

// WithTargetDir sets the parent directory for the provisioned export
// target. Default is the system temp directory.
func WithTargetDir(dir string) Option {
	return optionFunc(func(c *config) {
		c.targetDir = dir
	})
}

// WithMaxConns sets the pool capacity for ModePooled. Default is 1, which
// is also what the workflow is designed to prove equivalent to an
// exclusive connection.
func WithMaxConns(n int) Option {
	return optionFunc(func(c *config) {
		c.maxConns = n
	})
}

// WithRunID sets the run identifier used in events and errors
// (useful for correlating with external systems). Default is a random UUID.
func WithRunID(id string) Option {
	return optionFunc(func(c *config) {
		c.runID = id
	})
}

// WithObserver sets the observer notified at every state transition.
func WithObserver(o Observer) Option {
	return optionFunc(func(c *config) {
		c.observer = o
	})
}
