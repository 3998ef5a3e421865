package beecp

import "time"

// DriverDefaultIsolation tells the pool to leave the driver's own default
// transaction isolation level in place rather than setting one explicitly.
const DriverDefaultIsolation = -999

// Config carries the tunables Open needs to build a Pool. Open fills most
// zero-valued duration and size fields with defaults (Validate only checks
// them); the fields documented below as meaningful at zero (InitialSize,
// MaxWait, IdleTimeout, HoldTimeout) keep their zero value.
type Config struct {
	// Factory produces the raw driver.Conn values the pool manages. Required.
	Factory ConnectionFactory

	// InitialSize is how many connections Open creates before returning.
	InitialSize int
	// PoolMaxSize is the hard ceiling on live connections.
	PoolMaxSize int
	// BorrowSemaphoreSize bounds concurrent in-flight acquire attempts. If
	// zero, it defaults to PoolMaxSize.
	BorrowSemaphoreSize int

	// MaxWait bounds how long Acquire blocks for admission or hand-off. Zero
	// means Acquire never parks: it succeeds at once or fails with
	// RequestTimeoutError.
	MaxWait time.Duration
	// IdleTimeout is how long an Idle connection may sit unused before the
	// idle-scan worker evicts it. Zero disables idle eviction.
	IdleTimeout time.Duration
	// HoldTimeout is how long a connection may stay Using before the
	// idle-scan worker treats it as abandoned and forcibly reclaims it. Zero
	// disables hold eviction.
	HoldTimeout time.Duration

	// ConnectionTestSQL is the probe query used when the driver connection
	// does not implement driver.Pinger. It has no default: an empty value is
	// sent as-is, so callers whose connections lack driver.Pinger should set
	// it explicitly.
	ConnectionTestSQL string
	// ConnectionTestInterval is the minimum time since last access before
	// IsAlive probes again; more recent activity is trusted as still alive.
	ConnectionTestInterval time.Duration
	// ConnectionTestTimeout bounds a single liveness probe.
	ConnectionTestTimeout time.Duration

	// IdleCheckInterval is the idle-scan worker's tick period.
	IdleCheckInterval time.Duration
	// DelayForNextClear is how long Clear waits between sweeps while
	// connections are still Using and ForceCloseUsingOnClear is false.
	DelayForNextClear time.Duration

	// FairMode selects the transfer discipline: false is Compete (default,
	// highest throughput), true is Fair (FIFO admission and hand-off).
	FairMode bool
	// ForceCloseUsingOnClear, when true, makes Clear forcibly close
	// in-use connections rather than waiting for them to be returned.
	ForceCloseUsingOnClear bool
	// EnableManagement registers the pool with RegisterManagement
	// automatically using the pool's Name. Callers that want to choose their
	// own mux should leave this false and call RegisterManagement directly.
	EnableManagement bool
	// Name identifies this pool in management output and log lines. Defaults
	// to "beecp" if empty.
	Name string

	// DefaultAutoCommit, DefaultReadOnly, DefaultCatalog, DefaultSchema are
	// recorded on every connection the pool creates. The pool does not apply
	// them to the driver connection, and Recycle does not restore them.
	DefaultAutoCommit bool
	DefaultReadOnly   bool
	DefaultCatalog    string
	DefaultSchema     string
	// DefaultTransactionIsolationCode is a driver-specific isolation level
	// constant, or DriverDefaultIsolation (also used when the field is zero).
	// Like the settings above it is recorded per connection but not applied
	// to the driver connection.
	DefaultTransactionIsolationCode int

	// Logger receives trace output if non-nil. Equivalent to calling
	// Pool.TraceOn("", cfg.Logger), except that Open installs it before
	// creating the InitialSize connections, so their creation is logged too.
	Logger Logger

	// Hooks registers lifecycle hooks (see HookPoint) before Open starts
	// creating InitialSize connections, so a BeforeCreate/AfterCreate hook
	// also observes the initial seeding. Equivalent to calling Pool.AddHook
	// for each entry immediately after Open, except it also covers the
	// connections Open itself creates.
	Hooks map[HookPoint][]Hook
}

// withDefaults returns a copy of cfg with zero-valued tunables filled in.
func (cfg Config) withDefaults() Config {
	if cfg.PoolMaxSize <= 0 {
		cfg.PoolMaxSize = 10
	}
	if cfg.BorrowSemaphoreSize <= 0 {
		cfg.BorrowSemaphoreSize = cfg.PoolMaxSize
	}
	if cfg.ConnectionTestInterval <= 0 {
		cfg.ConnectionTestInterval = 500 * time.Millisecond
	}
	if cfg.ConnectionTestTimeout <= 0 {
		cfg.ConnectionTestTimeout = 3 * time.Second
	}
	if cfg.IdleCheckInterval <= 0 {
		cfg.IdleCheckInterval = 30 * time.Second
	}
	if cfg.DelayForNextClear <= 0 {
		cfg.DelayForNextClear = 3 * time.Second
	}
	if cfg.Name == "" {
		cfg.Name = "beecp"
	}
	if cfg.DefaultTransactionIsolationCode == 0 {
		cfg.DefaultTransactionIsolationCode = DriverDefaultIsolation
	}
	return cfg
}

// Validate checks cfg for internal consistency, returning a
// *ConfigInvalidError describing the first problem found.
func (cfg Config) Validate() error {
	if cfg.Factory == nil {
		return &ConfigInvalidError{Field: "Factory", Reason: "must not be nil"}
	}
	if cfg.PoolMaxSize < 0 {
		return &ConfigInvalidError{Field: "PoolMaxSize", Reason: "must not be negative"}
	}
	if cfg.InitialSize < 0 {
		return &ConfigInvalidError{Field: "InitialSize", Reason: "must not be negative"}
	}
	if cfg.PoolMaxSize > 0 && cfg.InitialSize > cfg.PoolMaxSize {
		return &ConfigInvalidError{Field: "InitialSize", Reason: "must not exceed PoolMaxSize"}
	}
	if cfg.BorrowSemaphoreSize < 0 {
		return &ConfigInvalidError{Field: "BorrowSemaphoreSize", Reason: "must not be negative"}
	}
	if cfg.MaxWait < 0 {
		return &ConfigInvalidError{Field: "MaxWait", Reason: "must not be negative"}
	}
	if cfg.IdleTimeout < 0 {
		return &ConfigInvalidError{Field: "IdleTimeout", Reason: "must not be negative"}
	}
	if cfg.HoldTimeout < 0 {
		return &ConfigInvalidError{Field: "HoldTimeout", Reason: "must not be negative"}
	}
	return nil
}
