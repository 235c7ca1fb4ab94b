package config

// Config represents the daemon configuration
type Config struct {
	LogLevel  string          `yaml:"log_level"`
	HTTPAddr  string          `yaml:"http_addr"`
	Estimator EstimatorConfig `yaml:"estimator"`
	Study     *StudyConfig    `yaml:"study,omitempty"`
}

// EstimatorConfig holds the default knobs applied to estimation runs
// that do not specify their own.
type EstimatorConfig struct {
	// Method is the sampling strategy: loop, batch or parallel
	Method string `yaml:"method"`
	// Samples is the default sample count
	Samples int `yaml:"samples"`
	// Seed seeds the random source; 0 means time-based
	Seed int64 `yaml:"seed"`
	// Workers is the parallel partition count; 0 means GOMAXPROCS
	Workers int `yaml:"workers"`
	// ChunkSize bounds the coordinate buffer for batched draws; 0 means the built-in default
	ChunkSize int `yaml:"chunk_size"`
}

// StudyConfig describes a convergence study grid
type StudyConfig struct {
	SampleCounts []int `yaml:"sample_counts"`
	Repeats      int   `yaml:"repeats"`
	Seed         int64 `yaml:"seed"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		LogLevel: "info",
		HTTPAddr: ":8080",
		Estimator: EstimatorConfig{
			Method:  "batch",
			Samples: 1_000_000,
		},
	}
}

// Methods lists the valid estimator method names
var Methods = []string{"loop", "batch", "parallel"}

// ValidMethod reports whether name is a known estimator method
func ValidMethod(name string) bool {
	for _, m := range Methods {
		if m == name {
			return true
		}
	}
	return false
}
