package config

import "flag"

var (
	flagConfig    = flag.String("config", "", "Path to config file")
	flagDebug     = flag.Bool("debug", false, "Enable debug logging")
	flagOBJParser = flag.String("obj-parser", "", `Parser for .obj files: "stl" or "obj"`)
	flagEncoding  = flag.String("encoding", "", "Charset of names inside model files (e.g. euc-kr)")
	flagSize      = flag.Float64("size", 0, "Bound size for model-space normalization")
	flagLogFile   = flag.String("log-file", "", "Write logs to this file as well")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagOBJParser != "" {
		cfg.Loader.OBJParser = *flagOBJParser
	}
	if *flagEncoding != "" {
		cfg.Loader.NameEncoding = *flagEncoding
	}
	if *flagSize > 0 {
		cfg.View.BoundSize = float32(*flagSize)
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
}
