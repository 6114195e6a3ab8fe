package tool

import (
	"flag"

	"github.com/nutripeek/nutripeek-go/types"
)

// SetFlags parses CLI flags and returns the override config.
func SetFlags() types.Config {
	var cfg types.Config
	flag.StringVar(&cfg.Log, "log", "", "log mode: dev|prod|none")
	flag.StringVar(&cfg.UseConfigPath, "useConfigPath", "", "override config file path")
	flag.IntVar(&cfg.UsePort, "usePort", 0, "override HTTP listen port")
	flag.StringVar(&cfg.UseBaseURL, "useBaseUrl", "", "override public base URL encoded into upload QR codes")
	flag.StringVar(&cfg.UseInferenceURL, "useInferenceUrl", "", "override inference service URL")
	flag.StringVar(&cfg.UseDatabasePath, "useDatabasePath", "", "override nutrient database path")
	flag.BoolVar(&cfg.SkipNotifyWS, "skipNotifyWs", false, "disable the session status WebSocket endpoint")
	flag.Parse()
	return cfg
}
