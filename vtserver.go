package main

/*
# Running
Usage: ./vector-tile-server [serve|generate|genconfig] [--config|-c FILE] [--debug|-d]

Browser: e.g. http://localhost:9000/

# Configuration
Config file path via --config/-c, or entirely through VTS_-prefixed
environment variables (e.g. VTS_SERVER_BINDADDRESS).

# Logging
Logging to stdout via logrus.
*/

import (
	"context"
	"fmt"
	"os"

	"github.com/pborman/getopt/v2"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/geocore/vtserver/internal/cache"
	"github.com/geocore/vtserver/internal/conf"
	"github.com/geocore/vtserver/internal/data"
	"github.com/geocore/vtserver/internal/seeder"
	"github.com/geocore/vtserver/internal/service"
)

var (
	flagHelp           bool
	flagVersion        bool
	flagDebugOn        bool
	flagDevModeOn      bool
	flagTestModeOn     bool
	flagConfigFilename string
	flagBindAddress    string
	flagDisableUI      bool

	flagTileset   string
	flagMinZoom   int
	flagMaxZoom   int
	flagWorkers   int
	flagOverwrite bool
)

func initCommandOptions() {
	getopt.FlagLong(&flagHelp, "help", '?', "Show command usage")
	getopt.FlagLong(&flagConfigFilename, "config", 'c', "", "config file name")
	getopt.FlagLong(&flagDebugOn, "debug", 'd', "Set logging level to TRACE")
	getopt.FlagLong(&flagDevModeOn, "devel", 0, "Run in development mode")
	getopt.FlagLong(&flagTestModeOn, "test", 't', "Serve a mock, disconnected catalog")
	getopt.FlagLong(&flagVersion, "version", 'v', "Output the version information")
	getopt.FlagLong(&flagBindAddress, "bind-address", 0, "", "HTTP bind address, overrides config")
	getopt.FlagLong(&flagDisableUI, "disable-ui", 0, "Disable HTML UI routes")

	getopt.FlagLong(&flagTileset, "tileset", 0, "", "generate: tileset name to seed")
	getopt.FlagLong(&flagMinZoom, "min-zoom", 0, 0, "generate: minimum zoom level")
	getopt.FlagLong(&flagMaxZoom, "max-zoom", 0, 0, "generate: maximum zoom level")
	getopt.FlagLong(&flagWorkers, "workers", 0, 0, "generate: worker count, 0 selects runtime.NumCPU()")
	getopt.FlagLong(&flagOverwrite, "overwrite", 0, "generate: rebuild tiles already present in the cache")
}

func main() {
	command := "serve"
	if len(os.Args) > 1 && os.Args[1][0] != '-' {
		command = os.Args[1]
		os.Args = append(os.Args[:1], os.Args[2:]...)
	}

	initCommandOptions()
	getopt.Parse()

	if flagHelp {
		getopt.Usage()
		os.Exit(1)
	}
	if flagVersion {
		fmt.Printf("%s %s\n", conf.AppConfig.Name, conf.AppConfig.Version)
		os.Exit(0)
	}

	if command == "genconfig" {
		runGenConfig()
		return
	}

	log.Infof("---- %s - Version %s ----", conf.AppConfig.Name, conf.AppConfig.Version)
	conf.InitConfig(flagConfigFilename, flagDebugOn)

	if flagBindAddress != "" {
		conf.Configuration.Server.BindAddress = flagBindAddress
	}
	if flagDisableUI {
		conf.Configuration.Server.DisableUI = true
	}
	if flagDevModeOn || flagTestModeOn {
		log.Info("running in development mode")
	}
	conf.DumpConfig()

	catalog, err := buildCatalog()
	if err != nil {
		log.Fatalf("catalog: %v", err)
	}

	ctx := context.Background()
	tileCache, err := cache.Build(ctx, conf.Configuration.Cache)
	if err != nil {
		log.Fatalf("cache: %v", err)
	}

	switch command {
	case "serve":
		runServe(catalog, tileCache)
	case "generate":
		runGenerate(ctx, catalog, tileCache)
	default:
		log.Fatalf("unknown command %q (expected serve, generate, or genconfig)", command)
	}
}

func buildCatalog() (*data.Catalog, error) {
	if flagTestModeOn {
		return data.CatMockInstance(), nil
	}
	return data.BuildCatalog(conf.Configuration)
}

func runServe(catalog *data.Catalog, tileCache *cache.Cache) {
	service.Initialize(catalog, tileCache)
	if err := service.Serve(conf.Configuration.Server.BindAddress); err != nil {
		log.Fatalf("serve: %v", err)
	}
}

func runGenerate(ctx context.Context, catalog *data.Catalog, tileCache *cache.Cache) {
	if flagTileset == "" {
		log.Fatal("generate requires --tileset NAME")
	}
	workers := flagWorkers
	if workers <= 0 {
		workers = conf.Configuration.Seed.Workers
	}
	s := seeder.New(catalog, tileCache, seeder.Options{
		Workers:    workers,
		QueueDepth: conf.Configuration.Seed.QueueDepth,
		Overwrite:  flagOverwrite,
	})

	log.Infof("seeding tileset %s zoom %d-%d", flagTileset, flagMinZoom, flagMaxZoom)
	progress, err := s.Run(ctx, flagTileset, flagMinZoom, flagMaxZoom)
	if err != nil {
		log.Fatalf("generate: %v", err)
	}
	log.Infof("seed complete: total=%d completed=%d skipped=%d failed=%d",
		progress.Total, progress.Completed, progress.Skipped, progress.Failed)
}

func runGenConfig() {
	template := conf.Config{
		Grids: map[string]conf.GridConfig{
			"web_mercator": {Builtin: "web_mercator"},
		},
		Datasources: map[string]conf.DatasourceConfig{
			"main": {Kind: "sql_spatial", Path: "/path/to/database.db"},
		},
		Tilesets: map[string]conf.TilesetConfig{
			"example": {
				Grid: "web_mercator",
				Layers: []conf.LayerConfig{
					{Name: "example_layer", Datasource: "main", GeometryColumn: "geom", MinZoom: 0, MaxZoom: 14},
				},
			},
		},
		Server: conf.ServerConfig{BindAddress: "0.0.0.0:9000"},
		Cache:  conf.CacheConfig{Enabled: true, Backend: "memory", MaxItems: 10000, MaxMemoryMB: 512, BrowserCacheMaxAge: 3600},
	}

	out, err := yaml.Marshal(template)
	if err != nil {
		log.Fatalf("genconfig: %v", err)
	}
	fmt.Print(string(out))
}
