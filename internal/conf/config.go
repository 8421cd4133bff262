package conf

/*
 Copyright 2019 - 2025 Crunchy Data Solutions, Inc.
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at
      http://www.apache.org/licenses/LICENSE-2.0
 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

import (
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// GridConfig describes one named grid, either a builtin ("web_mercator",
// "wgs84") selected by Builtin, or a fully user-defined tiling scheme.
type GridConfig struct {
	Builtin                string
	SRID                   int
	Unit                   string
	Origin                 string
	MinX, MinY, MaxX, MaxY float64
	TileWidth, TileHeight  int
	Resolutions            []float64
}

// QueryVariantConfig is one zoom-bounded form of a layer's query.
type QueryVariantConfig struct {
	MinZoom, MaxZoom int
	HasBounds        bool
	SourceTable      string
	SQL              string
}

// LayerConfig describes one tileset layer.
type LayerConfig struct {
	Name            string
	Datasource      string
	Table           string // source table/view name, defaults to Name when empty
	GeometryColumn  string
	GeometryType    string
	SRID            int
	FidField        string
	BufferSize      int
	Simplify        bool
	Tolerance       float64
	ToleranceByZoom map[int]float64
	MakeValid       bool
	QueryLimit      int
	MinZoom         int
	MaxZoom         int
	Properties      []string
	Variants        []QueryVariantConfig
}

// TilesetConfig describes one named tileset.
type TilesetConfig struct {
	Grid        string
	Layers      []LayerConfig
	Attribution string
	Center      [3]float64
	Bounds      []float64
}

// DatasourceConfig describes one named datasource connection.
type DatasourceConfig struct {
	Kind              string // "sql_spatial" or "vector_file"
	Path              string
	SRID              int
	MaxOpenConns      int
	MaxIdleConns      int
	ConnMaxLifetimeS  int
	ConnMaxIdleTimeS  int
}

// ServerConfig is the HTTP server's own settings.
type ServerConfig struct {
	BindAddress string
	BasePath    string
	Debug       bool
	DisableUI   bool
	AssetsPath  string
}

// CacheConfig configures the tile cache front layer and durable backend.
type CacheConfig struct {
	Enabled            bool
	Backend            string // "memory", "file", "s3", or "null"
	Path               string
	Bucket             string
	Prefix             string
	Region             string
	Endpoint           string
	ForcePathStyle     bool
	MaxMemoryMB        int
	MaxItems           int
	BrowserCacheMaxAge int
	DisableApi         bool
	ApiKey             string
}

// MetadataConfig is descriptive metadata surfaced in TileJSON and the viewer.
type MetadataConfig struct {
	Title       string
	Description string
	Attribution string
}

// SeedConfig configures the `generate` CLI subcommand's worker pool.
type SeedConfig struct {
	Workers    int
	QueueDepth int // queue capacity is QueueDepth * Workers
}

// Config is the full application configuration (§2.2).
type Config struct {
	Grids       map[string]GridConfig
	Datasources map[string]DatasourceConfig
	Tilesets    map[string]TilesetConfig
	Server      ServerConfig
	Cache       CacheConfig
	Metadata    MetadataConfig
	Seed        SeedConfig
}

// Configuration is the process-wide effective configuration, populated by
// InitConfig.
var Configuration Config

func setDefaults() {
	viper.SetDefault("Server.BindAddress", "0.0.0.0:9000")
	viper.SetDefault("Server.Debug", false)
	viper.SetDefault("Server.DisableUI", false)
	viper.SetDefault("Cache.Enabled", true)
	viper.SetDefault("Cache.Backend", "memory")
	viper.SetDefault("Cache.MaxMemoryMB", 512)
	viper.SetDefault("Cache.MaxItems", 10000)
	viper.SetDefault("Cache.BrowserCacheMaxAge", 3600)
	viper.SetDefault("Cache.DisableApi", false)
	viper.SetDefault("Seed.Workers", 0) // 0 means runtime.NumCPU()
	viper.SetDefault("Seed.QueueDepth", 4)
}

// InitConfig loads the effective Configuration from built-in defaults,
// filename (if non-empty), and the VTS_-prefixed environment, in that
// order of increasing precedence, following the teacher's
// InitConfig/viper wiring renamed from DUCKDBTS_ to VTS_.
func InitConfig(filename string, debug bool) {
	setDefaults()

	viper.SetEnvPrefix(AppConfig.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if filename != "" {
		viper.SetConfigFile(filename)
		if err := viper.ReadInConfig(); err != nil {
			log.Warnf("config: could not read %s: %v", filename, err)
		}
	}

	if err := viper.Unmarshal(&Configuration); err != nil {
		log.Errorf("config: unmarshal failed: %v", err)
	}

	if debug || Configuration.Server.Debug {
		Configuration.Server.Debug = true
		log.SetLevel(log.TraceLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
}

// DumpConfig logs the effective configuration at startup, the way the
// teacher's main() calls it after InitConfig.
func DumpConfig() {
	log.Infof("%s version %s", AppConfig.Name, AppConfig.Version)
	log.Infof("server: bind=%s base_path=%q debug=%v disable_ui=%v",
		Configuration.Server.BindAddress, Configuration.Server.BasePath,
		Configuration.Server.Debug, Configuration.Server.DisableUI)
	log.Infof("cache: enabled=%v backend=%s max_items=%d max_memory_mb=%d",
		Configuration.Cache.Enabled, Configuration.Cache.Backend,
		Configuration.Cache.MaxItems, Configuration.Cache.MaxMemoryMB)
	log.Infof("grids=%d datasources=%d tilesets=%d",
		len(Configuration.Grids), len(Configuration.Datasources), len(Configuration.Tilesets))
}
