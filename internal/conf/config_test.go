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
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"testing"

	"github.com/spf13/viper"
)

func TestDefaultValues(t *testing.T) {
	clearConfigEnvVars()
	defer clearConfigEnvVars()

	viper.Reset()
	InitConfig("", false)

	equals(t, "0.0.0.0:9000", Configuration.Server.BindAddress, "default bind address")
	equals(t, "memory", Configuration.Cache.Backend, "default cache backend")
	equals(t, 10000, Configuration.Cache.MaxItems, "default cache max items")
	equals(t, 3600, Configuration.Cache.BrowserCacheMaxAge, "default browser cache max age")
}

func TestServerBindAddressEnvironmentVariable(t *testing.T) {
	clearConfigEnvVars()
	defer clearConfigEnvVars()

	os.Setenv("VTS_SERVER_BINDADDRESS", "127.0.0.1:8080")
	viper.Reset()
	InitConfig("", false)

	equals(t, "127.0.0.1:8080", Configuration.Server.BindAddress, "BindAddress from env")
}

func TestDebugFlagForcesServerDebug(t *testing.T) {
	clearConfigEnvVars()
	defer clearConfigEnvVars()

	viper.Reset()
	InitConfig("", true)

	if !Configuration.Server.Debug {
		t.Errorf("expected Server.Debug=true when InitConfig is called with debug=true")
	}
}

func TestConfigFileOverriddenByEnvironment(t *testing.T) {
	clearConfigEnvVars()
	defer clearConfigEnvVars()

	configContent := `
Cache:
  MaxItems: 555
  Backend: file
`
	tempDir, err := os.MkdirTemp("", "vector-tile-server_test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tempDir)

	configFile := filepath.Join(tempDir, "test_config.yaml")
	if err := os.WriteFile(configFile, []byte(configContent), 0644); err != nil {
		t.Fatal(err)
	}

	os.Setenv("VTS_CACHE_MAXITEMS", "999")
	defer os.Unsetenv("VTS_CACHE_MAXITEMS")

	viper.Reset()
	InitConfig(configFile, false)

	equals(t, 999, Configuration.Cache.MaxItems, "MaxItems from env should win over config file")
	equals(t, "file", Configuration.Cache.Backend, "Backend from config file (no env override)")
}

func TestConfigFileOnly(t *testing.T) {
	clearConfigEnvVars()
	defer clearConfigEnvVars()

	configContent := `
Cache:
  MaxItems: 42
Metadata:
  Title: From Config File
`
	tempDir, err := os.MkdirTemp("", "vector-tile-server_test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tempDir)

	configFile := filepath.Join(tempDir, "test_config.yaml")
	if err := os.WriteFile(configFile, []byte(configContent), 0644); err != nil {
		t.Fatal(err)
	}

	viper.Reset()
	InitConfig(configFile, false)

	equals(t, 42, Configuration.Cache.MaxItems, "MaxItems from config file")
	equals(t, "From Config File", Configuration.Metadata.Title, "Title from config file")
}

func clearConfigEnvVars() {
	envVars := []string{
		"VTS_SERVER_BINDADDRESS",
		"VTS_SERVER_DEBUG",
		"VTS_CACHE_MAXITEMS",
		"VTS_CACHE_BACKEND",
	}
	for _, envVar := range envVars {
		os.Unsetenv(envVar)
	}
	Configuration = Config{}
}

func equals(tb testing.TB, exp, act interface{}, msg string) {
	if !reflect.DeepEqual(exp, act) {
		_, file, line, _ := runtime.Caller(1)
		fmt.Printf("%s:%d: %s - expected: %#v; got: %#v\n", filepath.Base(file), line, msg, exp, act)
		tb.FailNow()
	}
}
