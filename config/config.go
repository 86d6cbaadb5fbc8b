package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sat20-labs/tokenledger/common"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

type YamlConf struct {
	DB         DB         `yaml:"db"`
	Log        Log        `yaml:"log"`
	Ledger     Ledger     `yaml:"ledger"`
	RPCService RPCService `yaml:"rpc_service"`
}

type DB struct {
	Engine string `yaml:"engine"` // pebble (default), leveldb, bbolt
	Path   string `yaml:"path"`
}

type Log struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
}

type Ledger struct {
	// run the conservation audit after every committed operation
	SelfCheck bool `yaml:"self_check"`
}

type RPCService struct {
	Addr    string `yaml:"addr"`
	Proxy   string `yaml:"proxy"`
	LogPath string `yaml:"log_path"`
	// max requests per second per remote address, 0 disables limiting
	RateLimit int `yaml:"rate_limit"`
}

func GetBaseDir() string {
	execPath, err := os.Executable()
	if err != nil {
		return "./."
	}
	return filepath.Dir(execPath)
}

func InitConfig(configFile string) *YamlConf {
	if configFile == "" {
		for i, item := range os.Args {
			if item == "-env" {
				if i < len(os.Args) {
					configFile = os.Args[i+1]
					break
				}
			}
		}
		if configFile == "" {
			configFile = "./.env"
		}
	}
	if !strings.HasPrefix(configFile, "/") {
		configFile = filepath.Join(GetBaseDir(), configFile)
	}

	fmt.Printf("config file: %s\n", configFile)

	cfg, err := LoadYamlConf(configFile)
	if err != nil {
		common.Log.Error(err)
		return nil
	}
	return cfg
}

func LoadYamlConf(cfgPath string) (*YamlConf, error) {
	confFile, err := os.Open(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open cfg: %s, error: %s", cfgPath, err)
	}
	defer confFile.Close()

	ret := &YamlConf{}
	decoder := yaml.NewDecoder(confFile)
	err = decoder.Decode(ret)
	if err != nil {
		return nil, fmt.Errorf("failed to decode cfg: %s, error: %s", cfgPath, err)
	}

	_, err = logrus.ParseLevel(ret.Log.Level)
	if err != nil {
		ret.Log.Level = "info"
	}

	if ret.Log.Path == "" {
		ret.Log.Path = "log"
	}
	ret.Log.Path = filepath.FromSlash(ret.Log.Path)
	if ret.Log.Path[len(ret.Log.Path)-1] != filepath.Separator {
		ret.Log.Path += string(filepath.Separator)
	}

	if ret.DB.Path == "" {
		ret.DB.Path = "db"
	}
	ret.DB.Path = filepath.FromSlash(ret.DB.Path)
	if ret.DB.Path[len(ret.DB.Path)-1] != filepath.Separator {
		ret.DB.Path += string(filepath.Separator)
	}

	if ret.RPCService.Addr == "" {
		ret.RPCService.Addr = "0.0.0.0:8019"
	}
	if ret.RPCService.Proxy != "" && ret.RPCService.Proxy[0] != '/' {
		ret.RPCService.Proxy = "/" + ret.RPCService.Proxy
	}
	ret.RPCService.Proxy = strings.TrimSuffix(ret.RPCService.Proxy, "/")
	if ret.RPCService.LogPath == "" {
		ret.RPCService.LogPath = "log"
	}

	return ret, nil
}
