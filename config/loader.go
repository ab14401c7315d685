package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// 巢狀欄位以 __ 分隔，例如 APP__PORT、SEARCH__MAX_LIMIT
const keyDelimiter = "__"

// Source 設定來源；兩個檔案都空白時只讀環境變數，同時指定時以 EnvFile 優先
type Source struct {
	EnvFile  string
	YAMLFile string
	// Watch 開啟後檔案變更會就地更新 Configuration
	Watch    bool
	OnChange func(*Configuration, error)
}

func Load(src Source) (*Configuration, error) {
	v := viper.NewWithOptions(viper.KeyDelimiter(keyDelimiter))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", keyDelimiter))
	v.AutomaticEnv()

	file, kind := src.EnvFile, "env"
	if file == "" {
		file, kind = src.YAMLFile, "yaml"
	}
	if file != "" {
		v.SetConfigFile(file)
		v.SetConfigType(kind)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read %s config %s: %w", kind, file, err)
		}
	}
	bindEnvs(v, reflect.TypeOf(Configuration{}))

	conf := &Configuration{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	conf.ApplyDefaults()

	// 熱更新只影響每次讀取 config 的欄位（例如限流次數），連線設定需重啟
	if file != "" && src.Watch {
		v.OnConfigChange(func(fsnotify.Event) {
			err := v.Unmarshal(conf)
			if err == nil {
				conf.ApplyDefaults()
			}
			if src.OnChange != nil {
				src.OnChange(conf, err)
			}
		})
		v.WatchConfig()
	}
	return conf, nil
}

// bindEnvs 為每個葉節點欄位註冊環境變數，沒有設定檔時 Unmarshal 才看得到
func bindEnvs(v *viper.Viper, t reflect.Type, path ...string) {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" || tag == "-" {
			tag = field.Name
		}
		key := append(append([]string{}, path...), tag)
		ft := field.Type
		if ft.Kind() == reflect.Ptr {
			ft = ft.Elem()
		}
		if ft.Kind() == reflect.Struct {
			bindEnvs(v, ft, key...)
			continue
		}
		_ = v.BindEnv(strings.Join(key, keyDelimiter))
	}
}
