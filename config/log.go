package config

type Log struct {
	Level string `mapstructure:"LEVEL" json:"level" yaml:"level"`
	// json（預設）或 console，本機開發時較好讀
	Format string `mapstructure:"FORMAT" json:"format" yaml:"format"`
}
