package config

type TelemetryConfig struct {
	Metric struct {
		Enabled bool      `yaml:"enabled" mapstructure:"ENABLED" json:"enabled"`
		Buckets []float64 `yaml:"buckets" mapstructure:"BUCKETS" json:"buckets"`
	} `yaml:"metric" mapstructure:"METRIC" json:"metric"`
	Trace struct {
		Enabled     bool   `yaml:"enabled" mapstructure:"ENABLED" json:"enabled"`
		EndpointUrl string `yaml:"endpointUrl" mapstructure:"ENDPOINT_URL" json:"endpointUrl"`
		// 0 < ratio < 1 時依 trace ID 取樣，其餘全部取樣
		SampleRatio float64 `yaml:"sampleRatio" mapstructure:"SAMPLE_RATIO" json:"sampleRatio"`
		// 額外解析 X-Cloud-Trace-Context
		GCPPropagation bool `yaml:"gcpPropagation" mapstructure:"GCP_PROPAGATION" json:"gcpPropagation"`
	} `yaml:"trace" mapstructure:"TRACE" json:"trace"`
}
