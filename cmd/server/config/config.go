package config

type ServerConfig struct {
	Addr        string `yaml:"addr"`        // 既定 :5000
	MetricsAddr string `yaml:"metricsAddr"` // 既定 :2112
	MaxUploadMB int    `yaml:"maxUploadMB"` // 既定 16
}

func (ServerConfig) Key() string {
	return "server"
}
