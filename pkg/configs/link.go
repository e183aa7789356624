package configs

import "github.com/spf13/viper"

const (
	// DefaultLinkBaseURL 默认对外基础地址，生产环境必须显式配置.
	DefaultLinkBaseURL = "http://localhost:8080"
	// DefaultLinkUploadPath 上传链接的路径部分.
	DefaultLinkUploadPath = "/api/v1/files/upload"
)

// LinkConfig 上传链接签发配置.
// 对外域名通过配置显式注入，不从环境变量隐式读取.
type LinkConfig struct {
	// BaseURL 对外可达的基础地址，如 https://files.example.com
	BaseURL string `mapstructure:"base_url"    rule:"required,url"`
	// UploadPath 上传端点路径，token 以查询参数形式附加
	UploadPath string `mapstructure:"upload_path" rule:"required"`
}

// setDefaults 设置链接签发配置的默认值.
func (c *LinkConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("link.base_url", DefaultLinkBaseURL)
	v.SetDefault("link.upload_path", DefaultLinkUploadPath)
}
