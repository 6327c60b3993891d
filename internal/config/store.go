package config

// StoreConfig holds the document store connection parameters
type StoreConfig struct {
	Type    string `mapstructure:"type"    yaml:"type"    validate:"oneof=sqlite postgres badger consul s3 memory"`
	Host    string `mapstructure:"host"    yaml:"host"`
	Port    int    `mapstructure:"port"    yaml:"port"    validate:"gte=0,lte=65535"`
	Write   bool   `mapstructure:"write"   yaml:"write"`
	DBName  string `mapstructure:"dbname"  yaml:"dbname"  validate:"required"`
	Timeout string `mapstructure:"timeout" yaml:"timeout"`

	// Path of the sqlite database file or the badger data directory.
	// Defaults to $HOME/.coda/<dbname>
	Path string `mapstructure:"path" yaml:"path"`

	// PostgreSQL
	User     string `mapstructure:"user"     yaml:"user"`
	Password string `mapstructure:"password" yaml:"password"`
	SSLMode  string `mapstructure:"sslmode"  yaml:"sslmode"`

	// Consul
	Token      string `mapstructure:"token"      yaml:"token"`
	Datacenter string `mapstructure:"datacenter" yaml:"datacenter"`

	// Key prefix used by consul and s3
	Prefix string `mapstructure:"prefix" yaml:"prefix"`

	// S3
	Bucket    string `mapstructure:"bucket"     yaml:"bucket"`
	AccessKey string `mapstructure:"access_key" yaml:"access_key"`
	SecretKey string `mapstructure:"secret_key" yaml:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"    yaml:"use_ssl"`
}
