package config

import "github.com/spf13/viper"

// setDefaults registers fallback values for every tunable so a minimal
// config file still yields a runnable service.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "dealradar")
	v.SetDefault("database.database", "dealradar")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.producer.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.producer.batch_timeout", "100ms")
	v.SetDefault("kafka.producer.write_timeout", "10s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output_paths", []string{"stdout"})
	v.SetDefault("log.error_output_paths", []string{"stderr"})

	v.SetDefault("migrate.auto", true)
	v.SetDefault("migrate.source_url", "file://migrations")
}
