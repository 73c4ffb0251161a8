package postgres

import (
	"github.com/openintel/casegraph/internal/config"
)

func testDBConfig() config.DatabaseConfig {
	return config.DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "intel",
		Password: "secret",
		DBName:   "casegraph",
		MaxConns: 10,
	}
}
