package config

import "flag"

// StoreFlags registers the store selection flags of the command line tools.
// Defaults come from the same environment variables the server reads, so
// call LoadDotEnv first.
func StoreFlags(fs *flag.FlagSet) *Config {
	cfg := &Config{}
	fs.StringVar(&cfg.StoreBackend, "backend", getEnv("STORE_BACKEND", BackendSQLite), "Store backend: postgres, sqlite or mongo")
	fs.StringVar(&cfg.SQLitePath, "db", getEnv("SQLITE_PATH", "./data/findash.db"), "Path to SQLite database file")
	fs.StringVar(&cfg.PostgresURL, "postgres", getEnv("POSTGRES_URL", ""), "PostgreSQL connection string")
	fs.StringVar(&cfg.MongoURI, "mongo", getEnv("MONGO_URI", ""), "MongoDB connection URI")
	fs.StringVar(&cfg.MongoDB, "mongo-db", getEnv("MONGO_DATABASE", "findash"), "MongoDB database name")
	return cfg
}
