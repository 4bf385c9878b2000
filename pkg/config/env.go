package config

const (
	EnvPrefix = "GESTFOOD"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv       = "GESTFOOD_APP_ENV"
	EnvPort         = "GESTFOOD_APP_PORT"
	EnvDeviceID     = "GESTFOOD_DEVICE_ID"
	EnvAPIBaseURL   = "GESTFOOD_API_BASE_URL"
	EnvAPITimeout   = "GESTFOOD_API_TIMEOUT"
	EnvStoreDriver  = "GESTFOOD_STORE_DRIVER"
	EnvDBDSN        = "GESTFOOD_DB_DSN"
	EnvDBSQLitePath = "GESTFOOD_DB_SQLITE_PATH"
	EnvDBHost       = "GESTFOOD_DB_HOST"
	EnvDBUser       = "GESTFOOD_DB_USER"
	EnvDBName       = "GESTFOOD_DB_NAME"
	EnvRedisURL     = "GESTFOOD_REDIS_URL"
	EnvRedisAddr    = "GESTFOOD_REDIS_ADDR"
	EnvPixKey       = "GESTFOOD_PIX_KEY"

	StoreDriverMemory   = "memory"
	StoreDriverSQLite   = "sqlite"
	StoreDriverPostgres = "postgres"
	StoreDriverRedis    = "redis"
)

var validStoreDrivers = []string{
	StoreDriverMemory,
	StoreDriverSQLite,
	StoreDriverPostgres,
	StoreDriverRedis,
}

var postgresDBEnvVars = []string{
	EnvDBHost,
	EnvDBUser,
	EnvDBName,
}
