package config

const (
	EnvPrefix = "MODOMARKET"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv  = "MODOMARKET_APP_ENV"
	EnvDBDSN   = "MODOMARKET_DB_DSN"
	EnvDBHost  = "MODOMARKET_DB_HOST"
	EnvDBUser  = "MODOMARKET_DB_USER"
	EnvDBName  = "MODOMARKET_DB_NAME"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
