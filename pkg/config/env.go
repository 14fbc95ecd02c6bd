package config

// EnvPrefix is passed to envconfig; individual tags carry the full name so
// the prefix stays empty here.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "SEATRELAY_DB_DSN"
	EnvDBHost = "SEATRELAY_DB_HOST"
	EnvDBUser = "SEATRELAY_DB_USER"
	EnvDBName = "SEATRELAY_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
