package config

const (
	EnvPrefix = "CLINIC"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv = "CLINIC_APP_ENV"
	EnvPort   = "CLINIC_APP_PORT"

	EnvDBDSN  = "CLINIC_DB_DSN"
	EnvDBHost = "CLINIC_DB_HOST"
	EnvDBUser = "CLINIC_DB_USER"
	EnvDBName = "CLINIC_DB_NAME"

	EnvRedisURL = "CLINIC_REDIS_URL"

	EnvJWTSecret           = "CLINIC_JWT_SECRET"
	EnvJWTIssuer           = "CLINIC_JWT_ISSUER"
	EnvJWTExpMins          = "CLINIC_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLDays = "CLINIC_REFRESH_TOKEN_TTL_DAYS"

	EnvReminderBookingOffsets = "CLINIC_REMINDER_BOOKING_OFFSETS"
	EnvPushEnabled            = "CLINIC_PUSH_ENABLED"
	EnvPushCredentialsFile    = "CLINIC_PUSH_CREDENTIALS_FILE"
	EnvUseSQLite              = "CLINIC_USE_SQLITE"

	minJWTSecretLen  = 32
	defaultSQLiteDSN = "file:clinic.db?_foreign_keys=on"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
