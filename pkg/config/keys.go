package config

// EnvPrefix is passed to envconfig; individual fields carry explicit names so
// the prefix mostly documents intent.
const EnvPrefix = "KARAVAN"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv  = "KARAVAN_APP_ENV"
	EnvPort    = "KARAVAN_APP_PORT"
	EnvDBDSN   = "KARAVAN_DB_DSN"
	EnvDBHost  = "KARAVAN_DB_HOST"
	EnvDBUser  = "KARAVAN_DB_USER"
	EnvDBName  = "KARAVAN_DB_NAME"
	EnvRedisURL = "KARAVAN_REDIS_URL"

	EnvJWTSecret  = "KARAVAN_JWT_SECRET"
	EnvJWTIssuer  = "KARAVAN_JWT_ISSUER"
	EnvJWTExpMins = "KARAVAN_JWT_EXPIRATION_MINUTES"

	EnvRazorpayKeyID     = "KARAVAN_RAZORPAY_KEY_ID"
	EnvRazorpayKeySecret = "KARAVAN_RAZORPAY_KEY_SECRET"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
