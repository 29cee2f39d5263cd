package config

// EnvPrefix is empty because every variable carries its full POS_ name in the struct tags.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	defaultTimezone = "Asia/Jakarta"
)

const (
	EnvAppEnv   = "POS_APP_ENV"
	EnvPort     = "POS_APP_PORT"
	EnvTimezone = "POS_TIMEZONE"

	EnvDBDSN  = "POS_DB_DSN"
	EnvDBHost = "POS_DB_HOST"
	EnvDBUser = "POS_DB_USER"
	EnvDBName = "POS_DB_NAME"

	EnvRedisURL = "POS_REDIS_URL"

	EnvGCPProjectID = "POS_GCP_PROJECT_ID"

	EnvPubSubJobsTopic         = "POS_PUBSUB_JOBS_TOPIC"
	EnvPubSubJobsSub           = "POS_PUBSUB_JOBS_SUBSCRIPTION"
	EnvPubSubTransactionsTopic = "POS_PUBSUB_TRANSACTIONS_TOPIC"
	EnvPubSubTransactionsSub   = "POS_PUBSUB_TRANSACTIONS_SUBSCRIPTION"

	EnvMessagingDeviceID   = "POS_MESSAGING_DEVICE_ID"
	EnvMessagingAdminGroup = "POS_MESSAGING_ADMIN_GROUP"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
