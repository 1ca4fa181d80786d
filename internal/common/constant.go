package common

// EnvPrefix is the prefix of environment variables that override configuration.
const EnvPrefix = "UNIDESK_"
