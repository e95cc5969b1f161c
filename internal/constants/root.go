package constants

// AppName is used for the config directory, keyring service, and log prefix
const AppName = "daybook"

// DefaultKeyringUser is the account name under which the sync token is stored
const DefaultKeyringUser = "daybook-sync-token"

// DefaultConfigDir is the default location of the local replica database
const DefaultConfigDir = "~/.config/daybook"

// DefaultDatabaseFile is the SQLite file name inside the config directory
const DefaultDatabaseFile = "daybook.db"
