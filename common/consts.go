package common

const (
	// address stores:
	SQLiteStore   = "sqlite"
	RedisStore    = "redis"
	PostgresStore = "postgres"

	// OS:
	WindowsOS = "windows"
	LinuxOS   = "linux"
	MacOS     = "darwin"

	// fetch kinds, used as metrics labels and in logs:
	ConnectFetchKind = "connect"
	RefreshFetchKind = "refresh"

	// fetch outcomes that are not broker failures:
	SuccessFetchOutcome   = "success"
	DiscardedFetchOutcome = "discarded"

	// persisted settings:
	LastServerAddressKey = "last_server_ip"
)

var (
	SupportedStores = map[string]bool{
		SQLiteStore:   true,
		RedisStore:    true,
		PostgresStore: true,
	}
)
