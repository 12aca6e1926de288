package logcolors

// ANSI color codes for log prefixes
const (
	Reset  = "\033[0m"
	Green  = "\033[32m"
	Blue   = "\033[34m"
	Purple = "\033[35m"
	Cyan   = "\033[36m"
	Red    = "\033[31m"
)

// Cache-related log prefixes
const (
	LogCacheInit     = Blue + "[Cache:Init]" + Reset
	LogCache         = Blue + "[Cache]" + Reset
	LogCacheBackup   = Blue + "[Cache:Backup]" + Reset
	LogCacheLyrics   = Green + "[Cache:Lyrics]" + Reset
	LogCacheSpotify  = Green + "[Cache:Spotify]" + Reset
	LogCacheNegative = Cyan + "[Cache:Negative]" + Reset
)

// Resolution log prefixes
const (
	LogEngine    = Green + "[Engine]" + Reset
	LogChain     = Blue + "[Chain]" + Reset
	LogLanguage  = Cyan + "[Language]" + Reset
	LogTranslate = Cyan + "[Translate]" + Reset
	LogSpotify   = Purple + "[Spotify]" + Reset
	LogSearch    = Blue + "[Search]" + Reset
	LogMatch     = Green + "[Match]" + Reset
	LogHTTP      = Cyan + "[HTTP]" + Reset
	LogWarning   = Red + "[Warning]" + Reset
)

// Server log prefixes
const (
	LogServer    = Green + "[Server]" + Reset
	LogConfig    = Cyan + "[Config]" + Reset
	LogRequest   = Purple + "[Request]" + Reset
	LogRateLimit = Purple + "[RateLimit]" + Reset
	LogStats     = Blue + "[Stats]" + Reset
)

// ProviderPrefix returns a colored prefix for a provider adapter's log lines
func ProviderPrefix(name string) string {
	return Blue + "[Provider:" + name + "]" + Reset
}

// CircuitBreakerPrefix returns a colored circuit breaker prefix with the given name
func CircuitBreakerPrefix(name string) string {
	return Purple + "[CircuitBreaker:" + name + "]" + Reset
}
