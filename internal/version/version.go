package version

// Build information set by ldflags
var (
	Version = "dev"     // -X github.com/crimsonvanitas/brew/internal/version.Version=<tag>
	Commit  = "unknown" // -X github.com/crimsonvanitas/brew/internal/version.Commit=<sha>
	Date    = "unknown" // -X github.com/crimsonvanitas/brew/internal/version.Date=<date>
)
