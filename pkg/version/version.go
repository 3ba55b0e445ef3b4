package version

// Version is the current cmap version. It is a var so release builds can
// set it:
//
//	go build -ldflags "-X github.com/vanderheijden86/conceptmap/pkg/version.Version=v0.2.0" ./cmd/cmap
var Version = "v0.1.0"
