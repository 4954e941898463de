package instance

import (
	"os"

	"github.com/angelmondragon/pressing-admin/pkg/env"
)

const fallbackID = "local"

// GetID identifies this dashboard process in logs: PRESSING_INSTANCE_ID, then the platform
// dyno name, then the hostname.
func GetID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = fallbackID
	}
	return env.First(host, "PRESSING_INSTANCE_ID", "DYNO")
}
