package instance

import "github.com/gestfood/digital-menu/pkg/env"

// GetID returns the table device identifier. HOSTNAME is used when no explicit
// device id is configured so containers get distinct namespaces.
func GetID() string {
	return env.First("table-0", "GESTFOOD_DEVICE_ID", "HOSTNAME")
}
