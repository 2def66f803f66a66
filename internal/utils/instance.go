package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"os"
	"strings"
)

const unknownInstance = "ERP-UNKNOWN"

// InstanceID derives a stable id for this machine from the MAC address of
// the first active interface, falling back to the hostname. It looks like
// "ERP-A1B2C3D4" and tags startup logs and the system status.
func InstanceID() string {
	return instanceID(net.Interfaces, os.Hostname)
}

func instanceID(interfaces func() ([]net.Interface, error), hostname func() (string, error)) string {
	var source string
	if ifaces, err := interfaces(); err == nil {
		for _, i := range ifaces {
			if i.Flags&net.FlagUp != 0 && len(i.HardwareAddr) > 0 {
				source = i.HardwareAddr.String()
				break
			}
		}
	}
	if source == "" {
		name, err := hostname()
		if err != nil || name == "" {
			return unknownInstance
		}
		source = name
	}

	hash := sha256.Sum256([]byte(source + "print-erp"))
	return "ERP-" + strings.ToUpper(hex.EncodeToString(hash[:])[:8])
}
