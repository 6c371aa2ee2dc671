package midi

import "fmt"

// GetDevice returns the appropriate Device implementation for the given type
func GetDevice(deviceType DeviceType, width, height int) (Device, error) {
	switch deviceType {
	case DeviceTypeLinnstrument, "":
		return NewLinnstrument(width, height), nil
	default:
		return nil, fmt.Errorf("unsupported device type: %s", deviceType)
	}
}
