package ui

import (
	"context"
	"strconv"

	"github.com/draintech/drainwatch/internal/device"
)

// deviceListScreen shows the user's devices and dispatches to the add and
// detail screens
func (a *App) deviceListScreen(ctx context.Context, uid string) error {
	for {
		devices, err := a.deps.Registry.List(ctx, uid)
		if err != nil {
			a.printf("Error loading devices: %v\n", err)
		}

		a.printf("\n== My devices ==\n")
		if len(devices) == 0 {
			a.printf("No devices registered yet\n")
		}
		for i, d := range devices {
			a.printf("[%d] %s (MAC: %s)\n", i+1, d.Name, d.MAC)
		}
		a.printf("[a] add device  [d] delete device  [number] open  [q] sign out\n")

		choice, ok := a.prompt("> ")
		if !ok {
			return nil
		}

		switch choice {
		case "a":
			a.addDeviceScreen(ctx, uid)
		case "d":
			a.deleteDevice(ctx, uid, devices)
		case "q":
			a.deps.Auth.SignOut()
			a.printf("Signed out\n")
			return nil
		default:
			if idx, err := strconv.Atoi(choice); err == nil && idx >= 1 && idx <= len(devices) {
				if err := a.detailScreen(ctx, devices[idx-1]); err != nil {
					a.printf("Error: %v\n", err)
				}
			}
		}
	}
}

// addDeviceScreen registers a new device by name and MAC
func (a *App) addDeviceScreen(ctx context.Context, uid string) {
	a.printf("\n== Add device ==\n")
	name, ok := a.prompt("device name: ")
	if !ok {
		return
	}
	mac, ok := a.prompt("MAC address: ")
	if !ok {
		return
	}

	if err := a.deps.Registry.Add(ctx, uid, name, mac); err != nil {
		a.printf("Error adding device: %v\n", err)
		return
	}
	a.printf("Device added\n")
}

func (a *App) deleteDevice(ctx context.Context, uid string, devices []device.Device) {
	choice, ok := a.prompt("device number to delete: ")
	if !ok {
		return
	}
	idx, err := strconv.Atoi(choice)
	if err != nil || idx < 1 || idx > len(devices) {
		a.printf("No such device\n")
		return
	}
	target := devices[idx-1]

	if !a.confirm("Delete '" + target.Name + "'?") {
		return
	}
	if err := a.deps.Registry.Remove(ctx, uid, target.Key); err != nil {
		a.printf("Error deleting device: %v\n", err)
		return
	}
	a.printf("%s deleted\n", target.Name)
}
