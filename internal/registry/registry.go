// Package registry manages a user's registered devices and profile record
// in the realtime store.
package registry

import (
	"context"
	"fmt"
	"sort"

	"github.com/draintech/drainwatch/internal/device"
	"github.com/draintech/drainwatch/internal/store"
	"go.uber.org/zap"
)

// Registry reads and mutates per-user records under usuarios/{uid}
type Registry struct {
	gw     store.Gateway
	logger *zap.Logger
}

// NewRegistry creates a device registry backed by the given gateway
func NewRegistry(gw store.Gateway, logger *zap.Logger) *Registry {
	return &Registry{gw: gw, logger: logger}
}

// List returns the user's devices ordered by name
func (r *Registry) List(ctx context.Context, uid string) ([]device.Device, error) {
	v, err := r.gw.Get(ctx, device.UserDevicesPath(uid), store.Query{})
	if err != nil {
		return nil, fmt.Errorf("listing devices: %w", err)
	}
	devices := DevicesFromValue(v)
	sort.Slice(devices, func(i, j int) bool { return devices[i].Name < devices[j].Name })
	return devices, nil
}

// Watch attaches a live listener on the user's device list. Each emission
// carries the full current list.
func (r *Registry) Watch(ctx context.Context, uid string) (store.Subscription, error) {
	sub, err := r.gw.Subscribe(ctx, device.UserDevicesPath(uid), store.Query{})
	if err != nil {
		return nil, fmt.Errorf("watching devices: %w", err)
	}
	return sub, nil
}

// DevicesFromValue projects a raw device-list value into typed devices.
// Watch consumers use it on each emission.
func DevicesFromValue(v store.Value) []device.Device {
	children := v.Children()
	devices := make([]device.Device, 0, len(children))
	for _, child := range children {
		devices = append(devices, device.Device{
			Key:  child.Key,
			Name: child.Value.Field("name").Str(),
			MAC:  child.Value.Field("mac").Str(),
		})
	}
	return devices
}

// Add registers a device under the user, keyed by its MAC
func (r *Registry) Add(ctx context.Context, uid, name, mac string) error {
	if name == "" {
		return fmt.Errorf("device name must not be empty")
	}
	if err := device.ValidateMAC(mac); err != nil {
		return err
	}

	record := map[string]interface{}{
		"name": name,
		"mac":  mac,
	}
	path := device.UserDevicesPath(uid) + "/" + mac
	if err := r.gw.Set(ctx, path, record); err != nil {
		return fmt.Errorf("adding device %s: %w", mac, err)
	}
	r.logger.Info("device registered",
		zap.String("device_mac", mac),
		zap.String("name", name),
	)
	return nil
}

// Remove deletes a device from the user's list by its key
func (r *Registry) Remove(ctx context.Context, uid, key string) error {
	path := device.UserDevicesPath(uid) + "/" + key
	if err := r.gw.Delete(ctx, path); err != nil {
		return fmt.Errorf("removing device %s: %w", key, err)
	}
	r.logger.Info("device removed", zap.String("device_key", key))
	return nil
}

// Username reads the user's display name, falling back to a generic label
// when none is stored
func (r *Registry) Username(ctx context.Context, uid string) (string, error) {
	v, err := r.gw.Get(ctx, device.UserPath(uid)+"/username", store.Query{})
	if err != nil {
		return "", fmt.Errorf("reading username: %w", err)
	}
	if name := v.Str(); name != "" {
		return name, nil
	}
	return "User", nil
}

// SaveProfile stores the profile record created at registration
func (r *Registry) SaveProfile(ctx context.Context, uid, username, email string) error {
	record := map[string]interface{}{
		"username": username,
		"email":    email,
		"role":     "user",
	}
	if err := r.gw.Set(ctx, device.UserPath(uid), record); err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	return nil
}
