package api

// Company is an account-level tenant on the platform.
type Company struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// User is an operator account scoped to a company.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	CompanyID string `json:"company_id"`
}

// LocationAttrs are the contact/address attributes shared by location
// reads and creates. All fields are optional on the wire.
type LocationAttrs struct {
	Address    string `json:"address,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	Country    string `json:"country,omitempty"`
	Zip        string `json:"zip,omitempty"`
	Timezone   string `json:"timezone,omitempty"`
	Industry   string `json:"industry,omitempty"`
	ExternalID string `json:"external_id,omitempty"`
}

// Location is a node in the platform's location tree. ParentID is nil
// for root locations.
type Location struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	ParentID  *string `json:"parent_id"`
	CompanyID string  `json:"company_id"`
	UserID    string  `json:"user_id,omitempty"`
	LocationAttrs
}

type LocationFilter struct {
	CompanyID string
	UserID    string
}

type CreateLocationRequest struct {
	Name      string  `json:"name"`
	ParentID  *string `json:"parent_id,omitempty"`
	CompanyID string  `json:"company_id"`
	UserID    string  `json:"user_id,omitempty"`
	LocationAttrs
}

// Device is a provisioned device attached to a location.
type Device struct {
	ID             string            `json:"id"`
	HardwareID     string            `json:"hardware_id"`
	Name           string            `json:"name,omitempty"`
	ExternalID     string            `json:"external_id,omitempty"`
	DeviceTypeID   string            `json:"device_type_id,omitempty"`
	LocationID     string            `json:"location_id"`
	CompanyID      string            `json:"company_id,omitempty"`
	SensorUse      string            `json:"sensor_use,omitempty"`
	SensorType     string            `json:"sensor_type,omitempty"`
	DeviceCategory string            `json:"device_category,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	Properties     map[string]any    `json:"properties,omitempty"`
}

type DeviceFilter struct {
	CompanyID  string
	LocationID string
}

type CreateDeviceRequest struct {
	HardwareID     string            `json:"hardware_id"`
	Name           string            `json:"name,omitempty"`
	ExternalID     string            `json:"external_id,omitempty"`
	DeviceTypeID   string            `json:"device_type_id,omitempty"`
	LocationID     string            `json:"location_id"`
	CompanyID      string            `json:"company_id,omitempty"`
	SensorUse      string            `json:"sensor_use,omitempty"`
	SensorType     string            `json:"sensor_type,omitempty"`
	DeviceCategory string            `json:"device_category,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

type UpdateDeviceRequest struct {
	Properties map[string]any `json:"properties,omitempty"`
}

// TemplateUse is one device-use entry on a template; the entry flagged
// Default supplies the sensor-use fallback for imports.
type TemplateUse struct {
	Use     string `json:"use"`
	Default bool   `json:"default"`
}

type TemplateMeta struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// DeviceTemplate describes a device type: its category, known uses and
// metadata entries (a meta entry keyed "device_type" carries the sensor
// type fallback).
type DeviceTemplate struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Category  string         `json:"category"`
	DeviceUse []TemplateUse  `json:"device_use"`
	Meta      []TemplateMeta `json:"meta"`
}

// Codec decodes raw device payloads server-side.
type Codec struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Gateway struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	HardwareID string `json:"hardware_id"`
	Status     string `json:"status,omitempty"`
	CompanyID  string `json:"company_id,omitempty"`
}

// RegistryEntry is a hardware-registry record for a manufactured device.
type RegistryEntry struct {
	HardwareID   string `json:"hardware_id"`
	DeviceTypeID string `json:"device_type_id,omitempty"`
	CompanyID    string `json:"company_id,omitempty"`
}

type RegistryFilter struct {
	CompanyID   string
	HardwareIDs []string
}
