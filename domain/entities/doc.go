// Package entities provides core domain entities for the SDK.
// These types serve dual purpose: domain entities AND the JSON wire format
// exchanged between scripts and the host through host functions.
package entities
