// Package common holds the configuration and logging types shared by the
// server, the transports and the CLI.
//
// ServerConfig carries all startup parameters (endpoint, transport, frame
// limits, socket tuning, log level); there is no dynamic reconfiguration.
// GetLogger hands out leveled, named loggers used across the project.
package common
