// Package models defines the core data structures exchanged with the platform
// export and with the presentation layers that render the analysis.
package models

import "encoding/json"

// RawComponent is one bot component record as exported by the platform.
// Field names follow the platform's OData column names.
type RawComponent struct {
	ID            string `json:"botcomponentid"`
	Name          string `json:"name"`
	ComponentType int    `json:"componenttype"`
	SchemaName    string `json:"schemaname"`
	Category      string `json:"category,omitempty"`
	Data          string `json:"data,omitempty"`
	Content       string `json:"content,omitempty"`
	Description   string `json:"description,omitempty"`
}

// AgentRecord is the bot row that owns a component list.
//
// Configuration and ApplicationManifestInformation hold JSON documents encoded
// as text. Metadata may arrive either as an object or as a string containing
// one, so it is kept raw and decoded lazily.
type AgentRecord struct {
	ID                             string          `json:"botid" validate:"required"`
	Name                           string          `json:"name" validate:"required"`
	Configuration                  string          `json:"configuration,omitempty"`
	ApplicationManifestInformation string          `json:"applicationmanifestinformation,omitempty"`
	Metadata                       json.RawMessage `json:"metadata,omitempty"`
}
