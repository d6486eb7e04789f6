// Package proto holds the protobuf schemas and their generated Go code.
package proto

//go:generate protoc --go_out=paths=source_relative:. multisensor/telemetry/v1/sample.proto
