// Package logger provides structured logging for buildprobe using zerolog.
//
// It supports console and JSON output, level configuration, and
// component-scoped loggers carrying structured fields.
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "json"
//
// # Usage
//
//	log := logger.WithComponent("stager")
//	log.Info("template staged", logger.Fields(logger.FieldTemplate, name))
package logger
