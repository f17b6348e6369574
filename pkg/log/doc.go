// Package log is the logging front end used by every parcels component.
//
// It wraps the standard library logger with named loggers and a handful of
// level helpers. Each line carries the level and the component name:
//
//	2025/03/02 10:14:03.120551 INFO [search>] loaded 48211 entries from search_index.json (json, 3 skipped) in 412ms
//
// # Usage
//
//	logger := log.ForService("snapshot")
//	logger.Infof("wrote %d records to %s", n, path)
//	logger.Warnf("skipping malformed element %d: %v", i, err)
//	logger.Debugf("decoder offset %d", off) // only with debug enabled
//
// # Debug output
//
// Debug lines are off by default. They can be enabled for every component
// with SetGlobalDebug (the --debug flag) or for selected components with
// EnableDebugFor (the debug_services config key). Configure applies both.
//
//	log.EnableDebugFor("search")
//	log.ForService("search").Debugf("visible")
//	log.ForService("api").Debugf("not visible")
//
// # Output
//
// All loggers share one writer, stderr by default. SetOutput switches it for
// existing and future loggers; tests use it with a bytes.Buffer to assert on
// log contents.
//
// The package name collides with the standard library log package. Alias
// one of them when both are needed.
package log
