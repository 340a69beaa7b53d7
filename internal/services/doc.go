// Package services contains the application services sitting between the
// HTTP/CLI surfaces and the pipeline, scheduler and store.
package services
