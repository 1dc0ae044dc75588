// Package startup handles configuration loading, directory validation
// and the structured startup/shutdown logging for the media broker.
//
// Configuration comes from environment variables (optionally seeded
// from a .env file), is validated with write probes where a writable
// directory is required, and is logged in labelled sections so a boot
// log reads top to bottom as a checklist.
package startup
