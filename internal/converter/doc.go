// Package converter builds the producers the broker executes: fetch the
// source media into the shared working directory, run the sandboxed
// optimizer over it, and describe the finished artifact.
package converter
