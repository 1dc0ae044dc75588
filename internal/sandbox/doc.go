// Package sandbox invokes the external media optimizer inside its
// isolated container.
//
// Host paths are translated into the container's mount namespace and
// screened for shell metacharacters before any command is constructed.
// The optimizer always runs with a discrete argument vector, a hard
// wall-clock timeout and a bounded output capture, and its output file
// is verified to exist after a reported success.
package sandbox
