// Package handlers implements the broker's HTTP endpoints: conversion
// requests, health and readiness probes, queue statistics, version info
// and conversion-cache clearing.
package handlers
