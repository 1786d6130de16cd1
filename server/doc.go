// Package server provides the HTTP server for menustream: a Gin engine
// with h2c support, standard middleware (recovery, request id, CORS,
// request logging), response helpers, and the aggregated health endpoint.
package server
