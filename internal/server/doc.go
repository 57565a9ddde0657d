// Package server provides the HTTP API around the task router: the POST
// /tasks routing endpoint, the browser-based Google OAuth flow, health
// endpoints for Kubernetes probes, and a dedicated Prometheus metrics
// server.
//
// The credential gate lives here: /tasks rejects requests with 401 until a
// Google credential has been stored through the /authorize flow, so no LLM
// call is made for a request that could not be executed anyway.
package server
