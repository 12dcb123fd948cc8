// Package bootstrap seeds the simulator at startup and reports its
// lifecycle to container probes.
//
// The initial fleet comes from the backend's device listing. Fetcher
// retries the GET with exponential backoff and jitter; each fetched
// record feeds the registry individually, so one bad record cannot
// poison the rest of the batch. A registry still empty after every
// attempt is fatal: a simulator with no devices has nothing to do.
//
// StatusFile writes the probe file consumed by deployment health
// checks: "healthy" means the process is up, an appended "ready" line
// means the broker connection is established.
package bootstrap
