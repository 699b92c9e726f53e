// Package api hosts the HTTP server, middleware, and REST handlers. Notable
// routes:
//   - POST /api/analyze queues a style guide job for a URL.
//   - GET /api/status/{job_id} and /api/results/{job_id} poll a job.
//   - GET /api/results/{job_id}/document streams the stored PDF.
//   - POST /api/generate-pdf renders caller-supplied style guide data.
//   - GET /api/runs and /api/runs/{job_id} read run history via the
//     RunRepository interface.
//   - GET /healthz, /readyz and /metrics for probes and Prometheus.
package api
