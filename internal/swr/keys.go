package swr

import "strings"

// Resource keys mirror the gateway URL space so a key both identifies a
// cache entry and names the URL to fetch.

// ReposKey is the repository list key.
func ReposKey() string {
	return "/v1/api/repos"
}

// RepoJobsKey is the job list key scoped to one repository.
func RepoJobsKey(repoID string) string {
	return "/v1/api/repos/" + repoID + "/jobs"
}

// JobsKey is the unscoped job list key.
func JobsKey() string {
	return "/v1/api/jobs"
}

// JobKey is the single-job key.
func JobKey(jobID string) string {
	return "/v1/api/jobs/" + jobID
}

// StepLogsKey is the log key for one step of one job. Log keys must be
// subscribed with no-store semantics; see IsLogKey.
func StepLogsKey(jobID, stepID string) string {
	return "/v1/api/jobs/" + jobID + "/steps/" + stepID + "/logs"
}

// IsLogKey reports whether key names a step log resource. Logs are appended
// to while a step runs, so a cached snapshot is stale the moment it lands.
func IsLogKey(key string) bool {
	return strings.HasSuffix(key, "/logs")
}
